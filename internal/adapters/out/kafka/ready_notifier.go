// Package kafka publishes integration events to downstream services.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

// OrderReadyEvent is the payload published when every item of an order has
// been packed and the order is ready for delivery.
type OrderReadyEvent struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// ReadyNotifier publishes OrderReadyEvent messages to a Kafka topic. It
// implements ports.ReadyNotifier; delivery failures are reported to the
// caller, which decides whether to log or retry.
type ReadyNotifier struct {
	writer *kafka.Writer
}

// NewReadyNotifier creates a notifier writing to the given brokers and topic.
func NewReadyNotifier(brokers []string, topic string) (*ReadyNotifier, error) {
	if len(brokers) == 0 {
		return nil, errs.NewValueIsRequiredError("brokers")
	}
	if topic == "" {
		return nil, errs.NewValueIsRequiredError("topic")
	}

	return &ReadyNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		},
	}, nil
}

// NotifyOrderReady publishes the ready event keyed by order ID, so events for
// the same order land in one partition in order.
func (n *ReadyNotifier) NotifyOrderReady(ctx context.Context, orderID kernel.UUID, orderNumber string) error {
	event := OrderReadyEvent{
		OrderID:     orderID.String(),
		OrderNumber: orderNumber,
		OccurredAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderID.String()),
		Value: payload,
	})
}

// Close releases the underlying Kafka writer.
func (n *ReadyNotifier) Close() error {
	return n.writer.Close()
}
