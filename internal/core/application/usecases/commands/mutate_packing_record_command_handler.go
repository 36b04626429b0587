package commands

import (
	"context"
	"log/slog"
	"time"

	"packing/internal/core/domain/model/order"
	"packing/internal/core/ports"
	"packing/internal/pkg/errs"
)

// MutatePackingRecordCommandHandler applies one version-checked mutation to
// an order's packing sub-record.
//
// The mutation runs read-modify-write inside one transaction, finished by a
// conditional update keyed on the observed version. A concurrent writer makes
// the conditional update affect zero rows; the handler then returns a
// VersionConflictError and mutates nothing. There are no internal retries:
// the caller must re-read the order and decide.
type MutatePackingRecordCommandHandler struct {
	uowFactory    OrderUoWFactory
	readyNotifier ports.ReadyNotifier
	logger        *slog.Logger
}

// NewMutatePackingRecordCommandHandler creates a handler for packing
// mutations. Requires an OrderUoWFactory and a ReadyNotifier for the
// ready-for-delivery event.
func NewMutatePackingRecordCommandHandler(
	uowFactory OrderUoWFactory,
	readyNotifier ports.ReadyNotifier,
	logger *slog.Logger,
) MutatePackingRecordCommandHandler {
	return MutatePackingRecordCommandHandler{
		uowFactory:    uowFactory,
		readyNotifier: readyNotifier,
		logger:        logger,
	}
}

// Handle applies the command's change and returns the mutated order with its
// new version. When the change marks the order ready, a downstream
// notification is published after commit; notification failures are logged,
// never propagated.
func (h MutatePackingRecordCommandHandler) Handle(
	ctx context.Context,
	command MutatePackingRecordCommand,
) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	aggregate, err := orderRepo.Get(ctx, command.OrderID())
	if err != nil {
		return nil, err
	}

	// A stale read is rejected before touching the aggregate; the
	// conditional update below closes the remaining race window.
	if aggregate.Version() != command.ObservedVersion() {
		return nil, errs.NewVersionConflictError(
			"order", command.OrderID().String(), command.ObservedVersion(),
		)
	}

	now := time.Now().UTC()
	if err := command.Change().apply(aggregate, command.PackerID(), now); err != nil {
		return nil, err
	}

	if err := orderRepo.UpdatePacking(ctx, aggregate, command.ObservedVersion()); err != nil {
		return nil, err
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	if _, ok := command.Change().(MarkReadyChange); ok {
		h.notifyReady(ctx, aggregate)
	}

	return aggregate, nil
}

func (h MutatePackingRecordCommandHandler) notifyReady(ctx context.Context, aggregate *order.Order) {
	if h.readyNotifier == nil {
		return
	}
	if err := h.readyNotifier.NotifyOrderReady(ctx, aggregate.ID(), aggregate.OrderNumber()); err != nil {
		h.logger.Warn("order ready notification failed",
			"order_id", aggregate.ID().String(),
			"error", err,
		)
	}
}
