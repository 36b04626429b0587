package ports

import (
	"context"

	"packing/internal/core/domain/model/kernel"
)

// ReadyNotifier publishes a downstream notification when an order becomes
// ready for delivery. The call is fire-and-forget from the caller's point of
// view: it runs outside the mutation's transaction, failures are logged and
// never propagated, and there is no automatic retry.
type ReadyNotifier interface {
	NotifyOrderReady(ctx context.Context, orderID kernel.UUID, orderNumber string) error
}
