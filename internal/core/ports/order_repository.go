package ports

import (
	"context"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Writes to the packing sub-record go through UpdatePacking, a conditional
// update serialized by the order's version counter. There is no unconditional
// update of packing state.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByIDs retrieves the orders with the given identifiers.
	// Missing IDs are skipped, not an error; callers needing strictness
	// compare lengths.
	GetByIDs(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error)

	// UpdatePacking persists the aggregate's packing state with a conditional
	// write: the row is updated only where its stored version equals
	// observedVersion, and the stored version becomes the aggregate's bumped
	// version.
	//
	// Returns a VersionConflictError when a concurrent writer committed
	// first, or an ObjectNotFoundError when the order does not exist. Neither
	// is retried here; the caller re-reads and decides.
	UpdatePacking(ctx context.Context, aggregate *order.Order, observedVersion int) error
}
