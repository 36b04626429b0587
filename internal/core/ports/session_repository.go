// Package ports defines the repository, unit-of-work and notifier contracts
// between the application core and infrastructure adapters, enabling
// dependency inversion and testability.
package ports

import (
	"context"
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/session"
)

// SessionRepository defines the persistence contract for packing session
// aggregates.
//
// The store must reject a second Active session for the same
// (packer, delivery date): Add is a conditional insert backed by a partial
// unique constraint, which is what makes session creation safe across
// concurrently running service instances.
type SessionRepository interface {
	// Add persists a new session aggregate to storage.
	// Returns an ObjectAlreadyExistsError when another Active session exists
	// for the same packer and delivery date.
	Add(ctx context.Context, aggregate *session.PackingSession) error

	// Update persists changes to an existing session aggregate.
	Update(ctx context.Context, aggregate *session.PackingSession) error

	// Get retrieves a session aggregate by its unique identifier.
	// Within a transaction the load locks the row until commit, so
	// concurrent read-modify-write cycles on a session serialize.
	Get(ctx context.Context, id kernel.UUID) (*session.PackingSession, error)

	// GetActiveByPackerAndDate retrieves the packer's Active session for the
	// given delivery date, locking it like Get. Returns an
	// ObjectNotFoundError when none exists.
	GetActiveByPackerAndDate(
		ctx context.Context, packerID kernel.UUID, date kernel.DeliveryDate,
	) (*session.PackingSession, error)

	// GetAllActiveByDate retrieves every Active session for the delivery date.
	// Used by conflict detection to scan other packers' claims.
	GetAllActiveByDate(ctx context.Context, date kernel.DeliveryDate) ([]*session.PackingSession, error)

	// GetAllActiveIdleSince retrieves every Active session whose last
	// activity is at or before the cutoff. Used by the timeout sweep.
	GetAllActiveIdleSince(ctx context.Context, cutoff time.Time) ([]*session.PackingSession, error)
}
