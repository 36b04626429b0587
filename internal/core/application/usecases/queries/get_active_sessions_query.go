package queries

import (
	"errors"
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/pkg/guard"
)

var ErrGetActiveSessionsQueryIsNotConstructed = errors.New(
	"GetActiveSessionsQuery must be created via NewGetActiveSessionsQuery constructor",
)

// GetActiveSessionsQuery retrieves every active packing session for one
// delivery date. Used by the workspace overview to show who is packing what.
type GetActiveSessionsQuery struct {
	deliveryDate kernel.DeliveryDate

	guard guard.ConstructorGuard
}

// NewGetActiveSessionsQuery creates a query scoped to a delivery date.
func NewGetActiveSessionsQuery(deliveryDate kernel.DeliveryDate) (GetActiveSessionsQuery, error) {
	if err := deliveryDate.Validate(); err != nil {
		return GetActiveSessionsQuery{}, err
	}

	return GetActiveSessionsQuery{
		deliveryDate: deliveryDate,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// DeliveryDate returns the delivery day the query is scoped to.
func (q GetActiveSessionsQuery) DeliveryDate() kernel.DeliveryDate {
	return q.deliveryDate
}

// Validate ensures the query was created through the constructor.
func (q GetActiveSessionsQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveSessionsQueryIsNotConstructed)
}

// GetActiveSessionsQueryResponse is the read model of one active session.
type GetActiveSessionsQueryResponse struct {
	SessionID      kernel.UUID
	PackerID       kernel.UUID
	OrderCount     int
	StartedAt      time.Time
	LastActivityAt time.Time
}
