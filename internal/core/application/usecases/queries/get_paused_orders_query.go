package queries

import (
	"errors"
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/pkg/guard"
)

var ErrGetPausedOrdersQueryIsNotConstructed = errors.New(
	"GetPausedOrdersQuery must be created via NewGetPausedOrdersQuery constructor",
)

// GetPausedOrdersQuery retrieves the orders a packer left behind when a
// timeout sweep preserved their progress. Feeds the resume-paused-orders
// prompt shown when the packer next opens the workspace.
type GetPausedOrdersQuery struct {
	packerID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetPausedOrdersQuery creates a query scoped to one packer.
func NewGetPausedOrdersQuery(packerID kernel.UUID) (GetPausedOrdersQuery, error) {
	if err := packerID.Validate(); err != nil {
		return GetPausedOrdersQuery{}, err
	}

	return GetPausedOrdersQuery{
		packerID: packerID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// PackerID returns the packer whose paused orders are requested.
func (q GetPausedOrdersQuery) PackerID() kernel.UUID {
	return q.packerID
}

// Validate ensures the query was created through the constructor.
func (q GetPausedOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetPausedOrdersQueryIsNotConstructed)
}

// GetPausedOrdersQueryResponse is the read model of one paused order.
type GetPausedOrdersQueryResponse struct {
	OrderID         kernel.UUID
	OrderNumber     string
	PackedItemCount int
	TotalItemCount  int
	PausedAt        time.Time
}
