package commands

import (
	"errors"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/pkg/errs"
	"packing/internal/pkg/guard"
)

var ErrStartOrResumeSessionCommandIsNotConstructed = errors.New(
	"StartOrResumeSessionCommand must be created via NewStartOrResumeSessionCommand constructor",
)

// StartOrResumeSessionCommand begins a packer's work on a delivery date.
//
// If the packer already holds an active session for the date, the requested
// order IDs are merged into it (resume). Otherwise the other packers' active
// sessions are scanned for overlapping claims: an overlap yields a Conflict
// descriptor instead of a session, and nothing is created or mutated.
//
// Example:
//
//	cmd, err := NewStartOrResumeSessionCommand(packerID, date, orderIDs)
//	result, err := handler.Handle(ctx, cmd)
//	if result.Conflict != nil {
//	    // present takeover confirmation to the packer
//	}
type StartOrResumeSessionCommand struct {
	packerID     kernel.UUID
	deliveryDate kernel.DeliveryDate
	orderIDs     []kernel.UUID

	guard guard.ConstructorGuard
}

// NewStartOrResumeSessionCommand creates a validated command.
// The order ID set must be non-empty and every ID must be valid.
func NewStartOrResumeSessionCommand(
	packerID kernel.UUID,
	deliveryDate kernel.DeliveryDate,
	orderIDs []kernel.UUID,
) (StartOrResumeSessionCommand, error) {
	if err := packerID.Validate(); err != nil {
		return StartOrResumeSessionCommand{}, err
	}
	if err := deliveryDate.Validate(); err != nil {
		return StartOrResumeSessionCommand{}, err
	}
	if len(orderIDs) == 0 {
		return StartOrResumeSessionCommand{}, errs.NewValueIsRequiredError("orderIds")
	}
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return StartOrResumeSessionCommand{}, err
		}
	}

	return StartOrResumeSessionCommand{
		packerID:     packerID,
		deliveryDate: deliveryDate,
		orderIDs:     append([]kernel.UUID(nil), orderIDs...),
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// PackerID returns the requesting packer's identifier.
func (c *StartOrResumeSessionCommand) PackerID() kernel.UUID {
	return c.packerID
}

// DeliveryDate returns the delivery day the session is scoped to.
func (c *StartOrResumeSessionCommand) DeliveryDate() kernel.DeliveryDate {
	return c.deliveryDate
}

// OrderIDs returns a copy of the requested order set.
func (c *StartOrResumeSessionCommand) OrderIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), c.orderIDs...)
}

// Validate ensures the command was created through the constructor.
func (c *StartOrResumeSessionCommand) Validate() error {
	return c.guard.Validate(ErrStartOrResumeSessionCommandIsNotConstructed)
}
