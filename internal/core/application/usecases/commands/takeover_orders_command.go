package commands

import (
	"errors"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/pkg/errs"
	"packing/internal/pkg/guard"
)

var ErrTakeoverOrdersCommandIsNotConstructed = errors.New(
	"TakeoverOrdersCommand must be created via NewTakeoverOrdersCommand constructor",
)

// TakeoverOrdersCommand transfers ownership of contested orders from an
// existing session to the requesting packer. It is issued only after the
// packer explicitly confirmed a Conflict returned by a session start.
type TakeoverOrdersCommand struct {
	newPackerID       kernel.UUID
	existingSessionID kernel.UUID
	orderIDs          []kernel.UUID

	guard guard.ConstructorGuard
}

// NewTakeoverOrdersCommand creates a validated command.
func NewTakeoverOrdersCommand(
	newPackerID kernel.UUID,
	existingSessionID kernel.UUID,
	orderIDs []kernel.UUID,
) (TakeoverOrdersCommand, error) {
	if err := newPackerID.Validate(); err != nil {
		return TakeoverOrdersCommand{}, err
	}
	if err := existingSessionID.Validate(); err != nil {
		return TakeoverOrdersCommand{}, err
	}
	if len(orderIDs) == 0 {
		return TakeoverOrdersCommand{}, errs.NewValueIsRequiredError("orderIds")
	}
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return TakeoverOrdersCommand{}, err
		}
	}

	return TakeoverOrdersCommand{
		newPackerID:       newPackerID,
		existingSessionID: existingSessionID,
		orderIDs:          append([]kernel.UUID(nil), orderIDs...),
		guard:             guard.NewConstructorGuard(),
	}, nil
}

// NewPackerID returns the packer taking over the orders.
func (c *TakeoverOrdersCommand) NewPackerID() kernel.UUID {
	return c.newPackerID
}

// ExistingSessionID returns the contended session's identifier.
func (c *TakeoverOrdersCommand) ExistingSessionID() kernel.UUID {
	return c.existingSessionID
}

// OrderIDs returns a copy of the order IDs to take over.
func (c *TakeoverOrdersCommand) OrderIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), c.orderIDs...)
}

// Validate ensures the command was created through the constructor.
func (c *TakeoverOrdersCommand) Validate() error {
	return c.guard.Validate(ErrTakeoverOrdersCommandIsNotConstructed)
}
