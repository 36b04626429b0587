package commands

import (
	"errors"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/pkg/guard"
)

var ErrTouchActivityCommandIsNotConstructed = errors.New(
	"TouchActivityCommand must be created via NewTouchActivityCommand or NewTouchActivityByPackerCommand constructor",
)

// TouchActivityCommand refreshes a session's liveness marker. The session is
// addressed either directly by ID or by its (packer, delivery date) pair.
type TouchActivityCommand struct {
	sessionID    kernel.UUID
	packerID     kernel.UUID
	deliveryDate kernel.DeliveryDate
	byPacker     bool

	guard guard.ConstructorGuard
}

// NewTouchActivityCommand creates a command addressing a session by ID.
func NewTouchActivityCommand(sessionID kernel.UUID) (TouchActivityCommand, error) {
	if err := sessionID.Validate(); err != nil {
		return TouchActivityCommand{}, err
	}

	return TouchActivityCommand{
		sessionID: sessionID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// NewTouchActivityByPackerCommand creates a command addressing the packer's
// active session for a delivery date.
func NewTouchActivityByPackerCommand(
	packerID kernel.UUID,
	deliveryDate kernel.DeliveryDate,
) (TouchActivityCommand, error) {
	if err := packerID.Validate(); err != nil {
		return TouchActivityCommand{}, err
	}
	if err := deliveryDate.Validate(); err != nil {
		return TouchActivityCommand{}, err
	}

	return TouchActivityCommand{
		packerID:     packerID,
		deliveryDate: deliveryDate,
		byPacker:     true,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// SessionID returns the addressed session's ID when ByPacker is false.
func (c *TouchActivityCommand) SessionID() kernel.UUID {
	return c.sessionID
}

// PackerID returns the addressed packer's ID when ByPacker is true.
func (c *TouchActivityCommand) PackerID() kernel.UUID {
	return c.packerID
}

// DeliveryDate returns the addressed delivery date when ByPacker is true.
func (c *TouchActivityCommand) DeliveryDate() kernel.DeliveryDate {
	return c.deliveryDate
}

// ByPacker reports whether the session is addressed by packer and date.
func (c *TouchActivityCommand) ByPacker() bool {
	return c.byPacker
}

// Validate ensures the command was created through a constructor.
func (c *TouchActivityCommand) Validate() error {
	return c.guard.Validate(ErrTouchActivityCommandIsNotConstructed)
}
