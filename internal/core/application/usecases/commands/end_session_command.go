package commands

import (
	"errors"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/session"
	"packing/internal/pkg/errs"
	"packing/internal/pkg/guard"
)

var ErrEndSessionCommandIsNotConstructed = errors.New(
	"EndSessionCommand must be created via NewEndSessionCommand constructor",
)

// EndSessionCommand terminates an active session with a caller-supplied
// reason. Callers may end with all-orders-packed or manual-end; the other
// terminal reasons belong to takeover and the timeout sweep.
type EndSessionCommand struct {
	sessionID kernel.UUID
	reason    session.EndReason

	guard guard.ConstructorGuard
}

// NewEndSessionCommand creates a validated command.
func NewEndSessionCommand(sessionID kernel.UUID, reason session.EndReason) (EndSessionCommand, error) {
	if err := sessionID.Validate(); err != nil {
		return EndSessionCommand{}, err
	}
	if reason != session.EndReasonAllOrdersPacked && reason != session.EndReasonManualEnd {
		return EndSessionCommand{}, errs.NewValueIsInvalidError("reason")
	}

	return EndSessionCommand{
		sessionID: sessionID,
		reason:    reason,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// SessionID returns the session to end.
func (c *EndSessionCommand) SessionID() kernel.UUID {
	return c.sessionID
}

// Reason returns why the session is ending.
func (c *EndSessionCommand) Reason() session.EndReason {
	return c.reason
}

// Validate ensures the command was created through the constructor.
func (c *EndSessionCommand) Validate() error {
	return c.guard.Validate(ErrEndSessionCommandIsNotConstructed)
}
