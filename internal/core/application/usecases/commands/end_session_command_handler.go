package commands

import (
	"context"
	"time"

	"packing/internal/core/domain/model/session"
)

// EndSessionCommandHandler terminates sessions on the packer's request.
type EndSessionCommandHandler struct {
	uowFactory SessionUoWFactory
}

// NewEndSessionCommandHandler creates a handler for session ends.
// Requires a SessionUoWFactory.
func NewEndSessionCommandHandler(uowFactory SessionUoWFactory) EndSessionCommandHandler {
	return EndSessionCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle moves the session to its terminal state: Completed for
// all-orders-packed, Cancelled for a manual end. Ending an already-ended
// session fails with a validation error since terminal states are immutable.
func (h EndSessionCommandHandler) Handle(ctx context.Context, command EndSessionCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	sessionRepo := uow.SessionRepository()

	target, err := sessionRepo.Get(ctx, command.SessionID())
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	switch command.Reason() {
	case session.EndReasonAllOrdersPacked:
		err = target.Complete(now)
	default:
		err = target.Cancel(session.EndReasonManualEnd, now)
	}
	if err != nil {
		return err
	}

	if err := sessionRepo.Update(ctx, target); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
