package commands

import (
	"context"
	"errors"
	"time"

	"packing/internal/core/domain/model/session"
	"packing/internal/pkg/errs"
)

// TouchActivityCommandHandler refreshes the liveness marker of an active
// session. It is called on every packer-initiated action regardless of
// whether the action itself succeeds, so a failed-then-retried mutation
// still counts as liveness.
type TouchActivityCommandHandler struct {
	uowFactory SessionUoWFactory
}

// NewTouchActivityCommandHandler creates a handler for activity pings.
// Requires a SessionUoWFactory.
func NewTouchActivityCommandHandler(uowFactory SessionUoWFactory) TouchActivityCommandHandler {
	return TouchActivityCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle sets lastActivityAt on the addressed active session. A missing or
// already-ended session is a no-op, not an error: the caller may race with a
// timed-out session and the next packing mutation surfaces the real state.
func (h TouchActivityCommandHandler) Handle(ctx context.Context, command TouchActivityCommand) error {
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

	var (
		target *session.PackingSession
		err    error
	)
	if command.ByPacker() {
		target, err = sessionRepo.GetActiveByPackerAndDate(ctx, command.PackerID(), command.DeliveryDate())
	} else {
		target, err = sessionRepo.Get(ctx, command.SessionID())
	}
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if !target.IsActive() {
		return nil
	}

	if err := target.Touch(time.Now().UTC()); err != nil {
		return err
	}
	if err := sessionRepo.Update(ctx, target); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
