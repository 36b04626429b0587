package commands

import (
	"context"
	"errors"
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/session"
	"packing/internal/core/ports"
	"packing/internal/pkg/errs"
)

// TakeoverOrdersCommandHandler transfers order ownership between sessions.
//
// Both session writes run inside a single transaction, and the contended
// session row is locked on load, so an order is never left claimed by zero or
// two sessions: of two concurrent takeovers for the same order, the second
// reads the winner's committed membership and finds nothing left to take.
// Packing progress on the transferred orders is left untouched: takeover
// moves session membership only, never packedItems, notes or version.
type TakeoverOrdersCommandHandler struct {
	uowFactory SessionUoWFactory
}

// NewTakeoverOrdersCommandHandler creates a handler for order takeovers.
// Requires a SessionUoWFactory.
func NewTakeoverOrdersCommandHandler(uowFactory SessionUoWFactory) TakeoverOrdersCommandHandler {
	return TakeoverOrdersCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle removes the requested orders from the contended session and assigns
// them to the new packer's session for the same delivery date, creating one
// when the packer has none. A contended session left with no orders is
// cancelled with the new-session-started reason.
func (h TakeoverOrdersCommandHandler) Handle(
	ctx context.Context,
	command TakeoverOrdersCommand,
) (*session.PackingSession, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	sessionRepo := uow.SessionRepository()
	now := time.Now().UTC()

	existing, err := sessionRepo.Get(ctx, command.ExistingSessionID())
	if err != nil {
		return nil, err
	}

	taken := existing.OverlappingOrders(command.OrderIDs())
	if len(taken) == 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"orderIds",
			errors.New("session holds none of the requested orders"),
		)
	}

	remaining, err := existing.RemoveOrderIDs(taken)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		if err := existing.Cancel(session.EndReasonNewSessionStarted, now); err != nil {
			return nil, err
		}
	}
	if err := sessionRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	target, err := h.sessionForPacker(ctx, sessionRepo, command.NewPackerID(), existing.DeliveryDate(), taken, now)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return target, nil
}

// sessionForPacker merges the taken IDs into the packer's active session for
// the date, or creates a new session scoped to exactly those IDs.
func (h TakeoverOrdersCommandHandler) sessionForPacker(
	ctx context.Context,
	sessionRepo ports.SessionRepository,
	packerID kernel.UUID,
	deliveryDate kernel.DeliveryDate,
	orderIDs []kernel.UUID,
	now time.Time,
) (*session.PackingSession, error) {
	target, err := sessionRepo.GetActiveByPackerAndDate(ctx, packerID, deliveryDate)
	if err == nil {
		if err := target.MergeOrderIDs(orderIDs, now); err != nil {
			return nil, err
		}
		if err := sessionRepo.Update(ctx, target); err != nil {
			return nil, err
		}
		return target, nil
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return nil, err
	}

	target, err = session.NewPackingSession(kernel.NewUUID(), packerID, deliveryDate, orderIDs, now)
	if err != nil {
		return nil, err
	}
	if err := sessionRepo.Add(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}
