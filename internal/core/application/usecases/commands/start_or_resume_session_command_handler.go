package commands

import (
	"context"
	"errors"
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/session"
	"packing/internal/core/domain/services"
	"packing/internal/core/ports"
	"packing/internal/pkg/errs"
)

// StartOrResumeSessionResult carries the outcome of a session start attempt.
// Exactly one of Session and Conflict is set: a Conflict is a decision for
// the caller, not an error.
type StartOrResumeSessionResult struct {
	Session  *session.PackingSession
	Conflict *services.Conflict
}

// StartOrResumeSessionCommandHandler orchestrates session creation and
// resumption with conflict detection against other packers' active sessions.
//
// The handler is idempotent for a given (packer, date, orderIds) input:
// repeating the call merges into the same session and leaves other packers'
// sessions untouched.
type StartOrResumeSessionCommandHandler struct {
	uowFactory UoWFactory
}

// NewStartOrResumeSessionCommandHandler creates a handler for session starts.
// Requires a UoWFactory coordinating session and order repositories.
func NewStartOrResumeSessionCommandHandler(uowFactory UoWFactory) StartOrResumeSessionCommandHandler {
	return StartOrResumeSessionCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the session start.
//
// Resume path: the packer's own active session for the date absorbs the
// requested IDs (set union) and its activity marker is refreshed.
//
// Start path: all other active sessions for the date are scanned for
// overlapping order claims. Any overlap returns a Conflict describing every
// contending session with packed-item counts per contested order; no session
// is created and no other session is mutated. Without overlap a new session
// scoped to exactly the requested IDs is created and its orders transition
// to Packing.
func (h StartOrResumeSessionCommandHandler) Handle(
	ctx context.Context,
	command StartOrResumeSessionCommand,
) (StartOrResumeSessionResult, error) {
	if err := command.Validate(); err != nil {
		return StartOrResumeSessionResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return StartOrResumeSessionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	sessionRepo := uow.SessionRepository()
	orderRepo := uow.OrderRepository()
	now := time.Now().UTC()

	existing, err := sessionRepo.GetActiveByPackerAndDate(ctx, command.PackerID(), command.DeliveryDate())
	if err == nil {
		return h.resume(ctx, uow, sessionRepo, orderRepo, existing, command, now)
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		return StartOrResumeSessionResult{}, err
	}

	active, err := sessionRepo.GetAllActiveByDate(ctx, command.DeliveryDate())
	if err != nil {
		return StartOrResumeSessionResult{}, err
	}

	others := make([]*session.PackingSession, 0, len(active))
	for _, s := range active {
		if !s.PackerID().IsEqual(command.PackerID()) {
			others = append(others, s)
		}
	}

	detector := services.NewConflictDetector()
	if conflict := detector.Detect(command.OrderIDs(), others, nil); conflict != nil {
		contested, loadErr := orderRepo.GetByIDs(ctx, conflict.ConflictingOrderIDs())
		if loadErr != nil {
			return StartOrResumeSessionResult{}, loadErr
		}
		return StartOrResumeSessionResult{
			Conflict: detector.Detect(command.OrderIDs(), others, contested),
		}, nil
	}

	created, err := session.NewPackingSession(
		kernel.NewUUID(), command.PackerID(), command.DeliveryDate(), command.OrderIDs(), now)
	if err != nil {
		return StartOrResumeSessionResult{}, err
	}

	if err = sessionRepo.Add(ctx, created); err != nil {
		return StartOrResumeSessionResult{}, err
	}

	if err = h.startPackingOrders(ctx, orderRepo, command.OrderIDs(), command.PackerID(), now); err != nil {
		return StartOrResumeSessionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return StartOrResumeSessionResult{}, err
	}

	return StartOrResumeSessionResult{Session: created}, nil
}

// resume merges the requested IDs into the packer's existing session and
// transitions any newly claimed orders to Packing.
func (h StartOrResumeSessionCommandHandler) resume(
	ctx context.Context,
	uow UoW,
	sessionRepo ports.SessionRepository,
	orderRepo ports.OrderRepository,
	existing *session.PackingSession,
	command StartOrResumeSessionCommand,
	now time.Time,
) (StartOrResumeSessionResult, error) {
	var added []kernel.UUID
	for _, id := range command.OrderIDs() {
		if !existing.ContainsOrder(id) {
			added = append(added, id)
		}
	}

	if err := existing.MergeOrderIDs(command.OrderIDs(), now); err != nil {
		return StartOrResumeSessionResult{}, err
	}

	if err := sessionRepo.Update(ctx, existing); err != nil {
		return StartOrResumeSessionResult{}, err
	}

	if err := h.startPackingOrders(ctx, orderRepo, added, command.PackerID(), now); err != nil {
		return StartOrResumeSessionResult{}, err
	}

	if err := uow.Commit(ctx); err != nil {
		return StartOrResumeSessionResult{}, err
	}

	return StartOrResumeSessionResult{Session: existing}, nil
}

// startPackingOrders transitions the given orders to Packing via
// version-checked writes. A concurrent writer on any order surfaces as a
// VersionConflictError to the caller.
func (h StartOrResumeSessionCommandHandler) startPackingOrders(
	ctx context.Context,
	orderRepo ports.OrderRepository,
	orderIDs []kernel.UUID,
	packerID kernel.UUID,
	now time.Time,
) error {
	for _, id := range orderIDs {
		o, err := orderRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		observed := o.Version()
		if err = o.StartPacking(packerID, now); err != nil {
			return err
		}

		if err = orderRepo.UpdatePacking(ctx, o, observed); err != nil {
			return err
		}
	}
	return nil
}
