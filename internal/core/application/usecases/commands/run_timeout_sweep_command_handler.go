package commands

import (
	"context"
	"log/slog"
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/order"
	"packing/internal/core/domain/model/session"
	"packing/internal/core/ports"
)

// SweepOrderOutcome describes what the sweep did to one order.
type SweepOrderOutcome struct {
	OrderID         kernel.UUID
	SessionID       kernel.UUID
	PackerID        kernel.UUID
	PackedItemCount int
}

// SweepFailure records an order or session the sweep could not process.
// OrderID is nil for session-level failures.
type SweepFailure struct {
	SessionID kernel.UUID
	OrderID   *kernel.UUID
	Err       error
}

// SweepSummary reports one sweep pass for operational visibility and for the
// resume-paused-orders prompt shown when an affected packer returns.
type SweepSummary struct {
	SessionsProcessed int
	Preserved         []SweepOrderOutcome
	Reverted          []SweepOrderOutcome
	Failures          []SweepFailure
}

// RunTimeoutSweepCommandHandler expires active sessions idle past the
// timeout threshold. Per affected order it either preserves partial progress
// (pause, keep packed items) or fully reverts an untouched order to
// Confirmed. Each session runs in its own transaction so one broken session
// cannot stall the pass.
type RunTimeoutSweepCommandHandler struct {
	uowFactory UoWFactory
	logger     *slog.Logger
}

// NewRunTimeoutSweepCommandHandler creates a handler for sweep passes.
// Requires a UoWFactory coordinating session and order repositories.
func NewRunTimeoutSweepCommandHandler(uowFactory UoWFactory, logger *slog.Logger) RunTimeoutSweepCommandHandler {
	return RunTimeoutSweepCommandHandler{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// Handle runs one sweep pass against the command's instant.
//
// The pass is idempotent: the timed-out transition is applied only to
// sessions still Active, so a rerun with no new activity finds nothing to
// do. Order writes go through the same conditional version-checked update as
// packer mutations; losing that race to an in-flight packing write is
// recorded as a failure and resolves naturally on the next pass.
func (h RunTimeoutSweepCommandHandler) Handle(
	ctx context.Context,
	command RunTimeoutSweepCommand,
) (SweepSummary, error) {
	if err := command.Validate(); err != nil {
		return SweepSummary{}, err
	}

	idle, err := h.listIdleSessions(ctx, command.Cutoff())
	if err != nil {
		return SweepSummary{}, err
	}

	summary := SweepSummary{}
	for _, id := range idle {
		h.sweepSession(ctx, id, command, &summary)
	}
	return summary, nil
}

// listIdleSessions snapshots the IDs of sessions idle past the cutoff. Only
// IDs are carried out of the read transaction; each session is re-read and
// re-checked inside its own sweep transaction.
func (h RunTimeoutSweepCommandHandler) listIdleSessions(ctx context.Context, cutoff time.Time) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	idle, err := uow.SessionRepository().GetAllActiveIdleSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(idle))
	for _, s := range idle {
		ids = append(ids, s.ID())
	}
	return ids, nil
}

func (h RunTimeoutSweepCommandHandler) sweepSession(
	ctx context.Context,
	sessionID kernel.UUID,
	command RunTimeoutSweepCommand,
	summary *SweepSummary,
) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		summary.Failures = append(summary.Failures, SweepFailure{SessionID: sessionID, Err: err})
		return
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	sessionRepo := uow.SessionRepository()
	orderRepo := uow.OrderRepository()

	target, err := sessionRepo.Get(ctx, sessionID)
	if err != nil {
		summary.Failures = append(summary.Failures, SweepFailure{SessionID: sessionID, Err: err})
		return
	}

	// The session may have been touched or ended since the snapshot.
	if !target.IsActive() || target.LastActivityAt().After(command.Cutoff()) {
		return
	}

	for _, orderID := range target.OrderIDs() {
		if err := h.sweepOrder(ctx, orderRepo, orderID, target, command.Now(), summary); err != nil {
			id := orderID
			summary.Failures = append(summary.Failures, SweepFailure{
				SessionID: sessionID,
				OrderID:   &id,
				Err:       err,
			})
			h.logger.Warn("timeout sweep failed to process order",
				"session_id", sessionID.String(),
				"order_id", orderID.String(),
				"error", err,
			)
		}
	}

	if err := target.TimeOut(command.Now()); err != nil {
		summary.Failures = append(summary.Failures, SweepFailure{SessionID: sessionID, Err: err})
		return
	}
	if err := sessionRepo.Update(ctx, target); err != nil {
		summary.Failures = append(summary.Failures, SweepFailure{SessionID: sessionID, Err: err})
		return
	}
	if err := uow.Commit(ctx); err != nil {
		summary.Failures = append(summary.Failures, SweepFailure{SessionID: sessionID, Err: err})
		return
	}

	summary.SessionsProcessed++
}

// sweepOrder preserves or reverts one order of a timed-out session. Packed
// progress is never wiped: an order with at least one packed item stays in
// Packing and only gains a pausedAt marker.
func (h RunTimeoutSweepCommandHandler) sweepOrder(
	ctx context.Context,
	orderRepo ports.OrderRepository,
	orderID kernel.UUID,
	target *session.PackingSession,
	now time.Time,
	summary *SweepSummary,
) error {
	aggregate, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if aggregate.Status() != order.Packing {
		return nil
	}

	observed := aggregate.Version()
	preserved := aggregate.Packing().HasProgress()
	if preserved {
		err = aggregate.Pause(target.PackerID(), now)
	} else {
		err = aggregate.RevertToConfirmed(now)
	}
	if err != nil {
		return err
	}

	if err := orderRepo.UpdatePacking(ctx, aggregate, observed); err != nil {
		return err
	}

	outcome := SweepOrderOutcome{
		OrderID:         orderID,
		SessionID:       target.ID(),
		PackerID:        target.PackerID(),
		PackedItemCount: aggregate.Packing().PackedItemCount(),
	}
	if preserved {
		summary.Preserved = append(summary.Preserved, outcome)
	} else {
		summary.Reverted = append(summary.Reverted, outcome)
	}
	return nil
}
