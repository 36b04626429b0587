package commands_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"packing/internal/core/application/usecases/commands"
	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/order"
	"packing/internal/core/domain/model/session"
	"packing/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sweepTimeout = 30 * time.Minute

func TestRunTimeoutSweepCommandHandler_Handle_PreservesProgress(t *testing.T) {
	ctx := t.Context()
	now := time.Now().UTC()
	packerID := kernel.NewUUID()

	aggregate := testOrder(t, kernel.NewUUID(), "ORD-600")
	require.NoError(t, aggregate.StartPacking(packerID, now.Add(-time.Hour)))
	require.NoError(t, aggregate.SetItemPacked("SKU-1", true, packerID, now.Add(-time.Hour)))
	observed := aggregate.Version()

	idle, err := session.NewPackingSession(
		kernel.NewUUID(), packerID, testDeliveryDate(t),
		[]kernel.UUID{aggregate.ID()}, now.Add(-time.Hour))
	require.NoError(t, err)

	cmd, err := commands.NewRunTimeoutSweepCommand(now, sweepTimeout)
	require.NoError(t, err)

	listSessionRepo := new(MockSessionRepository)
	listUow := new(MockUoW)
	sweepSessionRepo := new(MockSessionRepository)
	sweepOrderRepo := new(MockOrderRepository)
	sweepUow := new(MockUoW)

	mock.InOrder(
		listUow.On("Begin", ctx).Return(nil).Once(),
		listUow.On("SessionRepository").Return(listSessionRepo).Once(),
		listSessionRepo.On("GetAllActiveIdleSince", ctx, cmd.Cutoff()).
			Return([]*session.PackingSession{idle}, nil).Once(),
		listUow.On("Rollback", ctx).Return(nil).Once(),

		sweepUow.On("Begin", ctx).Return(nil).Once(),
		sweepUow.On("SessionRepository").Return(sweepSessionRepo).Once(),
		sweepUow.On("OrderRepository").Return(sweepOrderRepo).Once(),
		sweepSessionRepo.On("Get", ctx, idle.ID()).Return(idle, nil).Once(),
		sweepOrderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		sweepOrderRepo.On("UpdatePacking", ctx, aggregate, observed).Return(nil).Once(),
		sweepSessionRepo.On("Update", ctx, idle).Return(nil).Once(),
		sweepUow.On("Commit", ctx).Return(nil).Once(),
		sweepUow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(listUow).Once()
	factory.On("Create").Return(sweepUow).Once()

	handler := commands.NewRunTimeoutSweepCommandHandler(factory, slog.Default())
	summary, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.SessionsProcessed)
	require.Len(t, summary.Preserved, 1)
	assert.Empty(t, summary.Reverted)
	assert.Empty(t, summary.Failures)
	assert.Equal(t, aggregate.ID(), summary.Preserved[0].OrderID)
	assert.Equal(t, 1, summary.Preserved[0].PackedItemCount)

	// The order keeps its progress and is only paused.
	assert.Equal(t, order.Packing, aggregate.Status())
	assert.NotNil(t, aggregate.Packing().PausedAt)
	assert.Equal(t, 1, aggregate.Packing().PackedItemCount())

	assert.Equal(t, session.TimedOut, idle.Status())
	require.NotNil(t, idle.EndReason())
	assert.Equal(t, session.EndReasonTimeout, *idle.EndReason())
}

func TestRunTimeoutSweepCommandHandler_Handle_RevertsUntouchedOrder(t *testing.T) {
	ctx := t.Context()
	now := time.Now().UTC()
	packerID := kernel.NewUUID()

	aggregate := testOrder(t, kernel.NewUUID(), "ORD-601")
	require.NoError(t, aggregate.StartPacking(packerID, now.Add(-time.Hour)))
	observed := aggregate.Version()

	idle, err := session.NewPackingSession(
		kernel.NewUUID(), packerID, testDeliveryDate(t),
		[]kernel.UUID{aggregate.ID()}, now.Add(-time.Hour))
	require.NoError(t, err)

	cmd, err := commands.NewRunTimeoutSweepCommand(now, sweepTimeout)
	require.NoError(t, err)

	listSessionRepo := new(MockSessionRepository)
	listUow := new(MockUoW)
	sweepSessionRepo := new(MockSessionRepository)
	sweepOrderRepo := new(MockOrderRepository)
	sweepUow := new(MockUoW)

	mock.InOrder(
		listUow.On("Begin", ctx).Return(nil).Once(),
		listUow.On("SessionRepository").Return(listSessionRepo).Once(),
		listSessionRepo.On("GetAllActiveIdleSince", ctx, cmd.Cutoff()).
			Return([]*session.PackingSession{idle}, nil).Once(),
		listUow.On("Rollback", ctx).Return(nil).Once(),

		sweepUow.On("Begin", ctx).Return(nil).Once(),
		sweepUow.On("SessionRepository").Return(sweepSessionRepo).Once(),
		sweepUow.On("OrderRepository").Return(sweepOrderRepo).Once(),
		sweepSessionRepo.On("Get", ctx, idle.ID()).Return(idle, nil).Once(),
		sweepOrderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		sweepOrderRepo.On("UpdatePacking", ctx, aggregate, observed).Return(nil).Once(),
		sweepSessionRepo.On("Update", ctx, idle).Return(nil).Once(),
		sweepUow.On("Commit", ctx).Return(nil).Once(),
		sweepUow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(listUow).Once()
	factory.On("Create").Return(sweepUow).Once()

	handler := commands.NewRunTimeoutSweepCommandHandler(factory, slog.Default())
	summary, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.SessionsProcessed)
	assert.Empty(t, summary.Preserved)
	require.Len(t, summary.Reverted, 1)
	assert.Equal(t, aggregate.ID(), summary.Reverted[0].OrderID)

	// An untouched order falls back to Confirmed with an empty record.
	assert.Equal(t, order.Confirmed, aggregate.Status())
	assert.Equal(t, 0, aggregate.Packing().PackedItemCount())
	assert.Nil(t, aggregate.Packing().PausedAt)
}

func TestRunTimeoutSweepCommandHandler_Handle_SkipsSessionTouchedSinceSnapshot(t *testing.T) {
	ctx := t.Context()
	now := time.Now().UTC()

	idle, err := session.NewPackingSession(
		kernel.NewUUID(), kernel.NewUUID(), testDeliveryDate(t),
		[]kernel.UUID{kernel.NewUUID()}, now.Add(-time.Hour))
	require.NoError(t, err)

	cmd, err := commands.NewRunTimeoutSweepCommand(now, sweepTimeout)
	require.NoError(t, err)

	// The packer came back between the snapshot and the sweep transaction.
	require.NoError(t, idle.Touch(now))

	listSessionRepo := new(MockSessionRepository)
	listUow := new(MockUoW)
	sweepSessionRepo := new(MockSessionRepository)
	sweepOrderRepo := new(MockOrderRepository)
	sweepUow := new(MockUoW)

	mock.InOrder(
		listUow.On("Begin", ctx).Return(nil).Once(),
		listUow.On("SessionRepository").Return(listSessionRepo).Once(),
		listSessionRepo.On("GetAllActiveIdleSince", ctx, cmd.Cutoff()).
			Return([]*session.PackingSession{idle}, nil).Once(),
		listUow.On("Rollback", ctx).Return(nil).Once(),

		sweepUow.On("Begin", ctx).Return(nil).Once(),
		sweepUow.On("SessionRepository").Return(sweepSessionRepo).Once(),
		sweepUow.On("OrderRepository").Return(sweepOrderRepo).Once(),
		sweepSessionRepo.On("Get", ctx, idle.ID()).Return(idle, nil).Once(),
		sweepUow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(listUow).Once()
	factory.On("Create").Return(sweepUow).Once()

	handler := commands.NewRunTimeoutSweepCommandHandler(factory, slog.Default())
	summary, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 0, summary.SessionsProcessed)
	assert.Equal(t, session.Active, idle.Status())
	sweepSessionRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	sweepUow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestRunTimeoutSweepCommandHandler_Handle_CollectsOrderFailures(t *testing.T) {
	ctx := t.Context()
	now := time.Now().UTC()
	packerID := kernel.NewUUID()

	broken := testOrder(t, kernel.NewUUID(), "ORD-602")
	require.NoError(t, broken.StartPacking(packerID, now.Add(-time.Hour)))
	brokenObserved := broken.Version()

	healthy := testOrder(t, kernel.NewUUID(), "ORD-603")
	require.NoError(t, healthy.StartPacking(packerID, now.Add(-time.Hour)))
	healthyObserved := healthy.Version()

	idle, err := session.NewPackingSession(
		kernel.NewUUID(), packerID, testDeliveryDate(t),
		[]kernel.UUID{broken.ID(), healthy.ID()}, now.Add(-time.Hour))
	require.NoError(t, err)

	cmd, err := commands.NewRunTimeoutSweepCommand(now, sweepTimeout)
	require.NoError(t, err)

	listSessionRepo := new(MockSessionRepository)
	listUow := new(MockUoW)
	sweepSessionRepo := new(MockSessionRepository)
	sweepOrderRepo := new(MockOrderRepository)
	sweepUow := new(MockUoW)

	mock.InOrder(
		listUow.On("Begin", ctx).Return(nil).Once(),
		listUow.On("SessionRepository").Return(listSessionRepo).Once(),
		listSessionRepo.On("GetAllActiveIdleSince", ctx, cmd.Cutoff()).
			Return([]*session.PackingSession{idle}, nil).Once(),
		listUow.On("Rollback", ctx).Return(nil).Once(),

		sweepUow.On("Begin", ctx).Return(nil).Once(),
		sweepUow.On("SessionRepository").Return(sweepSessionRepo).Once(),
		sweepUow.On("OrderRepository").Return(sweepOrderRepo).Once(),
		sweepSessionRepo.On("Get", ctx, idle.ID()).Return(idle, nil).Once(),
		sweepOrderRepo.On("Get", ctx, broken.ID()).Return(broken, nil).Once(),
		sweepOrderRepo.On("UpdatePacking", ctx, broken, brokenObserved).
			Return(errs.NewVersionConflictError("order", broken.ID().String(), brokenObserved)).Once(),
		sweepOrderRepo.On("Get", ctx, healthy.ID()).Return(healthy, nil).Once(),
		sweepOrderRepo.On("UpdatePacking", ctx, healthy, healthyObserved).Return(nil).Once(),
		sweepSessionRepo.On("Update", ctx, idle).Return(nil).Once(),
		sweepUow.On("Commit", ctx).Return(nil).Once(),
		sweepUow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(listUow).Once()
	factory.On("Create").Return(sweepUow).Once()

	handler := commands.NewRunTimeoutSweepCommandHandler(factory, slog.Default())
	summary, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, summary.SessionsProcessed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, idle.ID(), summary.Failures[0].SessionID)
	require.NotNil(t, summary.Failures[0].OrderID)
	assert.Equal(t, broken.ID(), *summary.Failures[0].OrderID)
	require.Len(t, summary.Reverted, 1)
	assert.Equal(t, healthy.ID(), summary.Reverted[0].OrderID)
	assert.Equal(t, session.TimedOut, idle.Status())
}

func TestRunTimeoutSweepCommandHandler_Handle_NoIdleSessions(t *testing.T) {
	ctx := t.Context()

	cmd, err := commands.NewRunTimeoutSweepCommand(time.Now().UTC(), sweepTimeout)
	require.NoError(t, err)

	sessionRepo := new(MockSessionRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("SessionRepository").Return(sessionRepo).Once(),
		sessionRepo.On("GetAllActiveIdleSince", ctx, cmd.Cutoff()).
			Return([]*session.PackingSession{}, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewRunTimeoutSweepCommandHandler(factory, slog.Default())
	summary, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Zero(t, summary.SessionsProcessed)
	assert.Empty(t, summary.Failures)
}

func TestRunTimeoutSweepCommandHandler_Handle_ListError(t *testing.T) {
	ctx := t.Context()

	cmd, err := commands.NewRunTimeoutSweepCommand(time.Now().UTC(), sweepTimeout)
	require.NoError(t, err)

	sessionRepo := new(MockSessionRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("SessionRepository").Return(sessionRepo).Once(),
		sessionRepo.On("GetAllActiveIdleSince", ctx, cmd.Cutoff()).
			Return(nil, errors.New("database error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewRunTimeoutSweepCommandHandler(factory, slog.Default())
	_, err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.EqualError(t, err, "database error")
}

func TestNewRunTimeoutSweepCommand_Invalid(t *testing.T) {
	_, err := commands.NewRunTimeoutSweepCommand(time.Time{}, sweepTimeout)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = commands.NewRunTimeoutSweepCommand(time.Now().UTC(), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestRunTimeoutSweepCommand_Cutoff(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cmd, err := commands.NewRunTimeoutSweepCommand(now, sweepTimeout)

	require.NoError(t, err)
	assert.Equal(t, now.Add(-sweepTimeout), cmd.Cutoff())
}
