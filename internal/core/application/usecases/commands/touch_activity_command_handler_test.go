package commands_test

import (
	"testing"
	"time"

	"packing/internal/core/application/usecases/commands"
	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/session"
	"packing/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTouchActivityCommandHandler_Handle_BySessionID(t *testing.T) {
	ctx := t.Context()
	startedAt := time.Now().UTC().Add(-10 * time.Minute)

	target, err := session.NewPackingSession(
		kernel.NewUUID(), kernel.NewUUID(), testDeliveryDate(t),
		[]kernel.UUID{kernel.NewUUID()}, startedAt)
	require.NoError(t, err)

	cmd, err := commands.NewTouchActivityCommand(target.ID())
	require.NoError(t, err)

	sessionRepo := new(MockSessionRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("SessionRepository").Return(sessionRepo).Once(),
		sessionRepo.On("Get", ctx, target.ID()).Return(target, nil).Once(),
		sessionRepo.On("Update", ctx, target).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockSessionUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewTouchActivityCommandHandler(factory)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, target.LastActivityAt().After(startedAt))
	sessionRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestTouchActivityCommandHandler_Handle_ByPackerAndDate(t *testing.T) {
	ctx := t.Context()
	packerID := kernel.NewUUID()
	date := testDeliveryDate(t)
	startedAt := time.Now().UTC().Add(-10 * time.Minute)

	target, err := session.NewPackingSession(
		kernel.NewUUID(), packerID, date, []kernel.UUID{kernel.NewUUID()}, startedAt)
	require.NoError(t, err)

	cmd, err := commands.NewTouchActivityByPackerCommand(packerID, date)
	require.NoError(t, err)

	sessionRepo := new(MockSessionRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("SessionRepository").Return(sessionRepo).Once(),
		sessionRepo.On("GetActiveByPackerAndDate", ctx, packerID, date).Return(target, nil).Once(),
		sessionRepo.On("Update", ctx, target).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockSessionUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewTouchActivityCommandHandler(factory)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, target.LastActivityAt().After(startedAt))
}

func TestTouchActivityCommandHandler_Handle_MissingSessionIsNoOp(t *testing.T) {
	ctx := t.Context()
	sessionID := kernel.NewUUID()

	cmd, err := commands.NewTouchActivityCommand(sessionID)
	require.NoError(t, err)

	sessionRepo := new(MockSessionRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("SessionRepository").Return(sessionRepo).Once(),
		sessionRepo.On("Get", ctx, sessionID).
			Return(nil, errs.NewObjectNotFoundError("session", sessionID)).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockSessionUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewTouchActivityCommandHandler(factory)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	sessionRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestTouchActivityCommandHandler_Handle_EndedSessionIsNoOp(t *testing.T) {
	ctx := t.Context()
	now := time.Now().UTC()

	target, err := session.NewPackingSession(
		kernel.NewUUID(), kernel.NewUUID(), testDeliveryDate(t),
		[]kernel.UUID{kernel.NewUUID()}, now.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, target.TimeOut(now))

	cmd, err := commands.NewTouchActivityCommand(target.ID())
	require.NoError(t, err)

	sessionRepo := new(MockSessionRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("SessionRepository").Return(sessionRepo).Once(),
		sessionRepo.On("Get", ctx, target.ID()).Return(target, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockSessionUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewTouchActivityCommandHandler(factory)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	sessionRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestTouchActivityCommand_Validate_ZeroValue(t *testing.T) {
	var cmd commands.TouchActivityCommand

	err := cmd.Validate()

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrTouchActivityCommandIsNotConstructed)
}

func TestNewTouchActivityByPackerCommand_SetsByPacker(t *testing.T) {
	packerID := kernel.NewUUID()
	date := testDeliveryDate(t)

	cmd, err := commands.NewTouchActivityByPackerCommand(packerID, date)

	require.NoError(t, err)
	assert.True(t, cmd.ByPacker())
	assert.Equal(t, packerID, cmd.PackerID())
	assert.Equal(t, date, cmd.DeliveryDate())
}
