package commands_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"packing/internal/core/application/usecases/commands"
	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/order"
	"packing/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testPackingOrder(t *testing.T, packerID kernel.UUID) *order.Order {
	t.Helper()
	o := testOrder(t, kernel.NewUUID(), "ORD-500")
	require.NoError(t, o.StartPacking(packerID, time.Now().UTC()))
	return o
}

func TestMutatePackingRecordCommandHandler_Handle_SetItemPacked(t *testing.T) {
	ctx := t.Context()
	packerID := kernel.NewUUID()
	aggregate := testPackingOrder(t, packerID) // version 2 after StartPacking
	observed := aggregate.Version()

	cmd, err := commands.NewMutatePackingRecordCommand(
		aggregate.ID(), packerID, observed, commands.SetItemPackedChange{SKU: "SKU-1", Packed: true})
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		orderRepo.On("UpdatePacking", ctx, aggregate, observed).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	notifier := new(MockReadyNotifier)
	handler := commands.NewMutatePackingRecordCommandHandler(factory, notifier, slog.Default())
	mutated, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, observed+1, mutated.Version())
	assert.Equal(t, 1, mutated.Packing().PackedItemCount())
	notifier.AssertNotCalled(t, "NotifyOrderReady", mock.Anything, mock.Anything, mock.Anything)
	orderRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestMutatePackingRecordCommandHandler_Handle_StaleVersion(t *testing.T) {
	ctx := t.Context()
	packerID := kernel.NewUUID()
	aggregate := testPackingOrder(t, packerID)
	stale := aggregate.Version() - 1

	cmd, err := commands.NewMutatePackingRecordCommand(
		aggregate.ID(), packerID, stale, commands.SetItemPackedChange{SKU: "SKU-1", Packed: true})
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewMutatePackingRecordCommandHandler(factory, nil, slog.Default())
	_, err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrVersionConflict)
	// The aggregate was not mutated.
	assert.Equal(t, 0, aggregate.Packing().PackedItemCount())
	orderRepo.AssertNotCalled(t, "UpdatePacking", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestMutatePackingRecordCommandHandler_Handle_ConditionalUpdateLost(t *testing.T) {
	ctx := t.Context()
	packerID := kernel.NewUUID()
	aggregate := testPackingOrder(t, packerID)
	observed := aggregate.Version()

	cmd, err := commands.NewMutatePackingRecordCommand(
		aggregate.ID(), packerID, observed, commands.EditNotesChange{Notes: "fragile"})
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		orderRepo.On("UpdatePacking", ctx, aggregate, observed).
			Return(errs.NewVersionConflictError("order", aggregate.ID().String(), observed)).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewMutatePackingRecordCommandHandler(factory, nil, slog.Default())
	_, err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrVersionConflict)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestMutatePackingRecordCommandHandler_Handle_MarkReadyNotifies(t *testing.T) {
	ctx := t.Context()
	packerID := kernel.NewUUID()
	now := time.Now().UTC()

	aggregate := testOrder(t, kernel.NewUUID(), "ORD-501")
	require.NoError(t, aggregate.StartPacking(packerID, now))
	require.NoError(t, aggregate.SetItemPacked("SKU-1", true, packerID, now))
	require.NoError(t, aggregate.SetItemPacked("SKU-2", true, packerID, now))
	observed := aggregate.Version()

	cmd, err := commands.NewMutatePackingRecordCommand(
		aggregate.ID(), packerID, observed, commands.MarkReadyChange{})
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	notifier := new(MockReadyNotifier)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		orderRepo.On("UpdatePacking", ctx, aggregate, observed).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		notifier.On("NotifyOrderReady", ctx, aggregate.ID(), "ORD-501").Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewMutatePackingRecordCommandHandler(factory, notifier, slog.Default())
	mutated, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.ReadyForDelivery, mutated.Status())
	notifier.AssertExpectations(t)
}

func TestMutatePackingRecordCommandHandler_Handle_NotifierFailureIsNotPropagated(t *testing.T) {
	ctx := t.Context()
	packerID := kernel.NewUUID()
	now := time.Now().UTC()

	aggregate := testOrder(t, kernel.NewUUID(), "ORD-502")
	require.NoError(t, aggregate.StartPacking(packerID, now))
	require.NoError(t, aggregate.SetItemPacked("SKU-1", true, packerID, now))
	require.NoError(t, aggregate.SetItemPacked("SKU-2", true, packerID, now))
	observed := aggregate.Version()

	cmd, err := commands.NewMutatePackingRecordCommand(
		aggregate.ID(), packerID, observed, commands.MarkReadyChange{})
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	notifier := new(MockReadyNotifier)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		orderRepo.On("UpdatePacking", ctx, aggregate, observed).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		notifier.On("NotifyOrderReady", ctx, aggregate.ID(), "ORD-502").
			Return(errors.New("broker unavailable")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewMutatePackingRecordCommandHandler(factory, notifier, slog.Default())
	mutated, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.ReadyForDelivery, mutated.Status())
}

func TestMutatePackingRecordCommandHandler_Handle_MarkReadyWithUnpackedItems(t *testing.T) {
	ctx := t.Context()
	packerID := kernel.NewUUID()
	aggregate := testPackingOrder(t, packerID)
	observed := aggregate.Version()

	cmd, err := commands.NewMutatePackingRecordCommand(
		aggregate.ID(), packerID, observed, commands.MarkReadyChange{})
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewMutatePackingRecordCommandHandler(factory, nil, slog.Default())
	_, err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	orderRepo.AssertNotCalled(t, "UpdatePacking", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewMutatePackingRecordCommand_InvalidObservedVersion(t *testing.T) {
	_, err := commands.NewMutatePackingRecordCommand(
		kernel.NewUUID(), kernel.NewUUID(), 0, commands.MarkReadyChange{})

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrVersionIsInvalid)
}

func TestNewMutatePackingRecordCommand_NilChange(t *testing.T) {
	_, err := commands.NewMutatePackingRecordCommand(
		kernel.NewUUID(), kernel.NewUUID(), 1, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestMutatePackingRecordCommand_Validate_ZeroValue(t *testing.T) {
	var cmd commands.MutatePackingRecordCommand

	err := cmd.Validate()

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrMutatePackingRecordCommandIsNotConstructed)
}
