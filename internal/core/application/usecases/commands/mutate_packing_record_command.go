package commands

import (
	"errors"
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/order"
	"packing/internal/pkg/errs"
	"packing/internal/pkg/guard"
)

var ErrMutatePackingRecordCommandIsNotConstructed = errors.New(
	"MutatePackingRecordCommand must be created via NewMutatePackingRecordCommand constructor",
)

// PackingChange is one mutation of an order's packing sub-record. Each
// variant applies itself to the aggregate; the aggregate enforces the status
// machine and bumps the version.
type PackingChange interface {
	apply(aggregate *order.Order, packerID kernel.UUID, now time.Time) error
}

// SetItemPackedChange toggles the packed flag of one item.
type SetItemPackedChange struct {
	SKU    string
	Packed bool
}

func (c SetItemPackedChange) apply(aggregate *order.Order, packerID kernel.UUID, now time.Time) error {
	return aggregate.SetItemPacked(c.SKU, c.Packed, packerID, now)
}

// SetItemQuantityChange corrects the quantity of one item.
type SetItemQuantityChange struct {
	SKU      string
	Quantity int
}

func (c SetItemQuantityChange) apply(aggregate *order.Order, packerID kernel.UUID, now time.Time) error {
	return aggregate.SetItemQuantity(c.SKU, c.Quantity, packerID, now)
}

// EditNotesChange replaces the packing notes; an empty string clears them.
type EditNotesChange struct {
	Notes string
}

func (c EditNotesChange) apply(aggregate *order.Order, packerID kernel.UUID, now time.Time) error {
	return aggregate.SetNotes(c.Notes, packerID, now)
}

// MarkReadyChange completes packing, requiring every item packed.
type MarkReadyChange struct{}

func (c MarkReadyChange) apply(aggregate *order.Order, packerID kernel.UUID, now time.Time) error {
	return aggregate.MarkReady(packerID, now)
}

// MutatePackingRecordCommand is a version-checked mutation of an order's
// packing sub-record. ObservedVersion is the version the caller last read;
// the write succeeds only if no other writer committed since.
type MutatePackingRecordCommand struct {
	orderID         kernel.UUID
	packerID        kernel.UUID
	observedVersion int
	change          PackingChange

	guard guard.ConstructorGuard
}

// NewMutatePackingRecordCommand creates a validated command.
func NewMutatePackingRecordCommand(
	orderID kernel.UUID,
	packerID kernel.UUID,
	observedVersion int,
	change PackingChange,
) (MutatePackingRecordCommand, error) {
	if err := orderID.Validate(); err != nil {
		return MutatePackingRecordCommand{}, err
	}
	if err := packerID.Validate(); err != nil {
		return MutatePackingRecordCommand{}, err
	}
	if observedVersion < 1 {
		return MutatePackingRecordCommand{}, errs.NewVersionIsInvalidError("observedVersion")
	}
	if change == nil {
		return MutatePackingRecordCommand{}, errs.NewValueIsRequiredError("change")
	}

	return MutatePackingRecordCommand{
		orderID:         orderID,
		packerID:        packerID,
		observedVersion: observedVersion,
		change:          change,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

// OrderID returns the mutated order's identifier.
func (c *MutatePackingRecordCommand) OrderID() kernel.UUID {
	return c.orderID
}

// PackerID returns the packer performing the mutation.
func (c *MutatePackingRecordCommand) PackerID() kernel.UUID {
	return c.packerID
}

// ObservedVersion returns the version the caller last read.
func (c *MutatePackingRecordCommand) ObservedVersion() int {
	return c.observedVersion
}

// Change returns the mutation to apply.
func (c *MutatePackingRecordCommand) Change() PackingChange {
	return c.change
}

// Validate ensures the command was created through the constructor.
func (c *MutatePackingRecordCommand) Validate() error {
	return c.guard.Validate(ErrMutatePackingRecordCommandIsNotConstructed)
}
