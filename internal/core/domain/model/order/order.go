package order

import (
	"errors"
	"fmt"
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through the NewOrder or RestoreOrder factory functions.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")
)

// maxItemQuantity bounds the quantity of a single packing line.
const maxItemQuantity = 1000

// Order represents the packing-relevant projection of a customer order.
// It is the aggregate root for the packing record and its concurrency token.
//
// Order follows these invariants:
//   - Must have a valid unique identifier and a non-empty order number
//   - Version starts at 1 and increments by exactly 1 on every successful
//     mutation of the packing sub-record; it is the sole concurrency token
//   - Status transitions follow the packing workflow defined by Status
//   - An order with packed progress is never wiped by a revert; it may only
//     be paused
//   - Can only be created through NewOrder or RestoreOrder
//
// The version held by the aggregate reflects the state the caller intends to
// persist: mutators bump it in memory, and the repository's conditional write
// makes the bump durable only if no concurrent writer got there first.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// orderNumber is the human-facing order reference
	orderNumber string

	// status represents the current state in the packing workflow
	status Status

	// version is the optimistic-concurrency token
	version int

	// packing is the packing sub-record guarded by version
	packing PackingRecord

	// history is the append-only status/ownership audit trail
	history []StatusHistoryEntry

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates a new Order in Confirmed status with version 1.
// Every item starts unpacked regardless of the Packed flag on input.
//
// Parameters:
//   - id: unique identifier (must be a valid UUID)
//   - orderNumber: human-facing reference (must be non-empty)
//   - items: the packing lines (at least one; each needs a non-empty SKU and
//     positive quantity)
func NewOrder(id kernel.UUID, orderNumber string, items []PackedItem) (*Order, error) {
	o := &Order{
		status:        Confirmed,
		version:       1,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setOrderNumber(orderNumber),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order from persistence.
// Unlike NewOrder it accepts any valid status, version and packing state.
func RestoreOrder(
	id kernel.UUID,
	orderNumber string,
	status Status,
	version int,
	packing PackingRecord,
	history []StatusHistoryEntry,
) (*Order, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}
	if version < 1 {
		return nil, errs.NewVersionIsInvalidErrorWithCause(
			"version", fmt.Errorf("%d is not a positive version", version))
	}

	o := &Order{
		status:        status,
		version:       version,
		packing:       packing.clone(),
		history:       append([]StatusHistoryEntry(nil), history...),
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setOrderNumber(orderNumber),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
// Call when reconstructing orders from persistence or before persisting.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// OrderNumber returns the human-facing order reference.
func (o *Order) OrderNumber() string {
	return o.orderNumber
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// Version returns the optimistic-concurrency token.
func (o *Order) Version() int {
	return o.version
}

// Packing returns a copy of the packing sub-record.
func (o *Order) Packing() PackingRecord {
	return o.packing.clone()
}

// History returns a copy of the status history entries, oldest first.
func (o *Order) History() []StatusHistoryEntry {
	return append([]StatusHistoryEntry(nil), o.history...)
}

// StartPacking puts the order into Packing status for the given packer.
// A paused order is resumed: PausedAt is cleared. Calling it on an order that
// is already being packed is allowed so takeover and resume stay idempotent.
func (o *Order) StartPacking(packerID kernel.UUID, now time.Time) error {
	if err := packerID.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.StartPacking()
	if err != nil {
		return err
	}

	note := "packing started"
	if o.packing.PausedAt != nil {
		note = "packing resumed"
	}
	o.appendHistory(now, newStatus, &packerID, note)

	o.status = newStatus
	o.packing.PausedAt = nil
	o.packing.LastPackedBy = &packerID
	o.bumpVersion()
	return nil
}

// SetItemPacked marks one packing line packed or unpacked.
func (o *Order) SetItemPacked(sku string, packed bool, packerID kernel.UUID, now time.Time) error {
	if err := packerID.Validate(); err != nil {
		return err
	}

	item, err := o.mutableItem(sku)
	if err != nil {
		return err
	}

	item.Packed = packed
	o.recordPackingActivity(packerID, now)
	o.bumpVersion()
	return nil
}

// SetItemQuantity changes the quantity of one packing line.
func (o *Order) SetItemQuantity(sku string, quantity int, packerID kernel.UUID, now time.Time) error {
	if err := packerID.Validate(); err != nil {
		return err
	}
	if quantity < 1 || quantity > maxItemQuantity {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, maxItemQuantity)
	}

	item, err := o.mutableItem(sku)
	if err != nil {
		return err
	}

	item.Quantity = quantity
	o.recordPackingActivity(packerID, now)
	o.bumpVersion()
	return nil
}

// SetNotes replaces the free-form packing notes. An empty string clears them.
func (o *Order) SetNotes(notes string, packerID kernel.UUID, now time.Time) error {
	if err := packerID.Validate(); err != nil {
		return err
	}
	if err := o.requirePacking(); err != nil {
		return err
	}

	if notes == "" {
		o.packing.Notes = nil
	} else {
		o.packing.Notes = &notes
	}
	o.recordPackingActivity(packerID, now)
	o.bumpVersion()
	return nil
}

// MarkReady completes the packing of the order.
//
// Fails with a validation error (never a version conflict) when the order has
// no packing lines or any line is still unpacked.
func (o *Order) MarkReady(packerID kernel.UUID, now time.Time) error {
	if err := packerID.Validate(); err != nil {
		return err
	}
	if len(o.packing.PackedItems) == 0 {
		return errs.NewValueIsRequiredError("packedItems")
	}
	if !o.packing.allPacked() {
		return errs.NewValueIsInvalidErrorWithCause(
			"packedItems",
			fmt.Errorf("%d of %d items are not packed yet",
				len(o.packing.PackedItems)-o.packing.PackedItemCount(), len(o.packing.PackedItems)),
		)
	}

	newStatus, err := o.status.MarkReady()
	if err != nil {
		return err
	}

	o.appendHistory(now, newStatus, &packerID, "all items packed")
	o.status = newStatus
	o.packing.LastPackedBy = &packerID
	o.packing.LastPackedAt = &now
	o.bumpVersion()
	return nil
}

// Pause preserves partial progress when the owning session times out.
// The order stays in Packing; only PausedAt and ownership metadata change.
func (o *Order) Pause(packerID kernel.UUID, now time.Time) error {
	if err := packerID.Validate(); err != nil {
		return err
	}
	if err := o.requirePacking(); err != nil {
		return err
	}

	o.appendHistory(now, o.status, &packerID,
		fmt.Sprintf("session timed out, %d packed items preserved", o.packing.PackedItemCount()))

	pausedAt := now
	o.packing.PausedAt = &pausedAt
	o.packing.LastPackedBy = &packerID
	o.bumpVersion()
	return nil
}

// RevertToConfirmed returns an idle order with zero progress to Confirmed and
// clears the packing sub-record. A pre-assigned AreaPackingSequence survives.
//
// Reverting an order that has packed progress is a domain violation: such an
// order may only be paused.
func (o *Order) RevertToConfirmed(now time.Time) error {
	if o.packing.HasProgress() {
		return errs.NewValueIsInvalidErrorWithCause(
			"packing",
			fmt.Errorf("order has %d packed items and cannot be reverted", o.packing.PackedItemCount()),
		)
	}

	newStatus, err := o.status.Revert()
	if err != nil {
		return err
	}

	previousPacker := o.packing.LastPackedBy
	note := "session timed out with no progress, packing reverted"
	if previousPacker != nil {
		note = fmt.Sprintf("%s (previous packer %s)", note, previousPacker)
	}
	o.appendHistory(now, newStatus, previousPacker, note)

	o.status = newStatus
	o.packing = PackingRecord{
		PackedItems:         unpackedCopy(o.packing.PackedItems),
		AreaPackingSequence: o.packing.AreaPackingSequence,
	}
	o.bumpVersion()
	return nil
}

// setID validates and sets the order's unique identifier.
func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

// setOrderNumber validates and sets the human-facing reference.
func (o *Order) setOrderNumber(orderNumber string) error {
	if orderNumber == "" {
		return errs.NewValueIsRequiredError("orderNumber")
	}
	o.orderNumber = orderNumber
	return nil
}

// setItems validates and installs the initial packing lines, all unpacked.
// An order always carries at least one line; orders with nothing to pack
// never enter the packing workflow.
func (o *Order) setItems(items []PackedItem) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	seen := make(map[string]struct{}, len(items))
	lines := make([]PackedItem, 0, len(items))

	for _, item := range items {
		if item.SKU == "" {
			return errs.NewValueIsRequiredError("sku")
		}
		if item.Quantity < 1 || item.Quantity > maxItemQuantity {
			return errs.NewValueIsOutOfRangeError("quantity", item.Quantity, 1, maxItemQuantity)
		}
		if _, ok := seen[item.SKU]; ok {
			return errs.NewValueIsInvalidErrorWithCause(
				"sku", fmt.Errorf("%s appears more than once", item.SKU))
		}
		seen[item.SKU] = struct{}{}
		lines = append(lines, PackedItem{SKU: item.SKU, Quantity: item.Quantity})
	}

	o.packing.PackedItems = lines
	return nil
}

// requirePacking guards packing-record mutations: only Packing orders accept them.
func (o *Order) requirePacking() error {
	if o.status != Packing {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to mutate the packing record", o.status.String()),
		)
	}
	return nil
}

// mutableItem finds a packing line by SKU for in-place mutation.
func (o *Order) mutableItem(sku string) (*PackedItem, error) {
	if err := o.requirePacking(); err != nil {
		return nil, err
	}

	for i := range o.packing.PackedItems {
		if o.packing.PackedItems[i].SKU == sku {
			return &o.packing.PackedItems[i], nil
		}
	}
	return nil, errs.NewObjectNotFoundError("sku", sku)
}

// recordPackingActivity updates ownership metadata after a packing mutation.
func (o *Order) recordPackingActivity(packerID kernel.UUID, now time.Time) {
	o.packing.LastPackedBy = &packerID
	o.packing.LastPackedAt = &now
}

// appendHistory adds one audit entry for a status or ownership change.
func (o *Order) appendHistory(at time.Time, to Status, packerID *kernel.UUID, note string) {
	o.history = append(o.history, StatusHistoryEntry{
		At:       at,
		From:     o.status,
		To:       to,
		PackerID: packerID,
		Note:     note,
	})
}

// bumpVersion advances the concurrency token by exactly one.
func (o *Order) bumpVersion() {
	o.version++
}

// unpackedCopy returns the lines with all packed flags cleared.
func unpackedCopy(items []PackedItem) []PackedItem {
	cleared := make([]PackedItem, len(items))
	for i, item := range items {
		cleared[i] = PackedItem{SKU: item.SKU, Quantity: item.Quantity}
	}
	return cleared
}
