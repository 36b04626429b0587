package order

import (
	"time"

	"packing/internal/core/domain/model/kernel"
)

// PackedItem is a single line of the packing record: one SKU, the quantity
// to pack, and whether it has been packed.
type PackedItem struct {
	SKU      string
	Quantity int
	Packed   bool
}

// PackingRecord is the packing sub-record of an order. Optional fields are
// pointers: absence means the order was never packed or paused.
//
// The record is guarded by the order's version counter; every successful
// mutation increments the version by exactly one.
type PackingRecord struct {
	PackedItems []PackedItem
	Notes       *string
	PausedAt    *time.Time
	LastPackedBy *kernel.UUID
	LastPackedAt *time.Time

	// AreaPackingSequence is a pre-assigned position in the warehouse walking
	// route. It survives a full revert.
	AreaPackingSequence *int
}

// PackedItemCount returns the number of items marked packed.
func (p PackingRecord) PackedItemCount() int {
	count := 0
	for _, item := range p.PackedItems {
		if item.Packed {
			count++
		}
	}
	return count
}

// HasProgress reports whether at least one item has been packed.
func (p PackingRecord) HasProgress() bool {
	return p.PackedItemCount() > 0
}

// allPacked reports whether every item has been packed.
func (p PackingRecord) allPacked() bool {
	for _, item := range p.PackedItems {
		if !item.Packed {
			return false
		}
	}
	return true
}

// clone returns a deep copy so aggregate getters cannot leak internal state.
func (p PackingRecord) clone() PackingRecord {
	c := p
	c.PackedItems = make([]PackedItem, len(p.PackedItems))
	copy(c.PackedItems, p.PackedItems)
	if p.Notes != nil {
		notes := *p.Notes
		c.Notes = &notes
	}
	if p.PausedAt != nil {
		pausedAt := *p.PausedAt
		c.PausedAt = &pausedAt
	}
	if p.LastPackedBy != nil {
		packedBy := *p.LastPackedBy
		c.LastPackedBy = &packedBy
	}
	if p.LastPackedAt != nil {
		packedAt := *p.LastPackedAt
		c.LastPackedAt = &packedAt
	}
	if p.AreaPackingSequence != nil {
		seq := *p.AreaPackingSequence
		c.AreaPackingSequence = &seq
	}
	return c
}

// StatusHistoryEntry records one status or ownership change of an order.
// Entries are append-only and give operators an audit trail of who acted on
// the order and why.
type StatusHistoryEntry struct {
	At       time.Time
	From     Status
	To       Status
	PackerID *kernel.UUID
	Note     string
}
