// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. This package implements the repository pattern for the
// order domain aggregate, handling the conversion between domain entities and
// database representations.
package orderrepo

import (
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The packing sub-record's scalar fields are flattened into the orders table;
// the packed items and the status history live in child tables so read models
// can count progress with plain SQL.
type OrderDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderNumber string    `gorm:"uniqueIndex"`
	Status      int       `gorm:"index"`
	Version     int

	Notes               *string
	PausedAt            *time.Time `gorm:"index"`
	LastPackedBy        *uuid.UUID `gorm:"type:uuid;index"`
	LastPackedAt        *time.Time
	AreaPackingSequence *int

	Items   []PackedItemDTO    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History []StatusHistoryDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// PackedItemDTO represents one packing line of an order.
type PackedItemDTO struct {
	OrderID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	SKU      string    `gorm:"primaryKey;column:sku"`
	Quantity int
	Packed   bool
}

// TableName specifies the database table name for packing lines.
func (PackedItemDTO) TableName() string {
	return "packed_items"
}

// StatusHistoryDTO represents one audit-trail entry of an order.
type StatusHistoryDTO struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID `gorm:"type:uuid;index"`
	At         time.Time
	FromStatus int
	ToStatus   int
	PackerID   *uuid.UUID `gorm:"type:uuid"`
	Note       string
}

// TableName specifies the database table name for the audit trail.
func (StatusHistoryDTO) TableName() string {
	return "order_status_history"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	id := aggregate.ID().Bytes()
	packing := aggregate.Packing()

	items := make([]PackedItemDTO, 0, len(packing.PackedItems))
	for _, item := range packing.PackedItems {
		items = append(items, PackedItemDTO{
			OrderID:  id,
			SKU:      item.SKU,
			Quantity: item.Quantity,
			Packed:   item.Packed,
		})
	}

	history := make([]StatusHistoryDTO, 0, len(aggregate.History()))
	for _, entry := range aggregate.History() {
		var packerID *uuid.UUID
		if entry.PackerID != nil {
			raw := entry.PackerID.Bytes()
			packerID = &raw
		}
		history = append(history, StatusHistoryDTO{
			OrderID:    id,
			At:         entry.At,
			FromStatus: int(entry.From),
			ToStatus:   int(entry.To),
			PackerID:   packerID,
			Note:       entry.Note,
		})
	}

	var lastPackedBy *uuid.UUID
	if packing.LastPackedBy != nil {
		raw := packing.LastPackedBy.Bytes()
		lastPackedBy = &raw
	}

	return OrderDTO{
		ID:                  id,
		OrderNumber:         aggregate.OrderNumber(),
		Status:              int(aggregate.Status()),
		Version:             aggregate.Version(),
		Notes:               packing.Notes,
		PausedAt:            packing.PausedAt,
		LastPackedBy:        lastPackedBy,
		LastPackedAt:        packing.LastPackedAt,
		AreaPackingSequence: packing.AreaPackingSequence,
		Items:               items,
		History:             history,
	}
}

// toDomain converts a database DTO to an order domain aggregate using
// RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	items := make([]order.PackedItem, 0, len(dto.Items))
	for _, item := range dto.Items {
		items = append(items, order.PackedItem{
			SKU:      item.SKU,
			Quantity: item.Quantity,
			Packed:   item.Packed,
		})
	}

	var lastPackedBy *kernel.UUID
	if dto.LastPackedBy != nil {
		packedBy, packerErr := kernel.UUIDFromBytes((*dto.LastPackedBy)[:])
		if packerErr != nil {
			return nil, packerErr
		}
		lastPackedBy = &packedBy
	}

	history := make([]order.StatusHistoryEntry, 0, len(dto.History))
	for _, entry := range dto.History {
		var packerID *kernel.UUID
		if entry.PackerID != nil {
			packer, packerErr := kernel.UUIDFromBytes((*entry.PackerID)[:])
			if packerErr != nil {
				return nil, packerErr
			}
			packerID = &packer
		}
		history = append(history, order.StatusHistoryEntry{
			At:       entry.At.UTC(),
			From:     order.Status(entry.FromStatus),
			To:       order.Status(entry.ToStatus),
			PackerID: packerID,
			Note:     entry.Note,
		})
	}

	packing := order.PackingRecord{
		PackedItems:         items,
		Notes:               dto.Notes,
		PausedAt:            utcPtr(dto.PausedAt),
		LastPackedBy:        lastPackedBy,
		LastPackedAt:        utcPtr(dto.LastPackedAt),
		AreaPackingSequence: dto.AreaPackingSequence,
	}

	return order.RestoreOrder(id, dto.OrderNumber, order.Status(dto.Status), dto.Version, packing, history)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
