// Package sessionrepo provides data transfer objects and mapping functions
// for packing session persistence. This package implements the repository
// pattern for the session domain aggregate, handling the conversion between
// domain entities and database representations.
package sessionrepo

import (
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/session"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SessionDTO represents the database structure for persisting packing
// session aggregates. The claimed order IDs are a uuid[] column: the set is
// only ever read and written as a whole, together with the session row.
//
// The partial unique index enforces at most one Active session per packer
// and delivery day at the store level, closing the double-start race between
// concurrently running service instances. The index predicate hardcodes the
// Active status value.
type SessionDTO struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	PackerID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_sessions_one_active,where:status = 1"`
	DeliveryDay  time.Time      `gorm:"not null;uniqueIndex:idx_sessions_one_active,where:status = 1;index"`
	OrderIDs     pq.StringArray `gorm:"type:uuid[];column:order_ids"`
	Status       int            `gorm:"index"`
	StartedAt    time.Time
	LastActivity time.Time `gorm:"column:last_activity_at;index"`
	EndedAt      *time.Time
	EndReason    *string
}

// TableName specifies the database table name for session entities.
func (SessionDTO) TableName() string {
	return "sessions"
}

// fromDomain converts a session domain aggregate to its database
// representation.
func fromDomain(aggregate *session.PackingSession) SessionDTO {
	orderIDs := make(pq.StringArray, 0, len(aggregate.OrderIDs()))
	for _, id := range aggregate.OrderIDs() {
		orderIDs = append(orderIDs, id.String())
	}

	var endReason *string
	if reason := aggregate.EndReason(); reason != nil {
		raw := string(*reason)
		endReason = &raw
	}

	return SessionDTO{
		ID:           aggregate.ID().Bytes(),
		PackerID:     aggregate.PackerID().Bytes(),
		DeliveryDay:  aggregate.DeliveryDate().DayStart(),
		OrderIDs:     orderIDs,
		Status:       int(aggregate.Status()),
		StartedAt:    aggregate.StartedAt(),
		LastActivity: aggregate.LastActivityAt(),
		EndedAt:      aggregate.EndedAt(),
		EndReason:    endReason,
	}
}

// toDomain converts a database DTO to a session domain aggregate using
// RestorePackingSession.
func toDomain(dto SessionDTO) (*session.PackingSession, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	packerID, err := kernel.UUIDFromBytes(dto.PackerID[:])
	if err != nil {
		return nil, err
	}

	deliveryDate, err := kernel.NewDeliveryDate(dto.DeliveryDay)
	if err != nil {
		return nil, err
	}

	orderIDs := make([]kernel.UUID, 0, len(dto.OrderIDs))
	for _, raw := range dto.OrderIDs {
		orderID, idErr := kernel.UUIDFromString(raw)
		if idErr != nil {
			return nil, idErr
		}
		orderIDs = append(orderIDs, orderID)
	}

	var endReason *session.EndReason
	if dto.EndReason != nil {
		reason := session.EndReason(*dto.EndReason)
		endReason = &reason
	}

	var endedAt *time.Time
	if dto.EndedAt != nil {
		utc := dto.EndedAt.UTC()
		endedAt = &utc
	}

	return session.RestorePackingSession(
		id,
		packerID,
		deliveryDate,
		orderIDs,
		session.Status(dto.Status),
		dto.StartedAt.UTC(),
		dto.LastActivity.UTC(),
		endedAt,
		endReason,
	)
}
