package sessionrepo

import (
	"context"
	"errors"
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/session"
	"packing/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSessionRepository implements SessionRepository using GORM.
type GormSessionRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormSessionRepository creates a new GORM session repository.
func NewGormSessionRepository(db *gorm.DB, tracker aggregateTracker) *GormSessionRepository {
	return &GormSessionRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new session to the database. The partial unique index on
// (packer_id, delivery_day) turns a concurrent double-start into a constraint
// violation here instead of two active sessions; the loser gets a conflict so
// it can retry as a resume.
func (r *GormSessionRepository) Add(ctx context.Context, aggregate *session.PackingSession) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewObjectAlreadyExistsErrorWithCause("session", err)
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing session to the database.
func (r *GormSessionRepository) Update(ctx context.Context, aggregate *session.PackingSession) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&SessionDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{
			"order_ids":        dto.OrderIDs,
			"status":           dto.Status,
			"last_activity_at": dto.LastActivity,
			"ended_at":         dto.EndedAt,
			"end_reason":       dto.EndReason,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("session", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a session by ID.
//
// The row is locked FOR UPDATE so concurrent read-modify-write cycles on the
// same session serialize: inside a transaction the second reader blocks until
// the first commits and then sees its write, instead of overwriting it from a
// stale snapshot. Outside a transaction the lock is released immediately.
func (r *GormSessionRepository) Get(ctx context.Context, id kernel.UUID) (*session.PackingSession, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto SessionDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("session", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetActiveByPackerAndDate retrieves the packer's Active session for the
// given delivery date. The row is locked FOR UPDATE, same as Get, so a
// resume-merge racing another writer on the same session never loses its
// update.
func (r *GormSessionRepository) GetActiveByPackerAndDate(
	ctx context.Context,
	packerID kernel.UUID,
	date kernel.DeliveryDate,
) (*session.PackingSession, error) {
	if err := packerID.Validate(); err != nil {
		return nil, err
	}
	if err := date.Validate(); err != nil {
		return nil, err
	}

	var dto SessionDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&dto, "packer_id = ? AND delivery_day = ? AND status = ?",
			packerID.Bytes(), date.DayStart(), session.Active).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("session", packerID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllActiveByDate retrieves every Active session for the delivery date.
func (r *GormSessionRepository) GetAllActiveByDate(
	ctx context.Context,
	date kernel.DeliveryDate,
) ([]*session.PackingSession, error) {
	if err := date.Validate(); err != nil {
		return nil, err
	}

	var dtos []SessionDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "delivery_day = ? AND status = ?", date.DayStart(), session.Active).Error
	if err != nil {
		return nil, err
	}

	return r.toSessions(dtos)
}

// GetAllActiveIdleSince retrieves every Active session whose last activity
// is at or before the cutoff.
func (r *GormSessionRepository) GetAllActiveIdleSince(
	ctx context.Context,
	cutoff time.Time,
) ([]*session.PackingSession, error) {
	var dtos []SessionDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "status = ? AND last_activity_at <= ?", session.Active, cutoff).Error
	if err != nil {
		return nil, err
	}

	return r.toSessions(dtos)
}

func (r *GormSessionRepository) toSessions(dtos []SessionDTO) ([]*session.PackingSession, error) {
	sessions := make([]*session.PackingSession, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
