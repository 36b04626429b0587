package queries

import (
	"context"
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/session"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveSessionsQueryHandler reads active sessions straight from the
// database. Uses direct SQL for read performance in the CQRS pattern.
type GetActiveSessionsQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveSessionsQueryHandler creates a handler for active session
// queries. Requires a GORM database connection.
func NewGetActiveSessionsQueryHandler(db *gorm.DB) GetActiveSessionsQueryHandler {
	return GetActiveSessionsQueryHandler{db: db}
}

// Handle returns the active sessions for the query's delivery date, most
// recently active first.
func (h GetActiveSessionsQueryHandler) Handle(
	ctx context.Context,
	query GetActiveSessionsQuery,
) ([]GetActiveSessionsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sessions := make([]GetActiveSessionsQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			packer_id,
			cardinality(order_ids) AS order_count,
			started_at,
			last_activity_at
		FROM sessions
		WHERE status = ? AND delivery_day = ?
		ORDER BY last_activity_at DESC
	`, session.Active, query.DeliveryDate().DayStart()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetActiveSessionsQueryResponse
		var id, packerID uuid.UUID
		var startedAt, lastActivityAt time.Time

		err = rows.Scan(
			&id,
			&packerID,
			&resp.OrderCount,
			&startedAt,
			&lastActivityAt,
		)
		if err != nil {
			return nil, err
		}

		sessionID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.SessionID = sessionID

		packer, idErr := kernel.UUIDFromBytes(packerID[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.PackerID = packer

		resp.StartedAt = startedAt.UTC()
		resp.LastActivityAt = lastActivityAt.UTC()
		sessions = append(sessions, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
