package queries

import (
	"context"
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetPausedOrdersQueryHandler reads paused orders straight from the
// database, joining the packed-item rows for progress counts.
type GetPausedOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetPausedOrdersQueryHandler creates a handler for paused order queries.
// Requires a GORM database connection.
func NewGetPausedOrdersQueryHandler(db *gorm.DB) GetPausedOrdersQueryHandler {
	return GetPausedOrdersQueryHandler{db: db}
}

// Handle returns the packer's paused orders, oldest pause first. An order
// counts as paused while it is still in Packing with pausedAt set and the
// packer was the last to touch it.
func (h GetPausedOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetPausedOrdersQuery,
) ([]GetPausedOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetPausedOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.order_number,
			count(i.sku) FILTER (WHERE i.packed) AS packed_item_count,
			count(i.sku) AS total_item_count,
			o.paused_at
		FROM orders o
		LEFT JOIN packed_items i ON i.order_id = o.id
		WHERE o.status = ?
		  AND o.paused_at IS NOT NULL
		  AND o.last_packed_by = ?
		GROUP BY o.id, o.order_number, o.paused_at
		ORDER BY o.paused_at
	`, order.Packing, query.PackerID().String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetPausedOrdersQueryResponse
		var id uuid.UUID
		var pausedAt time.Time

		err = rows.Scan(
			&id,
			&resp.OrderNumber,
			&resp.PackedItemCount,
			&resp.TotalItemCount,
			&pausedAt,
		)
		if err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.OrderID = orderID
		resp.PausedAt = pausedAt.UTC()

		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
