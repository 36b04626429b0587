package http

import (
	"time"

	"packing/internal/core/application/usecases/commands"
	"packing/internal/core/application/usecases/queries"
	"packing/internal/core/domain/model/order"
	"packing/internal/core/domain/model/session"
	"packing/internal/core/domain/services"
)

// Error is the uniform error payload for all endpoints.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// StartSessionRequest asks for a packing session covering the given orders.
type StartSessionRequest struct {
	PackerID     string   `json:"packerId"`
	DeliveryDate string   `json:"deliveryDate"`
	OrderIDs     []string `json:"orderIds"`
}

// TakeoverRequest resolves a conflict by moving orders to the requesting
// packer's session.
type TakeoverRequest struct {
	NewPackerID       string   `json:"newPackerId"`
	ExistingSessionID string   `json:"existingSessionId"`
	OrderIDs          []string `json:"orderIds"`
}

// TouchRequest refreshes a session's activity marker. Either sessionId or
// the packerId/deliveryDate pair identifies the session.
type TouchRequest struct {
	SessionID    string `json:"sessionId,omitempty"`
	PackerID     string `json:"packerId,omitempty"`
	DeliveryDate string `json:"deliveryDate,omitempty"`
}

// MutatePackingRequest is one version-checked change to an order's packing
// record. Change selects the variant; the variant's fields follow.
type MutatePackingRequest struct {
	PackerID        string `json:"packerId"`
	ObservedVersion int    `json:"observedVersion"`
	Change          string `json:"change"`
	SKU             string `json:"sku,omitempty"`
	Packed          bool   `json:"packed,omitempty"`
	Quantity        int    `json:"quantity,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// EndSessionRequest ends a session with the given reason.
type EndSessionRequest struct {
	Reason string `json:"reason"`
}

// Session is the wire representation of a packing session.
type Session struct {
	ID             string     `json:"id"`
	PackerID       string     `json:"packerId"`
	DeliveryDate   string     `json:"deliveryDate"`
	OrderIDs       []string   `json:"orderIds"`
	Status         string     `json:"status"`
	StartedAt      time.Time  `json:"startedAt"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
	EndedAt        *time.Time `json:"endedAt,omitempty"`
	EndReason      *string    `json:"endReason,omitempty"`
}

// StartSessionResponse carries either the session or the conflict, never
// both.
type StartSessionResponse struct {
	Session  *Session  `json:"session,omitempty"`
	Conflict *Conflict `json:"conflict,omitempty"`
}

// Conflict describes the sessions contending for the requested orders.
type Conflict struct {
	Sessions []ContendingSession `json:"sessions"`
	Progress []OrderProgress     `json:"progress"`
}

// ContendingSession is one active session holding contested orders.
type ContendingSession struct {
	SessionID           string    `json:"sessionId"`
	PackerID            string    `json:"packerId"`
	LastActivityAt      time.Time `json:"lastActivityAt"`
	ConflictingOrderIDs []string  `json:"conflictingOrderIds"`
}

// OrderProgress reports packing progress on one contested order.
type OrderProgress struct {
	OrderID         string `json:"orderId"`
	OrderNumber     string `json:"orderNumber"`
	PackedItemCount int    `json:"packedItemCount"`
	TotalItemCount  int    `json:"totalItemCount"`
}

// Order is the wire representation of an order's packing state.
type Order struct {
	ID          string       `json:"id"`
	OrderNumber string       `json:"orderNumber"`
	Status      string       `json:"status"`
	Version     int          `json:"version"`
	Items       []PackedItem `json:"items"`
	Notes       *string      `json:"notes,omitempty"`
	PausedAt    *time.Time   `json:"pausedAt,omitempty"`
}

// PackedItem is one line of an order's packing record.
type PackedItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Packed   bool   `json:"packed"`
}

// ActiveSession is one row of the active-sessions dashboard view.
type ActiveSession struct {
	SessionID      string    `json:"sessionId"`
	PackerID       string    `json:"packerId"`
	OrderCount     int       `json:"orderCount"`
	StartedAt      time.Time `json:"startedAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
}

// PausedOrder is one order a packer can resume.
type PausedOrder struct {
	OrderID         string    `json:"orderId"`
	OrderNumber     string    `json:"orderNumber"`
	PackedItemCount int       `json:"packedItemCount"`
	TotalItemCount  int       `json:"totalItemCount"`
	PausedAt        time.Time `json:"pausedAt"`
}

func toSessionDTO(s *session.PackingSession) *Session {
	orderIDs := make([]string, 0, len(s.OrderIDs()))
	for _, id := range s.OrderIDs() {
		orderIDs = append(orderIDs, id.String())
	}

	dto := &Session{
		ID:             s.ID().String(),
		PackerID:       s.PackerID().String(),
		DeliveryDate:   s.DeliveryDate().String(),
		OrderIDs:       orderIDs,
		Status:         s.Status().String(),
		StartedAt:      s.StartedAt(),
		LastActivityAt: s.LastActivityAt(),
		EndedAt:        s.EndedAt(),
	}
	if reason := s.EndReason(); reason != nil {
		value := string(*reason)
		dto.EndReason = &value
	}
	return dto
}

func toConflictDTO(c *services.Conflict) *Conflict {
	dto := &Conflict{
		Sessions: make([]ContendingSession, 0, len(c.Sessions)),
		Progress: make([]OrderProgress, 0, len(c.Progress)),
	}
	for _, cs := range c.Sessions {
		ids := make([]string, 0, len(cs.ConflictingOrderIDs))
		for _, id := range cs.ConflictingOrderIDs {
			ids = append(ids, id.String())
		}
		dto.Sessions = append(dto.Sessions, ContendingSession{
			SessionID:           cs.SessionID.String(),
			PackerID:            cs.PackerID.String(),
			LastActivityAt:      cs.LastActivityAt,
			ConflictingOrderIDs: ids,
		})
	}
	for _, p := range c.Progress {
		dto.Progress = append(dto.Progress, OrderProgress{
			OrderID:         p.OrderID.String(),
			OrderNumber:     p.OrderNumber,
			PackedItemCount: p.PackedItemCount,
			TotalItemCount:  p.TotalItemCount,
		})
	}
	return dto
}

func toOrderDTO(o *order.Order) *Order {
	packing := o.Packing()
	items := make([]PackedItem, 0, len(packing.PackedItems))
	for _, item := range packing.PackedItems {
		items = append(items, PackedItem{
			SKU:      item.SKU,
			Quantity: item.Quantity,
			Packed:   item.Packed,
		})
	}

	return &Order{
		ID:          o.ID().String(),
		OrderNumber: o.OrderNumber(),
		Status:      o.Status().String(),
		Version:     o.Version(),
		Items:       items,
		Notes:       packing.Notes,
		PausedAt:    packing.PausedAt,
	}
}

func toActiveSessionDTOs(rows []queries.GetActiveSessionsQueryResponse) []ActiveSession {
	response := make([]ActiveSession, 0, len(rows))
	for _, row := range rows {
		response = append(response, ActiveSession{
			SessionID:      row.SessionID.String(),
			PackerID:       row.PackerID.String(),
			OrderCount:     row.OrderCount,
			StartedAt:      row.StartedAt,
			LastActivityAt: row.LastActivityAt,
		})
	}
	return response
}

func toPausedOrderDTOs(rows []queries.GetPausedOrdersQueryResponse) []PausedOrder {
	response := make([]PausedOrder, 0, len(rows))
	for _, row := range rows {
		response = append(response, PausedOrder{
			OrderID:         row.OrderID.String(),
			OrderNumber:     row.OrderNumber,
			PackedItemCount: row.PackedItemCount,
			TotalItemCount:  row.TotalItemCount,
			PausedAt:        row.PausedAt,
		})
	}
	return response
}

func (r MutatePackingRequest) toChange() (commands.PackingChange, bool) {
	switch r.Change {
	case "set_item_packed":
		return commands.SetItemPackedChange{SKU: r.SKU, Packed: r.Packed}, true
	case "set_item_quantity":
		return commands.SetItemQuantityChange{SKU: r.SKU, Quantity: r.Quantity}, true
	case "edit_notes":
		return commands.EditNotesChange{Notes: r.Notes}, true
	case "mark_ready":
		return commands.MarkReadyChange{}, true
	default:
		return nil, false
	}
}
