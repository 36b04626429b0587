package services

import (
	"sort"
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/core/domain/model/order"
	"packing/internal/core/domain/model/session"
)

// OrderProgress describes how far another packer has come on a contested
// order. Clients present these counts so a takeover decision is informed
// rather than blind.
type OrderProgress struct {
	OrderID         kernel.UUID
	OrderNumber     string
	PackedItemCount int
	TotalItemCount  int
}

// ContendingSession identifies one active session whose order claims overlap
// the requested set.
type ContendingSession struct {
	SessionID           kernel.UUID
	PackerID            kernel.UUID
	LastActivityAt      time.Time
	ConflictingOrderIDs []kernel.UUID
}

// Conflict is the ephemeral descriptor returned when a session start would
// claim orders another packer already owns. It is a value, not an error: the
// caller decides whether to resolve it via takeover.
type Conflict struct {
	// Sessions lists every contending session, most recently active first.
	Sessions []ContendingSession

	// Progress carries packed-item counts for each contested order.
	Progress []OrderProgress
}

// ConflictingOrderIDs returns the union of contested order IDs across all
// contending sessions.
func (c *Conflict) ConflictingOrderIDs() []kernel.UUID {
	seen := make(map[kernel.UUID]struct{})
	var ids []kernel.UUID
	for _, cs := range c.Sessions {
		for _, id := range cs.ConflictingOrderIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// ConflictDetector is a domain service that detects overlapping order claims
// between a requested session start and the active sessions of other packers
// on the same delivery date.
//
// Detection is pure and side-effect-free: no session is created or mutated.
// The requesting packer's own session must be excluded by the caller before
// detection (resuming one's own session is a merge, not a conflict).
type ConflictDetector struct{}

// NewConflictDetector creates a new ConflictDetector instance.
func NewConflictDetector() ConflictDetector {
	return ConflictDetector{}
}

// Detect scans the given sessions for claims overlapping the requested order
// IDs. Returns nil when no active session contends; otherwise returns a
// Conflict listing every contending session ordered by recency, with progress
// counts taken from the supplied orders.
//
// Orders for which no progress projection is supplied are reported with zero
// counts rather than omitted, so the client always sees every contested ID.
func (d ConflictDetector) Detect(
	requestedOrderIDs []kernel.UUID,
	otherSessions []*session.PackingSession,
	contestedOrders []*order.Order,
) *Conflict {
	var contending []ContendingSession
	for _, other := range otherSessions {
		if !other.IsActive() {
			continue
		}
		overlap := other.OverlappingOrders(requestedOrderIDs)
		if len(overlap) == 0 {
			continue
		}
		contending = append(contending, ContendingSession{
			SessionID:           other.ID(),
			PackerID:            other.PackerID(),
			LastActivityAt:      other.LastActivityAt(),
			ConflictingOrderIDs: overlap,
		})
	}

	if len(contending) == 0 {
		return nil
	}

	sort.SliceStable(contending, func(i, j int) bool {
		return contending[i].LastActivityAt.After(contending[j].LastActivityAt)
	})

	conflict := &Conflict{Sessions: contending}
	conflict.Progress = d.progressFor(conflict.ConflictingOrderIDs(), contestedOrders)
	return conflict
}

// progressFor builds a progress entry per contested order ID.
func (d ConflictDetector) progressFor(contestedIDs []kernel.UUID, orders []*order.Order) []OrderProgress {
	byID := make(map[kernel.UUID]*order.Order, len(orders))
	for _, o := range orders {
		byID[o.ID()] = o
	}

	progress := make([]OrderProgress, 0, len(contestedIDs))
	for _, id := range contestedIDs {
		entry := OrderProgress{OrderID: id}
		if o, ok := byID[id]; ok {
			packing := o.Packing()
			entry.OrderNumber = o.OrderNumber()
			entry.PackedItemCount = packing.PackedItemCount()
			entry.TotalItemCount = len(packing.PackedItems)
		}
		progress = append(progress, entry)
	}
	return progress
}
