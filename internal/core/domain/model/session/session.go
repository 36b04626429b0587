package session

import (
	"errors"
	"fmt"
	"time"

	"packing/internal/core/domain/model/kernel"
	"packing/internal/pkg/errs"
)

var (
	// ErrPackingSessionIsNotConstructed is returned when a PackingSession was
	// not created through NewPackingSession or RestorePackingSession.
	ErrPackingSessionIsNotConstructed = errors.New(
		"PackingSession must be created via NewPackingSession or RestorePackingSession constructor")
)

// PackingSession is a time-bounded claim by one packer over a set of orders
// for one delivery date. It is the aggregate root for session lifecycle and
// ownership.
//
// PackingSession follows these invariants:
//   - At most one Active session exists per (packer, delivery date); the
//     store enforces this with a conditional insert
//   - The order set has set semantics: merging never duplicates an ID
//   - Terminal states are immutable; any mutation of an ended session fails
//   - Can only be created through NewPackingSession or RestorePackingSession
type PackingSession struct {
	// id is the unique identifier for the session
	id kernel.UUID

	// packerID identifies the packer owning this session
	packerID kernel.UUID

	// deliveryDate is the day this session is scoped to
	deliveryDate kernel.DeliveryDate

	// orderIDs is the set of orders claimed by this session
	orderIDs []kernel.UUID

	// status represents the current lifecycle state
	status Status

	// startedAt is when the session was created
	startedAt time.Time

	// lastActivityAt is the liveness marker refreshed by activity pings
	lastActivityAt time.Time

	// endedAt is set when the session leaves the Active state
	endedAt *time.Time

	// endReason records why the session ended
	endReason *EndReason

	// isConstructed ensures the session was created via a constructor
	isConstructed bool
}

// NewPackingSession creates a new Active session scoped to exactly the given
// order IDs. The order set must be non-empty; duplicates are collapsed.
func NewPackingSession(
	id kernel.UUID,
	packerID kernel.UUID,
	deliveryDate kernel.DeliveryDate,
	orderIDs []kernel.UUID,
	now time.Time,
) (*PackingSession, error) {
	s := &PackingSession{
		status:         Active,
		startedAt:      now,
		lastActivityAt: now,
		isConstructed:  true,
	}

	if err := errors.Join(
		s.setID(id),
		s.setPackerID(packerID),
		s.setDeliveryDate(deliveryDate),
		s.setOrderIDs(orderIDs),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// RestorePackingSession reconstructs a PackingSession from persistence.
func RestorePackingSession(
	id kernel.UUID,
	packerID kernel.UUID,
	deliveryDate kernel.DeliveryDate,
	orderIDs []kernel.UUID,
	status Status,
	startedAt time.Time,
	lastActivityAt time.Time,
	endedAt *time.Time,
	endReason *EndReason,
) (*PackingSession, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}

	s := &PackingSession{
		status:         status,
		startedAt:      startedAt,
		lastActivityAt: lastActivityAt,
		endedAt:        endedAt,
		endReason:      endReason,
		isConstructed:  true,
	}

	if err := errors.Join(
		s.setID(id),
		s.setPackerID(packerID),
		s.setDeliveryDate(deliveryDate),
	); err != nil {
		return nil, err
	}

	// Terminal sessions may legitimately hold an empty order set after a
	// full takeover, so restore skips the non-empty check.
	s.orderIDs = dedupe(orderIDs)

	return s, nil
}

// Validate ensures the PackingSession instance was properly constructed.
func (s *PackingSession) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrPackingSessionIsNotConstructed
	}

	return nil
}

// IsEqual compares two sessions by their unique identifiers.
func (s *PackingSession) IsEqual(other *PackingSession) bool {
	return other != nil && s.id.IsEqual(other.id)
}

// ID returns the session's unique identifier.
func (s *PackingSession) ID() kernel.UUID {
	return s.id
}

// PackerID returns the owning packer's identifier.
func (s *PackingSession) PackerID() kernel.UUID {
	return s.packerID
}

// DeliveryDate returns the delivery day this session is scoped to.
func (s *PackingSession) DeliveryDate() kernel.DeliveryDate {
	return s.deliveryDate
}

// OrderIDs returns a copy of the claimed order set.
func (s *PackingSession) OrderIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), s.orderIDs...)
}

// Status returns the current lifecycle state.
func (s *PackingSession) Status() Status {
	return s.status
}

// IsActive reports whether the session still owns its orders.
func (s *PackingSession) IsActive() bool {
	return s.status == Active
}

// StartedAt returns when the session was created.
func (s *PackingSession) StartedAt() time.Time {
	return s.startedAt
}

// LastActivityAt returns the liveness marker.
func (s *PackingSession) LastActivityAt() time.Time {
	return s.lastActivityAt
}

// EndedAt returns when the session left the Active state, or nil.
func (s *PackingSession) EndedAt() *time.Time {
	return s.endedAt
}

// EndReason returns why the session ended, or nil while it is active.
func (s *PackingSession) EndReason() *EndReason {
	return s.endReason
}

// ContainsOrder reports whether the session claims the given order.
func (s *PackingSession) ContainsOrder(orderID kernel.UUID) bool {
	for _, id := range s.orderIDs {
		if id.IsEqual(orderID) {
			return true
		}
	}
	return false
}

// OverlappingOrders returns the subset of the given IDs this session claims.
func (s *PackingSession) OverlappingOrders(orderIDs []kernel.UUID) []kernel.UUID {
	var overlap []kernel.UUID
	for _, id := range orderIDs {
		if s.ContainsOrder(id) {
			overlap = append(overlap, id)
		}
	}
	return overlap
}

// Touch refreshes the liveness marker. Only valid on an active session.
func (s *PackingSession) Touch(now time.Time) error {
	if err := s.requireActive(); err != nil {
		return err
	}

	s.lastActivityAt = now
	return nil
}

// MergeOrderIDs unions the given IDs into the claimed set and refreshes
// activity. Merging IDs the session already holds is a no-op for the set, so
// repeated start-or-resume calls stay idempotent.
func (s *PackingSession) MergeOrderIDs(orderIDs []kernel.UUID, now time.Time) error {
	if err := s.requireActive(); err != nil {
		return err
	}

	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return err
		}
		if !s.ContainsOrder(id) {
			s.orderIDs = append(s.orderIDs, id)
		}
	}
	s.lastActivityAt = now
	return nil
}

// RemoveOrderIDs withdraws the given IDs from the claimed set; IDs the
// session does not hold are ignored. Returns the number of orders remaining.
func (s *PackingSession) RemoveOrderIDs(orderIDs []kernel.UUID) (int, error) {
	if err := s.requireActive(); err != nil {
		return 0, err
	}

	remaining := s.orderIDs[:0]
	for _, held := range s.orderIDs {
		withdrawn := false
		for _, id := range orderIDs {
			if held.IsEqual(id) {
				withdrawn = true
				break
			}
		}
		if !withdrawn {
			remaining = append(remaining, held)
		}
	}
	s.orderIDs = remaining
	return len(s.orderIDs), nil
}

// Complete ends the session normally.
func (s *PackingSession) Complete(now time.Time) error {
	return s.endWith(Status.Complete, EndReasonAllOrdersPacked, now)
}

// Cancel ends the session with the given reason, for manual ends and full
// takeovers.
func (s *PackingSession) Cancel(reason EndReason, now time.Time) error {
	return s.endWith(Status.Cancel, reason, now)
}

// TimeOut expires the session from a sweep pass.
func (s *PackingSession) TimeOut(now time.Time) error {
	return s.endWith(Status.TimeOut, EndReasonTimeout, now)
}

// endWith applies a terminal transition and records when and why.
func (s *PackingSession) endWith(transition func(Status) (Status, error), reason EndReason, now time.Time) error {
	newStatus, err := transition(s.status)
	if err != nil {
		return err
	}

	s.status = newStatus
	s.endedAt = &now
	s.endReason = &reason
	return nil
}

// requireActive rejects mutations of ended sessions.
func (s *PackingSession) requireActive() error {
	if s.status != Active {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("session is %s and cannot be modified", s.status.String()),
		)
	}
	return nil
}

// setID validates and sets the session's unique identifier.
func (s *PackingSession) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

// setPackerID validates and sets the owning packer.
func (s *PackingSession) setPackerID(packerID kernel.UUID) error {
	if err := packerID.Validate(); err != nil {
		return err
	}
	s.packerID = packerID
	return nil
}

// setDeliveryDate validates and sets the delivery day.
func (s *PackingSession) setDeliveryDate(deliveryDate kernel.DeliveryDate) error {
	if err := deliveryDate.Validate(); err != nil {
		return err
	}
	s.deliveryDate = deliveryDate
	return nil
}

// setOrderIDs validates and installs the initial order set.
func (s *PackingSession) setOrderIDs(orderIDs []kernel.UUID) error {
	if len(orderIDs) == 0 {
		return errs.NewValueIsRequiredError("orderIds")
	}
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return err
		}
	}
	s.orderIDs = dedupe(orderIDs)
	return nil
}

// dedupe collapses duplicate IDs while preserving first-seen order.
func dedupe(ids []kernel.UUID) []kernel.UUID {
	seen := make(map[kernel.UUID]struct{}, len(ids))
	out := make([]kernel.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
