// Package session provides the PackingSession aggregate root and its
// lifecycle state machine.
//
// A packing session is a time-bounded claim by one packer over a set of
// orders for one delivery date. The package enforces:
//   - At most one Active session per (packer, delivery date)
//   - Set semantics for the claimed order IDs
//   - A one-way lifecycle: Active -> Completed | Cancelled | TimedOut,
//     with terminal states immutable
//
// Ownership overlap between sessions is not enforced here; the conflict
// detection service in core/domain/services inspects sessions for overlapping
// order claims before a new session is created.
package session
