// Package order provides domain entities and business logic for the
// packing-relevant projection of customer orders. It implements the Order
// aggregate root with its packing sub-record, optimistic-concurrency token,
// and status state machine.
//
// The package includes:
//   - Order: the aggregate root owning the packing record, version and history
//   - Status: a state machine enforcing the Confirmed -> Packing -> ReadyForDelivery workflow
//   - PackingRecord / PackedItem: the versioned packing sub-record
//   - StatusHistoryEntry: the append-only audit trail
//
// Key business rules:
//   - The version increments by exactly one on every successful packing mutation
//     and is the sole concurrency token presented by callers
//   - An order with packed progress is never wiped back to empty; a timed-out
//     session may only pause it
//   - Mark-ready requires every item to be packed and at least one item to exist
//   - A revert clears the packing record but keeps the pre-assigned area
//     packing sequence
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
