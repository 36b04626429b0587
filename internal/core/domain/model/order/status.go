package order

import (
	"fmt"

	"packing/internal/pkg/errs"
)

// Status represents the packing-relevant lifecycle state of an order.
// It implements a state machine with defined transitions so that orders
// follow the correct packing workflow.
//
// State transitions:
//
//	Confirmed ──> Packing ──> ReadyForDelivery
//	     ^           │
//	     └───────────┘
//	(revert by timeout sweep, zero progress only)
//
// Packing -> Packing is allowed: a resumed or taken-over order stays in
// Packing while a different packer continues the work.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Confirmed is the initial status of an order scheduled for delivery.
	// Orders in this status are waiting for a packer to start on them.
	Confirmed

	// Packing indicates a packer has started working on the order.
	Packing

	// ReadyForDelivery indicates every item has been packed.
	// This is a final state for the packing workflow.
	ReadyForDelivery
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:          "Unknown",
		Confirmed:        "Confirmed",
		Packing:          "Packing",
		ReadyForDelivery: "ReadyForDelivery",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Confirmed:        "Confirmed",
		Packing:          "Packing",
		ReadyForDelivery: "ReadyForDelivery",
	}
}

// Validate checks if the Status value is valid.
// Unknown (0) and any unmapped values are invalid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the human-readable name of the status.
// Implements fmt.Stringer and is safe to call on any Status value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// StartPacking transitions the status to Packing.
//
// Valid transitions:
//   - Confirmed -> Packing (packer starts on the order)
//   - Packing -> Packing (resume after pause, or takeover by another packer)
//
// Returns (0, error) if the transition is not allowed from the current status.
func (s Status) StartPacking() (Status, error) {
	if s != Confirmed && s != Packing {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to start packing", s.String()),
		)
	}

	return Packing, nil
}

// MarkReady transitions the status to ReadyForDelivery.
// Only valid from Packing. ReadyForDelivery is a final state for the
// packing workflow.
func (s Status) MarkReady() (Status, error) {
	if s != Packing {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to mark ready", s.String()),
		)
	}

	return ReadyForDelivery, nil
}

// Revert transitions the status back to Confirmed.
// Only valid from Packing; used by the timeout sweep when an idle order has
// zero packed items.
func (s Status) Revert() (Status, error) {
	if s != Packing {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to revert", s.String()),
		)
	}

	return Confirmed, nil
}
