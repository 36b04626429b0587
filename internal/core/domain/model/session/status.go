package session

import (
	"fmt"

	"packing/internal/pkg/errs"
)

// Status represents the lifecycle state of a packing session.
// It implements a state machine with defined transitions: Active is the only
// live state, and every other state is terminal.
//
// State transitions:
//
//	Active ──┬──> Completed  (all orders packed / session ended)
//	         ├──> Cancelled  (full takeover or manual end)
//	         └──> TimedOut   (timeout sweep)
//
// Terminal states are immutable: no transition leaves them.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Active is the initial status of a session. Only active sessions own
	// orders and accept activity pings.
	Active

	// Completed indicates the session ended normally.
	Completed

	// Cancelled indicates the session was superseded or manually ended.
	Cancelled

	// TimedOut indicates the timeout sweep expired the session.
	TimedOut
)

// EndReason records why a session left the Active state.
type EndReason string

const (
	// EndReasonAllOrdersPacked ends a session whose orders are all ready.
	EndReasonAllOrdersPacked EndReason = "all_orders_packed"

	// EndReasonManualEnd ends a session on explicit packer request.
	EndReasonManualEnd EndReason = "manual_end"

	// EndReasonNewSessionStarted cancels a session fully taken over by
	// another packer.
	EndReasonNewSessionStarted EndReason = "new_session_started"

	// EndReasonTimeout expires an idle session during a sweep.
	EndReasonTimeout EndReason = "timeout"
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "Unknown",
		Active:    "Active",
		Completed: "Completed",
		Cancelled: "Cancelled",
		TimedOut:  "TimedOut",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Active:    "Active",
		Completed: "Completed",
		Cancelled: "Cancelled",
		TimedOut:  "TimedOut",
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

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled || s == TimedOut
}

// end transitions an Active status to the given terminal state.
func (s Status) end(to Status) (Status, error) {
	if s != Active {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to transition to %s", s.String(), to.String()),
		)
	}
	return to, nil
}

// Complete transitions the status to Completed. Only valid from Active.
func (s Status) Complete() (Status, error) {
	return s.end(Completed)
}

// Cancel transitions the status to Cancelled. Only valid from Active.
func (s Status) Cancel() (Status, error) {
	return s.end(Cancelled)
}

// TimeOut transitions the status to TimedOut. Only valid from Active, which
// keeps repeated sweep passes from reapplying the transition.
func (s Status) TimeOut() (Status, error) {
	return s.end(TimedOut)
}
