package commands

import (
	"errors"
	"time"

	"packing/internal/pkg/errs"
	"packing/internal/pkg/guard"
)

var ErrRunTimeoutSweepCommandIsNotConstructed = errors.New(
	"RunTimeoutSweepCommand must be created via NewRunTimeoutSweepCommand constructor",
)

// RunTimeoutSweepCommand triggers one sweep pass over idle active sessions.
// The pass is a pure function of the given instant: sessions whose
// lastActivityAt is older than now minus timeout are expired.
type RunTimeoutSweepCommand struct {
	now     time.Time
	timeout time.Duration

	guard guard.ConstructorGuard
}

// NewRunTimeoutSweepCommand creates a validated command.
func NewRunTimeoutSweepCommand(now time.Time, timeout time.Duration) (RunTimeoutSweepCommand, error) {
	if now.IsZero() {
		return RunTimeoutSweepCommand{}, errs.NewValueIsRequiredError("now")
	}
	if timeout <= 0 {
		return RunTimeoutSweepCommand{}, errs.NewValueIsInvalidError("timeout")
	}

	return RunTimeoutSweepCommand{
		now:     now.UTC(),
		timeout: timeout,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Now returns the instant the sweep evaluates liveness against.
func (c *RunTimeoutSweepCommand) Now() time.Time {
	return c.now
}

// Timeout returns the idle threshold.
func (c *RunTimeoutSweepCommand) Timeout() time.Duration {
	return c.timeout
}

// Cutoff returns the latest lastActivityAt an active session may have
// without being expired by this pass.
func (c *RunTimeoutSweepCommand) Cutoff() time.Time {
	return c.now.Add(-c.timeout)
}

// Validate ensures the command was created through the constructor.
func (c *RunTimeoutSweepCommand) Validate() error {
	return c.guard.Validate(ErrRunTimeoutSweepCommandIsNotConstructed)
}
