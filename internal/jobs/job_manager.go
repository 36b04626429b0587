package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"packing/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	timeoutSweepJob *TimeoutSweepJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	sweepHandler commands.RunTimeoutSweepCommandHandler,
	sweepSpec string,
	sessionTimeout time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		timeoutSweepJob: NewTimeoutSweepJob(sweepHandler, sweepSpec, sessionTimeout, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.timeoutSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start timeout sweep job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.timeoutSweepJob.Stop()
}
