package jobs

import (
	"context"
	"log/slog"
	"time"

	"packing/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// TimeoutSweepJob periodically ends packing sessions that have been idle for
// longer than the configured timeout, preserving in-progress packing work
// and reverting untouched orders.
type TimeoutSweepJob struct {
	handler commands.RunTimeoutSweepCommandHandler
	cron    *cron.Cron
	spec    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewTimeoutSweepJob creates a sweep job running on the given cron spec with
// the given idle timeout.
func NewTimeoutSweepJob(
	handler commands.RunTimeoutSweepCommandHandler,
	spec string,
	timeout time.Duration,
	logger *slog.Logger,
) *TimeoutSweepJob {
	return &TimeoutSweepJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		spec:    spec,
		timeout: timeout,
		logger:  logger.With("component", "timeout_sweep_job"),
	}
}

// Start schedules the sweep.
func (j *TimeoutSweepJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, func() {
		ctx := context.Background()

		command, err := commands.NewRunTimeoutSweepCommand(time.Now().UTC(), j.timeout)
		if err != nil {
			j.logger.ErrorContext(ctx, "Timeout sweep command construction failed", "error", err)
			return
		}

		summary, err := j.handler.Handle(ctx, command)
		if err != nil {
			j.logger.ErrorContext(ctx, "Timeout sweep failed", "error", err)
			return
		}

		// An empty pass is the normal case; keep the log quiet then.
		if summary.SessionsProcessed == 0 && len(summary.Failures) == 0 {
			return
		}

		j.logger.InfoContext(ctx, "Timeout sweep completed",
			"sessions_processed", summary.SessionsProcessed,
			"orders_preserved", len(summary.Preserved),
			"orders_reverted", len(summary.Reverted),
			"failures", len(summary.Failures),
		)
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Timeout sweep job started",
		"spec", j.spec, "timeout", j.timeout.String())
	return nil
}

// Stop stops the sweep job.
func (j *TimeoutSweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Timeout sweep job stopped")
}
