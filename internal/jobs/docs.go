// Package jobs provides scheduled background tasks for the packing system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required by the packing service.
//
// # Available Jobs
//
// 1. TimeoutSweepJob - Ends packing sessions whose last activity is older
// than the configured timeout. Orders with packing progress keep their
// packed state and are paused; untouched orders revert to Confirmed so
// another packer can pick them up.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(sweepHandler, "0 * * * * *", 30*time.Minute, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The sweep spec uses the six-field cron format with a seconds column. The
// default "0 * * * * *" runs once a minute, which bounds how long an
// abandoned session can linger past its timeout.
//
// # Error Handling
//
// A sweep pass never fails on a single broken session or order: per-item
// failures are collected into the sweep summary and logged, and the pass
// continues. Reruns are safe because only still-active sessions are swept.
package jobs
