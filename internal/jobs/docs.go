// Package jobs provides scheduled background tasks for the order core.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. OutboxRelayJob - Runs every second to hand pending domain events to the
// notification broker and the real-time hub
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(publishOutboxHandler, cfg.OutboxBatchSize, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - A failed run is logged; its events stay pending and the next tick retries
// - Runs never overlap, so a slow broker delays events instead of duplicating them
package jobs
