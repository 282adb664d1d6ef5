package jobs

import (
	"context"
	"log/slog"
	"time"

	"campuseats/internal/core/application/usecases/commands"
	"campuseats/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// relayTimeout bounds one relay run so a hung broker cannot hold the outbox
// rows locked indefinitely.
const relayTimeout = 30 * time.Second

// OutboxRelay is the handler the relay job drives.
type OutboxRelay interface {
	Handle(ctx context.Context, cmd commands.PublishOutboxEventsCommand) (commands.PublishOutboxEventsResult, error)
}

// OutboxRelayJob hands pending domain events to the notification broker.
// Runs every second; a run that is still busy makes the next tick a no-op.
type OutboxRelayJob struct {
	handler   OutboxRelay
	batchSize int
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewOutboxRelayJob creates a new job for relaying outbox events in batches
// of batchSize.
func NewOutboxRelayJob(handler OutboxRelay, batchSize int, logger *slog.Logger) *OutboxRelayJob {
	return &OutboxRelayJob{
		handler:   handler,
		batchSize: batchSize,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger.With("component", "outbox_relay_job"),
	}
}

// Start begins the relay job to run every second.
func (j *OutboxRelayJob) Start() error {
	// Validate the batch size once instead of on every tick.
	if _, err := commands.NewPublishOutboxEventsCommand(j.batchSize); err != nil {
		return err
	}

	if _, err := j.cron.AddFunc("* * * * * *", j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox relay job started (running every second)", "batch_size", j.batchSize)
	return nil
}

// Stop stops the relay job and waits for a running batch to finish.
func (j *OutboxRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}

func (j *OutboxRelayJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
	defer cancel()

	cmd, err := commands.NewPublishOutboxEventsCommand(j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox relay job misconfigured", "error", err)
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox relay job failed", "error", err)
		return
	}

	metrics.RecordOutbox(result.Published, result.Failed)
	if result.Failed > 0 {
		j.logger.WarnContext(ctx, "Some outbox events were not published",
			"published", result.Published, "failed", result.Failed)
	}
}
