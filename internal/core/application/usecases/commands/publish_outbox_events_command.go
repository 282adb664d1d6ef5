package commands

import (
	"errors"

	"campuseats/internal/pkg/errs"
	"campuseats/internal/pkg/guard"
)

// MaxOutboxBatchSize bounds how many events one relay run locks.
const MaxOutboxBatchSize = 1000

var ErrPublishOutboxEventsCommandIsNotConstructed = errors.New(
	"PublishOutboxEventsCommand must be created via NewPublishOutboxEventsCommand constructor",
)

// PublishOutboxEventsCommand relays up to BatchSize pending domain events.
type PublishOutboxEventsCommand struct {
	batchSize int
	guard     guard.ConstructorGuard
}

// NewPublishOutboxEventsCommand validates the batch size.
func NewPublishOutboxEventsCommand(batchSize int) (PublishOutboxEventsCommand, error) {
	if batchSize < 1 || batchSize > MaxOutboxBatchSize {
		return PublishOutboxEventsCommand{}, errs.NewValueIsOutOfRangeError("batch size", batchSize, 1, MaxOutboxBatchSize)
	}
	return PublishOutboxEventsCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c PublishOutboxEventsCommand) Validate() error {
	return c.guard.Validate(ErrPublishOutboxEventsCommandIsNotConstructed)
}

func (c PublishOutboxEventsCommand) BatchSize() int { return c.batchSize }
