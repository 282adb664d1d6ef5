package ports

import (
	"context"
	"time"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
)

// MaxOutboxAttempts is how many failed publishes a message gets before the
// relay stops fetching it. Parked messages keep their last error for
// reconciliation.
const MaxOutboxAttempts = 25

// OutboxMessage is a domain event waiting to be relayed. Payload is the JSON
// encoding of the event.
type OutboxMessage struct {
	ID         kernel.UUID
	OrderID    kernel.UUID
	EventType  order.EventType
	Payload    []byte
	OccurredAt time.Time
	Attempts   int
}

// OutboxRepository stores domain events in the same transaction as the order
// write and hands them to the relay.
type OutboxRepository interface {
	// Append stores events; called by the unit of work at commit.
	Append(ctx context.Context, events ...order.DomainEvent) error

	// FetchUnprocessed locks up to limit pending messages, oldest first.
	// Messages locked by another relay or parked after MaxOutboxAttempts
	// are skipped.
	FetchUnprocessed(ctx context.Context, limit int) ([]OutboxMessage, error)

	// MarkProcessed records a successful broker publish.
	MarkProcessed(ctx context.Context, id kernel.UUID, at time.Time) error

	// MarkFailed bumps the attempt counter and keeps the message pending.
	MarkFailed(ctx context.Context, id kernel.UUID, cause error) error
}
