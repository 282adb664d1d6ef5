package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// Domain events recorded on tracked aggregates are written to the outbox
// during Commit, in the same transaction as the aggregate rows.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit appends pending domain events to the outbox and commits.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction and drops pending events.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	HistoryRepository() HistoryRepository
	OutboxRepository() OutboxRepository
	RestaurantDirectory() RestaurantDirectory
	RiderDirectory() RiderDirectory
}
