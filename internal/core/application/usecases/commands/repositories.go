// Package commands contains business operations that modify order state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management,
// conditional persistence. Domain events reach the outbox through the unit of
// work commit.
package commands

import (
	"context"

	"campuseats/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Each handler depends only on the repositories it touches.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// HistoryRepoFactory provides access to the status audit trail within a transaction.
	HistoryRepoFactory interface {
		HistoryRepository() ports.HistoryRepository
	}

	// OutboxRepoFactory provides access to the outbox within a transaction.
	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	// RestaurantDirectoryFactory provides read access to restaurants.
	RestaurantDirectoryFactory interface {
		RestaurantDirectory() ports.RestaurantDirectory
	}

	// RiderDirectoryFactory provides read access to riders.
	RiderDirectoryFactory interface {
		RiderDirectory() ports.RiderDirectory
	}

	// SettlementUoW is used to materialize orders from a payment.
	SettlementUoW interface {
		TxManager
		OrderRepoFactory
		RestaurantDirectoryFactory
	}

	// SettlementUoWFactory creates new settlement unit of work instances.
	SettlementUoWFactory interface {
		Create() SettlementUoW
	}

	// TransitionUoW is used to move an order along its status graph.
	TransitionUoW interface {
		TxManager
		OrderRepoFactory
		HistoryRepoFactory
	}

	// TransitionUoWFactory creates new transition unit of work instances.
	TransitionUoWFactory interface {
		Create() TransitionUoW
	}

	// DispatchUoW is used to bind and release riders.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   o, err := uow.OrderRepository().Get(ctx, orderID)
	//   r, err := uow.RiderDirectory().Get(ctx, riderID)
	//   // ... dispatch
	//
	//   err = uow.Commit(ctx)
	DispatchUoW interface {
		TxManager
		OrderRepoFactory
		RiderDirectoryFactory
	}

	// DispatchUoWFactory creates new dispatch unit of work instances.
	DispatchUoWFactory interface {
		Create() DispatchUoW
	}

	// OutboxUoW is used by the relay to drain pending events.
	OutboxUoW interface {
		TxManager
		OutboxRepoFactory
	}

	// OutboxUoWFactory creates new outbox unit of work instances.
	OutboxUoWFactory interface {
		Create() OutboxUoW
	}
)
