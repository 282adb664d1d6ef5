// Package postgres provides the GORM-based Unit of Work of the fulfillment core.
// The Unit of Work keeps the aggregates touched by a business transaction and
// writes their domain events to the outbox in the same database transaction.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	o, err := uow.OrderRepository().Get(ctx, orderID)
//	...
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - Each UnitOfWork instance holds one transaction; goroutines use separate instances
//   - Order writes are conditional, so no row locks are held between read and write
//   - Outbox rows commit or roll back together with the order rows
package postgres

import (
	"context"
	"fmt"

	"campuseats/internal/adapters/out/postgres/directoryrepo"
	"campuseats/internal/adapters/out/postgres/historyrepo"
	"campuseats/internal/adapters/out/postgres/orderrepo"
	"campuseats/internal/adapters/out/postgres/outboxrepo"
	"campuseats/internal/adapters/out/postgres/pgerr"
	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate represents an aggregate modified during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// eventSource is an aggregate that records domain events.
type eventSource interface {
	PullDomainEvents() []order.DomainEvent
}

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
// Each business operation gets a fresh unit of work isolated from concurrent ones.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    return err
//	}
//	factory := NewGormUnitOfWorkFactory(db)
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork instance with its own transaction state
// and aggregate tracking.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return f.CreateGorm()
}

// CreateGorm is Create with the concrete type, for adapters that narrow the
// unit of work to a handler-specific interface.
func (f *GormUnitOfWorkFactory) CreateGorm() *GormUnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and the aggregates
// modified inside it. On Commit the pending domain events of every tracked
// aggregate are appended to the outbox before the transaction commits, so an
// event is stored if and only if the change that produced it is.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin initiates a new database transaction for the unit of work.
// Calling Begin twice on the same instance does not nest transactions.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return pgerr.Translate(tx.Error, nil)
	}
	uow.tx = tx

	return nil
}

// Commit writes the pending domain events to the outbox and commits.
// Returns gorm.ErrInvalidTransaction if no transaction is active.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	var events []order.DomainEvent
	for _, tracked := range uow.trackedAggregates {
		if source, ok := tracked.Aggregate.(eventSource); ok {
			events = append(events, source.PullDomainEvents()...)
		}
	}
	if err := uow.OutboxRepository().Append(ctx, events...); err != nil {
		return fmt.Errorf("append outbox events: %w", err)
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return pgerr.Translate(err, nil)
}

// Rollback discards the transaction and forgets the tracked aggregates.
// Returns gorm.ErrInvalidTransaction if no transaction is active, which makes
// a deferred Rollback after Commit harmless.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// OrderRepository provides access to order persistence within the unit of work.
// Repository operations use the transaction if one is active, otherwise the
// main connection. Written aggregates are tracked for the outbox.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

// HistoryRepository provides access to the status audit trail.
func (uow *GormUnitOfWork) HistoryRepository() ports.HistoryRepository {
	return historyrepo.NewGormHistoryRepository(uow.conn())
}

// OutboxRepository provides access to the outbox.
func (uow *GormUnitOfWork) OutboxRepository() ports.OutboxRepository {
	return outboxrepo.NewGormOutboxRepository(uow.conn())
}

// RestaurantDirectory provides read access to restaurants.
func (uow *GormUnitOfWork) RestaurantDirectory() ports.RestaurantDirectory {
	return directoryrepo.NewGormRestaurantDirectory(uow.conn())
}

// RiderDirectory provides read access to riders.
func (uow *GormUnitOfWork) RiderDirectory() ports.RiderDirectory {
	return directoryrepo.NewGormRiderDirectory(uow.conn())
}

// TrackAggregate registers an aggregate as modified within this unit of work.
// Repository implementations call it after a successful write.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
