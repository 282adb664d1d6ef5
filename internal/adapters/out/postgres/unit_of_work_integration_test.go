package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "campuseats/internal/adapters/out/postgres"
	"campuseats/internal/adapters/out/postgres/outboxrepo"
	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

// UnitOfWorkIntegrationTestSuite provides integration testing for the
// GORM-based Unit of Work with a real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

// SetupSuite initializes PostgreSQL container and database connection for all tests.
func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

// SetupTest truncates all tables to prevent test interference.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, order_status_history, outbox_events, restaurants, riders").Error
	suite.Require().NoError(err)
}

// TearDownSuite cleans up PostgreSQL container after all tests complete.
func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")

	suite.NotNil(uow1.OrderRepository())
	suite.NotNil(uow1.HistoryRepository())
	suite.NotNil(uow1.OutboxRepository())
	suite.NotNil(uow1.RestaurantDirectory())
	suite.NotNil(uow1.RiderDirectory())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().Error(uow.Commit(ctx), "Should error when committing without active transaction")
	suite.Require().Error(uow.Rollback(ctx), "Should error when rolling back without active transaction")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_CommitWritesEventsToOutbox() {
	ctx := context.Background()
	testOrder := createTestOrder(suite)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))
	suite.Require().NoError(uow.Commit(ctx))

	suite.Empty(testOrder.DomainEvents(), "Commit should drain the aggregate's events")

	events := suite.outboxEvents()
	suite.Require().Len(events, 1)
	suite.Equal(string(order.EventNewOrder), events[0].EventType)
	suite.Equal(testOrder.ID().Bytes(), events[0].OrderID)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_MultiRepositoryTransaction() {
	ctx := context.Background()
	testOrder := createTestOrder(suite)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))
	suite.Require().NoError(uow.Commit(ctx))

	actor := order.Actor{Role: order.RoleRestaurant, ID: testOrder.RestaurantID()}
	uow = suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	loaded, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	changed, err := loaded.Transition(order.Accepted, actor, "", now.Add(time.Minute))
	suite.Require().NoError(err)
	suite.Require().NoError(uow.OrderRepository().Update(ctx, loaded))
	suite.Require().NoError(uow.HistoryRepository().Append(ctx, ports.HistoryEntry{
		OrderID: loaded.ID(), From: changed.From, To: changed.To, Actor: actor, At: changed.At,
	}))
	suite.Require().NoError(uow.Commit(ctx))

	newUow := suite.factory.Create()
	stored, err := newUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Accepted, stored.Status())

	history, err := newUow.HistoryRepository().List(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Len(history, 1)

	suite.Len(suite.outboxEvents(), 2)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionRollback() {
	ctx := context.Background()
	testOrder := createTestOrder(suite)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))

	_, err := uow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(uow.Rollback(ctx))

	newUow := suite.factory.Create()
	_, err = newUow.OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().Error(err, "Order should not exist after rollback")
	suite.Empty(suite.outboxEvents(), "Rolled back changes leave no events")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RepositoryIsolation() {
	ctx := context.Background()

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	order1 := createTestOrder(suite)
	order2 := createTestOrder(suite)

	suite.Require().NoError(uow1.Begin(ctx))
	suite.Require().NoError(uow2.Begin(ctx))

	suite.Require().NoError(uow1.OrderRepository().Add(ctx, order1))
	suite.Require().NoError(uow2.OrderRepository().Add(ctx, order2))

	_, err := uow1.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "UOW1 should not see order2")

	_, err = uow2.OrderRepository().Get(ctx, order1.ID())
	suite.Require().Error(err, "UOW2 should not see order1")

	suite.Require().NoError(uow1.Commit(ctx))
	suite.Require().NoError(uow2.Rollback(ctx))

	newUow := suite.factory.Create()
	_, err = newUow.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err, "Order1 should persist after commit")

	_, err = newUow.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "Order2 should not persist after rollback")

	suite.Len(suite.outboxEvents(), 1)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_WithoutTransaction() {
	ctx := context.Background()
	uow := suite.factory.Create()
	testOrder := createTestOrder(suite)

	suite.Require().NoError(uow.OrderRepository().Add(ctx, testOrder))

	retrieved, err := suite.factory.Create().OrderRepository().Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(testOrder.ID(), retrieved.ID())
}

func (suite *UnitOfWorkIntegrationTestSuite) outboxEvents() []outboxrepo.OutboxDTO {
	var events []outboxrepo.OutboxDTO
	suite.Require().NoError(suite.db.Order("occurred_at").Find(&events).Error)
	return events
}

// createTestOrder creates a valid order for testing purposes.
func createTestOrder(suite *UnitOfWorkIntegrationTestSuite) *order.Order {
	item, err := order.NewItem("item-1", "Jollof Rice", 1200, 2)
	suite.Require().NoError(err)

	o, err := order.NewOrder(order.NewOrderParams{
		ID:             kernel.NewUUID(),
		Number:         order.NewNumber(now),
		StudentID:      kernel.NewUUID(),
		RestaurantID:   kernel.NewUUID(),
		RestaurantName: "Mama Put",
		Items:          []order.Item{item},
		Pricing:        order.Pricing{ServiceCharge: 150, DeliveryFee: 350},
		Payment:        order.Payment{Reference: "PSK_" + kernel.NewUUID().String(), Method: "card"},
		Delivery:       order.Delivery{Address: "Hall 3, Room 12", ContactPhone: "+2348000000000"},
		CreatedAt:      now,
	})
	suite.Require().NoError(err)
	return o
}

// TestUnitOfWorkIntegrationSuite runs the complete integration test suite.
func TestUnitOfWorkIntegrationSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
