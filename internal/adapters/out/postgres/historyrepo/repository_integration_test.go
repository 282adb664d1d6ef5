package historyrepo_test

import (
	"context"
	"testing"
	"time"

	"campuseats/internal/adapters/out/postgres/historyrepo"
	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type HistoryRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *historyrepo.GormHistoryRepository
}

func (suite *HistoryRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&historyrepo.HistoryDTO{}))
}

func (suite *HistoryRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE order_status_history").Error)
	suite.repository = historyrepo.NewGormHistoryRepository(suite.db)
}

func (suite *HistoryRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *HistoryRepositoryIntegrationTestSuite) TestAppendAndList() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	restaurant := order.Actor{Role: order.RoleRestaurant, ID: kernel.NewUUID()}
	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	// Appended out of order; List sorts by time.
	suite.Require().NoError(suite.repository.Append(ctx, ports.HistoryEntry{
		OrderID: orderID, From: order.Accepted, To: order.Preparing, Actor: restaurant, At: at.Add(time.Minute),
	}))
	suite.Require().NoError(suite.repository.Append(ctx, ports.HistoryEntry{
		OrderID: orderID, From: order.Pending, To: order.Accepted, Actor: restaurant, Note: "on it", At: at,
	}))
	suite.Require().NoError(suite.repository.Append(ctx, ports.HistoryEntry{
		OrderID: kernel.NewUUID(), From: order.Pending, To: order.Cancelled, Actor: restaurant, At: at,
	}))

	entries, err := suite.repository.List(ctx, orderID)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)

	suite.Equal(order.Pending, entries[0].From)
	suite.Equal(order.Accepted, entries[0].To)
	suite.Equal("on it", entries[0].Note)
	suite.Equal(restaurant, entries[0].Actor)
	suite.Equal(orderID, entries[0].OrderID)
	suite.True(at.Equal(entries[0].At))

	suite.Equal(order.Preparing, entries[1].To)
}

func (suite *HistoryRepositoryIntegrationTestSuite) TestList_Empty() {
	entries, err := suite.repository.List(context.Background(), kernel.NewUUID())

	suite.Require().NoError(err)
	suite.Empty(entries)
}

func (suite *HistoryRepositoryIntegrationTestSuite) TestAppend_RejectsMissingOrder() {
	err := suite.repository.Append(context.Background(), ports.HistoryEntry{
		From: order.Pending, To: order.Accepted,
	})

	suite.Require().Error(err)
	suite.ErrorIs(err, kernel.ErrUUIDIsNotConstructed)
}

func TestHistoryRepositoryIntegrationSuite(t *testing.T) {
	suite.Run(t, new(HistoryRepositoryIntegrationTestSuite))
}
