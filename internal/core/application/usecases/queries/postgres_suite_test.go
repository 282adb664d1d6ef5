package queries_test

import (
	"context"
	"time"

	postgres_adapter "campuseats/internal/adapters/out/postgres"
	"campuseats/internal/adapters/out/postgres/directoryrepo"
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

// postgresSuite starts one PostgreSQL container per handler suite and seeds
// rows through the real repositories.
type postgresSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	uow       ports.UnitOfWorkFactory
}

func (suite *postgresSuite) SetupSuite() {
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

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.uow = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *postgresSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *postgresSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, order_status_history, outbox_events, restaurants, riders").Error
	suite.Require().NoError(err)
}

func (suite *postgresSuite) seedRestaurant(name string, approved, active, open bool) kernel.UUID {
	id := kernel.NewUUID()
	suite.Require().NoError(suite.db.Create(&directoryrepo.RestaurantDTO{
		ID:                    id.Bytes(),
		Name:                  name,
		IsApproved:            approved,
		IsActive:              active,
		IsOpen:                open,
		EstimatedDeliveryTime: 30,
	}).Error)
	return id
}

func (suite *postgresSuite) seedRider(name string, online, available bool) kernel.UUID {
	id := kernel.NewUUID()
	suite.Require().NoError(suite.db.Create(&directoryrepo.RiderDTO{
		ID:          id.Bytes(),
		Name:        name,
		IsOnline:    online,
		IsAvailable: available,
	}).Error)
	return id
}

// seedOrder stores an order of restaurantID in status with an optional rider.
func (suite *postgresSuite) seedOrder(
	restaurantID kernel.UUID,
	status order.Status,
	riderID *kernel.UUID,
	createdAt time.Time,
) order.Snapshot {
	item, err := order.NewItem("item-1", "Jollof Rice", 1200, 2)
	suite.Require().NoError(err)

	created, err := order.NewOrder(order.NewOrderParams{
		ID:             kernel.NewUUID(),
		Number:         order.NewNumber(createdAt),
		StudentID:      kernel.NewUUID(),
		RestaurantID:   restaurantID,
		RestaurantName: "Mama Put",
		Items:          []order.Item{item},
		Pricing:        order.Pricing{ServiceCharge: 150, DeliveryFee: 350},
		Payment:        order.Payment{Reference: "PSK_" + kernel.NewUUID().String(), Method: "card"},
		Delivery:       order.Delivery{Address: "Hall 3, Room 12", ContactPhone: "+2348000000000"},
		CreatedAt:      createdAt,
	})
	suite.Require().NoError(err)

	snapshot := created.Snapshot()
	snapshot.Status = status
	snapshot.RiderID = riderID
	restored, err := order.RestoreOrder(snapshot)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.uow.Create().OrderRepository().Add(context.Background(), restored))
	return restored.Snapshot()
}
