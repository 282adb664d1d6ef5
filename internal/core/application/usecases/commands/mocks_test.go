package commands_test

import (
	"context"
	"testing"
	"time"

	"campuseats/internal/core/application/usecases/commands"
	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/domain/model/restaurant"
	"campuseats/internal/core/domain/model/rider"
	"campuseats/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) AssignRider(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) UnassignRider(ctx context.Context, o *order.Order, previousRiderID kernel.UUID) error {
	args := m.Called(ctx, o, previousRiderID)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetBySettlement(
	ctx context.Context,
	paymentReference string,
	restaurantID kernel.UUID,
) (*order.Order, error) {
	args := m.Called(ctx, paymentReference, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByPaymentReference(ctx context.Context, paymentReference string) ([]*order.Order, error) {
	args := m.Called(ctx, paymentReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockHistoryRepository struct{ mock.Mock }

func (m *MockHistoryRepository) Append(ctx context.Context, entry ports.HistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) List(ctx context.Context, orderID kernel.UUID) ([]ports.HistoryEntry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.HistoryEntry), args.Error(1)
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Append(ctx context.Context, events ...order.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockOutboxRepository) FetchUnprocessed(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) MarkProcessed(ctx context.Context, id kernel.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id kernel.UUID, cause error) error {
	args := m.Called(ctx, id, cause)
	return args.Error(0)
}

type MockRestaurantDirectory struct{ mock.Mock }

func (m *MockRestaurantDirectory) Get(ctx context.Context, id kernel.UUID) (*restaurant.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*restaurant.Restaurant), args.Error(1)
}

type MockRiderDirectory struct{ mock.Mock }

func (m *MockRiderDirectory) Get(ctx context.Context, id kernel.UUID) (*rider.Rider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rider.Rider), args.Error(1)
}

// MockUoW satisfies every unit of work the handlers depend on.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) HistoryRepository() ports.HistoryRepository {
	args := m.Called()
	return args.Get(0).(ports.HistoryRepository)
}

func (m *MockUoW) OutboxRepository() ports.OutboxRepository {
	args := m.Called()
	return args.Get(0).(ports.OutboxRepository)
}

func (m *MockUoW) RestaurantDirectory() ports.RestaurantDirectory {
	args := m.Called()
	return args.Get(0).(ports.RestaurantDirectory)
}

func (m *MockUoW) RiderDirectory() ports.RiderDirectory {
	args := m.Called()
	return args.Get(0).(ports.RiderDirectory)
}

type MockTransitionUoWFactory struct{ mock.Mock }

func (m *MockTransitionUoWFactory) Create() commands.TransitionUoW {
	args := m.Called()
	return args.Get(0).(commands.TransitionUoW)
}

type MockDispatchUoWFactory struct{ mock.Mock }

func (m *MockDispatchUoWFactory) Create() commands.DispatchUoW {
	args := m.Called()
	return args.Get(0).(commands.DispatchUoW)
}

type MockSettlementUoWFactory struct{ mock.Mock }

func (m *MockSettlementUoWFactory) Create() commands.SettlementUoW {
	args := m.Called()
	return args.Get(0).(commands.SettlementUoW)
}

type MockOutboxUoWFactory struct{ mock.Mock }

func (m *MockOutboxUoWFactory) Create() commands.OutboxUoW {
	args := m.Called()
	return args.Get(0).(commands.OutboxUoW)
}

type MockNotificationSink struct{ mock.Mock }

func (m *MockNotificationSink) Publish(ctx context.Context, n ports.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationSink) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockRealtimePublisher struct{ mock.Mock }

func (m *MockRealtimePublisher) Publish(ctx context.Context, channels []string, n ports.Notification) error {
	args := m.Called(ctx, channels, n)
	return args.Error(0)
}

type MockPaymentVerifier struct{ mock.Mock }

func (m *MockPaymentVerifier) Verify(ctx context.Context, reference string) (ports.PaymentVerification, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(ports.PaymentVerification), args.Error(1)
}

type MockMaterializer struct{ mock.Mock }

func (m *MockMaterializer) Handle(
	ctx context.Context,
	cmd commands.MaterializeFromPaymentCommand,
) (commands.MaterializationResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.MaterializationResult), args.Error(1)
}

// newPendingOrder builds a persisted order without pending events.
func newPendingOrder(t *testing.T) *order.Order {
	t.Helper()

	item, err := order.NewItem("item-1", "Jollof Rice", 1200, 2)
	require.NoError(t, err)

	o, err := order.NewOrder(order.NewOrderParams{
		ID:             kernel.NewUUID(),
		Number:         order.NewNumber(now),
		StudentID:      kernel.NewUUID(),
		RestaurantID:   kernel.NewUUID(),
		RestaurantName: "Mama Put",
		Items:          []order.Item{item},
		Pricing:        order.Pricing{ServiceCharge: 150, DeliveryFee: 350},
		Payment:        order.Payment{Reference: "PAY-123", Method: "card"},
		Delivery:       order.Delivery{Address: "Hall 3, Room 12", ContactPhone: "+2348000000000"},
		CreatedAt:      now,
	})
	require.NoError(t, err)
	o.PullDomainEvents()
	o.MarkPersisted()
	return o
}

// newOrderIn builds a persisted order in status s. riderID is bound when the
// path passes pickup.
func newOrderIn(t *testing.T, s order.Status, riderID *kernel.UUID) *order.Order {
	t.Helper()
	o := newPendingOrder(t)
	restaurantActor := order.Actor{Role: order.RoleRestaurant, ID: o.RestaurantID()}

	at := now
	for o.Status() != s {
		at = at.Add(time.Minute)
		if s == order.Cancelled {
			_, err := o.Transition(order.Cancelled, restaurantActor, "closed", at)
			require.NoError(t, err)
			break
		}

		next, ok := o.Status().Successor()
		require.True(t, ok)

		actor := restaurantActor
		if next == order.PickedUp || next == order.Delivered {
			require.NotNil(t, riderID)
			if o.Rider() == nil {
				_, err := o.AssignRider(*riderID, order.RoleAdmin, at)
				require.NoError(t, err)
			}
			actor = order.Actor{Role: order.RoleRider, ID: *riderID}
		}
		_, err := o.Transition(next, actor, "", at)
		require.NoError(t, err)
	}

	if riderID != nil && o.Rider() == nil && o.Status().IsAssignable() {
		_, err := o.AssignRider(*riderID, order.RoleAdmin, at)
		require.NoError(t, err)
	}

	o.PullDomainEvents()
	o.MarkPersisted()
	return o
}

func newRider(t *testing.T, online, available bool) *rider.Rider {
	t.Helper()
	r, err := rider.RestoreRider(kernel.NewUUID(), "Tunde", online, available)
	require.NoError(t, err)
	return r
}

func newRestaurant(t *testing.T, id kernel.UUID, name string, open bool) *restaurant.Restaurant {
	t.Helper()
	r, err := restaurant.RestoreRestaurant(restaurant.Params{
		ID:                    id,
		Name:                  name,
		IsApproved:            true,
		IsActive:              true,
		IsOpen:                open,
		DeliveryFee:           500,
		EstimatedDeliveryTime: 30,
	})
	require.NoError(t, err)
	return r
}

func adminActor() order.Actor {
	return order.Actor{Role: order.RoleAdmin, ID: kernel.NewUUID()}
}
