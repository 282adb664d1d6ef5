package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"campuseats/internal/core/application/usecases/commands"
	"campuseats/internal/core/application/usecases/queries"
	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testSecret        = []byte("test-jwt-secret")
	testWebhookSecret = []byte("test-webhook-secret")
	now               = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
)

type MockMaterializer struct{ mock.Mock }

func (m *MockMaterializer) Handle(ctx context.Context, cmd commands.MaterializeFromPaymentCommand) (commands.MaterializationResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.MaterializationResult), args.Error(1)
}

type MockSettler struct{ mock.Mock }

func (m *MockSettler) Handle(ctx context.Context, cmd commands.SettlePaymentCommand) (commands.MaterializationResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.MaterializationResult), args.Error(1)
}

type MockTransitioner struct{ mock.Mock }

func (m *MockTransitioner) Handle(ctx context.Context, cmd commands.TransitionOrderCommand) (commands.TransitionOrderResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.TransitionOrderResult), args.Error(1)
}

type MockAssigner struct{ mock.Mock }

func (m *MockAssigner) Handle(ctx context.Context, cmd commands.AssignRiderCommand) (commands.AssignRiderResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.AssignRiderResult), args.Error(1)
}

type MockUnassigner struct{ mock.Mock }

func (m *MockUnassigner) Handle(ctx context.Context, cmd commands.UnassignRiderCommand) (commands.UnassignRiderResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.UnassignRiderResult), args.Error(1)
}

type MockPool struct{ mock.Mock }

func (m *MockPool) Handle(ctx context.Context, query queries.ListAssignablePoolQuery) ([]queries.PoolOrderResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.PoolOrderResponse), args.Error(1)
}

type MockRiders struct{ mock.Mock }

func (m *MockRiders) Handle(ctx context.Context, query queries.ListAvailableRidersQuery) ([]queries.AvailableRiderResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.AvailableRiderResponse), args.Error(1)
}

type MockOrderReader struct{ mock.Mock }

func (m *MockOrderReader) Handle(ctx context.Context, query queries.GetOrderQuery) (order.Snapshot, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(order.Snapshot), args.Error(1)
}

func (m *MockOrderReader) HandleHistory(ctx context.Context, query queries.GetOrderHistoryQuery) ([]queries.HistoryEntryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.HistoryEntryResponse), args.Error(1)
}

// fakeSubscriber records the requested channels and hands out a prepared
// subscription.
type fakeSubscriber struct {
	channels []string
	messages chan []byte
	err      error
	closed   bool
}

func (f *fakeSubscriber) Subscribe(_ context.Context, channels ...string) (ports.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.channels = channels
	return f, nil
}

func (f *fakeSubscriber) Messages() <-chan []byte { return f.messages }

func (f *fakeSubscriber) Close() error {
	f.closed = true
	return nil
}

type testEnv struct {
	echo         *echo.Echo
	server       *Server
	materializer *MockMaterializer
	settler      *MockSettler
	transitioner *MockTransitioner
	assigner     *MockAssigner
	unassigner   *MockUnassigner
	pool         *MockPool
	riders       *MockRiders
	orders       *MockOrderReader
	subscriber   *fakeSubscriber
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		echo:         echo.New(),
		materializer: new(MockMaterializer),
		settler:      new(MockSettler),
		transitioner: new(MockTransitioner),
		assigner:     new(MockAssigner),
		unassigner:   new(MockUnassigner),
		pool:         new(MockPool),
		riders:       new(MockRiders),
		orders:       new(MockOrderReader),
		subscriber:   &fakeSubscriber{messages: make(chan []byte, 4)},
	}

	server := NewServer(Handlers{
		Materialize: env.materializer,
		Settle:      env.settler,
		Transition:  env.transitioner,
		Assign:      env.assigner,
		Unassign:    env.unassigner,
		Pool:        env.pool,
		Riders:      env.riders,
		Orders:      env.orders,
	}, env.subscriber, Options{
		JWTSecret:     testSecret,
		WebhookSecret: testWebhookSecret,
		PingInterval:  time.Hour,
	}, slog.New(slog.DiscardHandler))
	require.NoError(t, server.Register(env.echo))
	env.server = server

	t.Cleanup(func() {
		env.materializer.AssertExpectations(t)
		env.settler.AssertExpectations(t)
		env.transitioner.AssertExpectations(t)
		env.assigner.AssertExpectations(t)
		env.unassigner.AssertExpectations(t)
		env.pool.AssertExpectations(t)
		env.riders.AssertExpectations(t)
		env.orders.AssertExpectations(t)
	})

	return env
}

func (env *testEnv) do(t *testing.T, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func signToken(t *testing.T, secret []byte, role string, id kernel.UUID) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ActorClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func tokenFor(t *testing.T, actor order.Actor) string {
	t.Helper()
	return signToken(t, testSecret, actor.Role.String(), actor.ID)
}

func newActor(role order.Role) order.Actor {
	return order.Actor{Role: role, ID: kernel.NewUUID()}
}

func newTestOrder(t *testing.T) *order.Order {
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
		Payment:        order.Payment{Reference: "PAY-123", Status: order.PaymentPaid, Method: "card"},
		Delivery:       order.Delivery{Address: "Hall 3, Room 12", ContactPhone: "+2348000000000"},
		CreatedAt:      now,
	})
	require.NoError(t, err)
	o.PullDomainEvents()
	o.MarkPersisted()
	return o
}

func acceptedOrder(t *testing.T) *order.Order {
	t.Helper()

	o := newTestOrder(t)
	_, err := o.Transition(order.Accepted, order.Actor{Role: order.RoleRestaurant, ID: o.RestaurantID()}, "", now)
	require.NoError(t, err)
	o.PullDomainEvents()
	o.MarkPersisted()
	return o
}

func httptestRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func (env *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}
