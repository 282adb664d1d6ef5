package commands_test

import (
	"errors"
	"log/slog"
	"testing"

	"campuseats/internal/core/application/usecases/commands"
	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/domain/model/restaurant"
	"campuseats/internal/core/domain/services"
	"campuseats/internal/core/ports"
	"campuseats/internal/pkg/clock"
	"campuseats/internal/pkg/errs"
	"campuseats/internal/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const paymentReference = "PSK_8f2a"

type settlementFixture struct {
	restaurantA kernel.UUID
	restaurantB kernel.UUID
	cmd         commands.MaterializeFromPaymentCommand

	orderRepo *MockOrderRepository
	directory *MockRestaurantDirectory
	uow       *MockUoW
	factory   *MockSettlementUoWFactory
	handler   commands.MaterializeFromPaymentCommandHandler
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()
	f := &settlementFixture{
		restaurantA: kernel.NewUUID(),
		restaurantB: kernel.NewUUID(),
		orderRepo:   new(MockOrderRepository),
		directory:   new(MockRestaurantDirectory),
		uow:         new(MockUoW),
		factory:     new(MockSettlementUoWFactory),
	}

	cmd, err := commands.NewMaterializeFromPaymentCommand(commands.MaterializeParams{
		PaymentReference: paymentReference,
		PaymentMethod:    "card",
		PaidAmount:       4900,
		StudentID:        kernel.NewUUID(),
		Cart: []services.CartLine{
			{RestaurantID: f.restaurantA, RestaurantName: "Mama Put", ItemID: "a-1", Name: "Jollof Rice", Price: 1200, Quantity: 2},
			{RestaurantID: f.restaurantB, RestaurantName: "Suya Spot", ItemID: "b-1", Name: "Suya", Price: 1000, Quantity: 1},
			{RestaurantID: f.restaurantA, RestaurantName: "Mama Put", ItemID: "a-2", Name: "Plantain", Price: 500, Quantity: 1},
		},
		Delivery: order.Delivery{Address: "Hall 3, Room 12", ContactPhone: "+2348000000000"},
	})
	require.NoError(t, err)
	f.cmd = cmd

	planner, err := services.NewSettlementPlanner(order.Pricing{ServiceCharge: 150, DeliveryFee: 350})
	require.NoError(t, err)

	f.handler = commands.NewMaterializeFromPaymentCommandHandler(
		f.factory, planner, clock.NewFixed(now), retry.NoWait(2), slog.New(slog.DiscardHandler),
	)

	f.factory.On("Create").Return(f.uow)
	f.uow.On("OrderRepository").Return(f.orderRepo)
	f.uow.On("RestaurantDirectory").Return(f.directory)
	f.uow.On("Rollback", mock.Anything).Return(nil)
	return f
}

func (f *settlementFixture) noPriorOrders() {
	f.orderRepo.On("ListByPaymentReference", mock.Anything, paymentReference).Return([]*order.Order{}, nil).Once()
}

func (f *settlementFixture) restaurants(t *testing.T, aOpen, bOpen bool) {
	t.Helper()
	f.directory.On("Get", mock.Anything, f.restaurantA).Return(newRestaurant(t, f.restaurantA, "Mama Put", aOpen), nil)
	f.directory.On("Get", mock.Anything, f.restaurantB).Return(newRestaurant(t, f.restaurantB, "Suya Spot", bOpen), nil)
}

func forRestaurant(id kernel.UUID) any {
	return mock.MatchedBy(func(o *order.Order) bool { return o.RestaurantID() == id })
}

func TestMaterializeFromPaymentCommandHandler_Handle_CreatesOneOrderPerRestaurant(t *testing.T) {
	ctx := t.Context()
	f := newSettlementFixture(t)
	f.noPriorOrders()
	f.restaurants(t, true, true)

	f.uow.On("Begin", ctx).Return(nil).Twice()
	f.uow.On("Commit", ctx).Return(nil).Twice()
	f.orderRepo.On("Add", ctx, forRestaurant(f.restaurantA)).Return(nil).Once()
	f.orderRepo.On("Add", ctx, forRestaurant(f.restaurantB)).Return(nil).Once()

	result, err := f.handler.Handle(ctx, f.cmd)

	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Empty(t, result.Skipped)
	require.Len(t, result.Orders, 2)

	first := result.Orders[0]
	assert.Equal(t, f.restaurantA, first.RestaurantID())
	assert.Len(t, first.Items(), 2)
	assert.Equal(t, kernel.Money(2900), first.Subtotal())
	assert.Equal(t, kernel.Money(150), first.ServiceCharge())
	assert.Equal(t, kernel.Money(350), first.DeliveryFee())
	assert.Equal(t, kernel.Money(3400), first.Total())
	assert.Equal(t, order.Pending, first.Status())
	assert.Equal(t, order.PaymentPaid, first.Payment().Status)
	assert.Equal(t, paymentReference, first.Payment().Reference)
	assert.Equal(t, f.cmd.StudentID(), first.StudentID())
	require.Len(t, first.DomainEvents(), 1)
	assert.Equal(t, order.EventNewOrder, first.DomainEvents()[0].EventType())

	second := result.Orders[1]
	assert.Equal(t, f.restaurantB, second.RestaurantID())
	assert.Equal(t, kernel.Money(1500), second.Total())
	assert.NotEqual(t, first.Number(), second.Number())

	f.orderRepo.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func TestMaterializeFromPaymentCommandHandler_Handle_SkipsClosedRestaurant(t *testing.T) {
	ctx := t.Context()
	f := newSettlementFixture(t)
	f.noPriorOrders()
	f.restaurants(t, true, false)

	f.uow.On("Begin", ctx).Return(nil).Twice()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.orderRepo.On("Add", ctx, forRestaurant(f.restaurantA)).Return(nil).Once()

	result, err := f.handler.Handle(ctx, f.cmd)

	require.NoError(t, err)
	require.Len(t, result.Orders, 1)
	assert.Equal(t, f.restaurantA, result.Orders[0].RestaurantID())
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, commands.SkippedRestaurant{
		RestaurantID: f.restaurantB,
		Name:         "Suya Spot",
		Reason:       restaurant.ReasonClosed,
	}, result.Skipped[0])
	f.orderRepo.AssertNotCalled(t, "Add", ctx, forRestaurant(f.restaurantB))
}

func TestMaterializeFromPaymentCommandHandler_Handle_SkipsUnknownRestaurant(t *testing.T) {
	ctx := t.Context()
	f := newSettlementFixture(t)
	f.noPriorOrders()

	f.directory.On("Get", ctx, f.restaurantA).Return(newRestaurant(t, f.restaurantA, "Mama Put", true), nil)
	f.directory.On("Get", ctx, f.restaurantB).Return(nil, errs.NewObjectNotFoundError("restaurant", f.restaurantB))
	f.uow.On("Begin", ctx).Return(nil).Twice()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.orderRepo.On("Add", ctx, forRestaurant(f.restaurantA)).Return(nil).Once()

	result, err := f.handler.Handle(ctx, f.cmd)

	require.NoError(t, err)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, restaurant.ReasonNotFound, result.Skipped[0].Reason)
	assert.Equal(t, "Suya Spot", result.Skipped[0].Name)
}

func TestMaterializeFromPaymentCommandHandler_Handle_ReplayReturnsExistingOrders(t *testing.T) {
	ctx := t.Context()
	f := newSettlementFixture(t)
	existing := []*order.Order{newPendingOrder(t), newPendingOrder(t)}

	f.orderRepo.On("ListByPaymentReference", ctx, paymentReference).Return(existing, nil).Once()

	result, err := f.handler.Handle(ctx, f.cmd)

	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, existing, result.Orders)
	assert.Empty(t, result.Skipped)
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)
	f.orderRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestMaterializeFromPaymentCommandHandler_Handle_ConcurrentDuplicateLoadsWinner(t *testing.T) {
	ctx := t.Context()
	f := newSettlementFixture(t)
	f.noPriorOrders()
	f.restaurants(t, true, true)
	winner := newPendingOrder(t)

	f.uow.On("Begin", ctx).Return(nil).Twice()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.orderRepo.On("Add", ctx, forRestaurant(f.restaurantA)).Return(ports.ErrDuplicateSettlement).Once()
	f.orderRepo.On("GetBySettlement", ctx, paymentReference, f.restaurantA).Return(winner, nil).Once()
	f.orderRepo.On("Add", ctx, forRestaurant(f.restaurantB)).Return(nil).Once()

	result, err := f.handler.Handle(ctx, f.cmd)

	require.NoError(t, err)
	require.Len(t, result.Orders, 2)
	assert.Same(t, winner, result.Orders[0])
	f.uow.AssertNumberOfCalls(t, "Commit", 1)
}

func TestMaterializeFromPaymentCommandHandler_Handle_RegeneratesNumberOnCollision(t *testing.T) {
	ctx := t.Context()
	f := newSettlementFixture(t)
	f.noPriorOrders()
	f.restaurants(t, true, true)

	f.uow.On("Begin", ctx).Return(nil).Times(3)
	f.uow.On("Commit", ctx).Return(nil).Twice()
	f.orderRepo.On("Add", ctx, forRestaurant(f.restaurantA)).Return(ports.ErrDuplicateOrderNumber).Once()
	f.orderRepo.On("Add", ctx, forRestaurant(f.restaurantA)).Return(nil).Once()
	f.orderRepo.On("Add", ctx, forRestaurant(f.restaurantB)).Return(nil).Once()

	result, err := f.handler.Handle(ctx, f.cmd)

	require.NoError(t, err)
	assert.Len(t, result.Orders, 2)
	f.orderRepo.AssertNumberOfCalls(t, "Add", 3)
}

func TestMaterializeFromPaymentCommandHandler_Handle_PartialFailure(t *testing.T) {
	ctx := t.Context()
	f := newSettlementFixture(t)
	f.noPriorOrders()
	f.restaurants(t, true, true)
	storeErr := errors.New("disk full")

	f.uow.On("Begin", ctx).Return(nil).Twice()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.orderRepo.On("Add", ctx, forRestaurant(f.restaurantA)).Return(nil).Once()
	f.orderRepo.On("Add", ctx, forRestaurant(f.restaurantB)).Return(storeErr).Once()

	result, err := f.handler.Handle(ctx, f.cmd)

	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrPartialMaterialization)

	var partial *commands.PartialMaterializationError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, partial.Created)
	require.Len(t, partial.Failed, 1)
	assert.Equal(t, f.restaurantB, partial.Failed[0].RestaurantID)
	assert.ErrorIs(t, partial.Failed[0].Err, storeErr)

	require.Len(t, result.Orders, 1)
	assert.Equal(t, f.restaurantA, result.Orders[0].RestaurantID())
	assert.Len(t, result.Failed, 1)
}

func TestMaterializeFromPaymentCommandHandler_Handle_EveryGroupFailed(t *testing.T) {
	ctx := t.Context()
	f := newSettlementFixture(t)
	f.noPriorOrders()
	f.restaurants(t, true, true)

	f.uow.On("Begin", ctx).Return(nil)
	f.orderRepo.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(ports.ErrTransient)

	result, err := f.handler.Handle(ctx, f.cmd)

	require.ErrorIs(t, err, commands.ErrPartialMaterialization)
	assert.Empty(t, result.Orders)
	assert.Len(t, result.Failed, 2)
	// one attempt plus two retries per restaurant
	f.orderRepo.AssertNumberOfCalls(t, "Add", 6)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestMaterializeFromPaymentCommandHandler_Handle_InvalidCartLine(t *testing.T) {
	ctx := t.Context()
	f := newSettlementFixture(t)
	f.noPriorOrders()

	cmd, err := commands.NewMaterializeFromPaymentCommand(commands.MaterializeParams{
		PaymentReference: paymentReference,
		StudentID:        kernel.NewUUID(),
		Cart: []services.CartLine{
			{RestaurantID: f.restaurantA, ItemID: "a-1", Name: "Jollof Rice", Price: 1200, Quantity: 0},
		},
		Delivery: order.Delivery{Address: "Hall 3", ContactPhone: "+2348000000000"},
	})
	require.NoError(t, err)

	_, err = f.handler.Handle(ctx, cmd)

	require.Error(t, err)
	f.uow.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestMaterializeFromPaymentCommandHandler_Handle_ValidationError(t *testing.T) {
	f := newSettlementFixture(t)

	_, err := f.handler.Handle(t.Context(), commands.MaterializeFromPaymentCommand{})

	require.ErrorIs(t, err, commands.ErrMaterializeFromPaymentCommandIsNotConstructed)
	f.factory.AssertNotCalled(t, "Create")
}
