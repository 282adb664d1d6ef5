package cmd

import (
	"log/slog"

	"campuseats/internal/adapters/out/postgres"
	"campuseats/internal/core/application/usecases/commands"
	"campuseats/internal/core/application/usecases/queries"
	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/domain/services"
	"campuseats/internal/core/ports"
	"campuseats/internal/pkg/clock"
	"campuseats/internal/pkg/retry"

	"gorm.io/gorm"
)

// CompositionRoot builds the use case handlers from the store handle and the
// outbound adapters created in main.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	planner    services.SettlementPlanner
	verifier   ports.PaymentVerifier
	sink       ports.NotificationSink
	realtime   ports.RealtimePublisher
	clock      clock.Clock
	policy     retry.Policy
	logger     *slog.Logger
}

func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	verifier ports.PaymentVerifier,
	sink ports.NotificationSink,
	realtime ports.RealtimePublisher,
	logger *slog.Logger,
) (CompositionRoot, error) {
	planner, err := services.NewSettlementPlanner(order.Pricing{
		ServiceCharge: kernel.Money(config.ServiceCharge),
		DeliveryFee:   kernel.Money(config.DeliveryFee),
	})
	if err != nil {
		return CompositionRoot{}, err
	}

	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		planner:    planner,
		verifier:   verifier,
		sink:       sink,
		realtime:   realtime,
		clock:      clock.NewSystem(),
		policy:     retry.DefaultPolicy(),
		logger:     logger,
	}, nil
}

func (c *CompositionRoot) CreateMaterializeFromPaymentCommandHandler() commands.MaterializeFromPaymentCommandHandler {
	var f commands.SettlementUoWFactory = FuncSettlementUoWFactory(func() commands.SettlementUoW {
		return c.uowFactory.CreateGorm()
	})
	return commands.NewMaterializeFromPaymentCommandHandler(f, c.planner, c.clock, c.policy, c.logger)
}

func (c *CompositionRoot) CreateSettlePaymentCommandHandler() commands.SettlePaymentCommandHandler {
	return commands.NewSettlePaymentCommandHandler(c.verifier, c.CreateMaterializeFromPaymentCommandHandler())
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	var f commands.TransitionUoWFactory = FuncTransitionUoWFactory(func() commands.TransitionUoW {
		return c.uowFactory.CreateGorm()
	})
	return commands.NewTransitionOrderCommandHandler(f, c.clock, c.policy)
}

func (c *CompositionRoot) CreateAssignRiderCommandHandler() commands.AssignRiderCommandHandler {
	return commands.NewAssignRiderCommandHandler(c.dispatchUoWFactory(), c.clock, c.policy)
}

func (c *CompositionRoot) CreateUnassignRiderCommandHandler() commands.UnassignRiderCommandHandler {
	return commands.NewUnassignRiderCommandHandler(c.dispatchUoWFactory(), c.clock, c.policy)
}

func (c *CompositionRoot) CreatePublishOutboxEventsCommandHandler() commands.PublishOutboxEventsCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.CreateGorm()
	})
	return commands.NewPublishOutboxEventsCommandHandler(f, c.sink, c.realtime, c.clock, c.logger)
}

func (c *CompositionRoot) CreateListAssignablePoolQueryHandler() queries.ListAssignablePoolQueryHandler {
	return queries.NewListAssignablePoolQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListAvailableRidersQueryHandler() queries.ListAvailableRidersQueryHandler {
	return queries.NewListAvailableRidersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) dispatchUoWFactory() commands.DispatchUoWFactory {
	return FuncDispatchUoWFactory(func() commands.DispatchUoW {
		return c.uowFactory.CreateGorm()
	})
}

type FuncSettlementUoWFactory func() commands.SettlementUoW

func (f FuncSettlementUoWFactory) Create() commands.SettlementUoW {
	return f()
}

type FuncTransitionUoWFactory func() commands.TransitionUoW

func (f FuncTransitionUoWFactory) Create() commands.TransitionUoW {
	return f()
}

type FuncDispatchUoWFactory func() commands.DispatchUoW

func (f FuncDispatchUoWFactory) Create() commands.DispatchUoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}
