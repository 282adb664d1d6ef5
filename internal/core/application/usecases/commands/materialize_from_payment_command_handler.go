package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/domain/model/restaurant"
	"campuseats/internal/core/domain/services"
	"campuseats/internal/core/ports"
	"campuseats/internal/pkg/clock"
	"campuseats/internal/pkg/errs"
	"campuseats/internal/pkg/retry"
)

// ErrPartialMaterialization is the sentinel behind *PartialMaterializationError.
var ErrPartialMaterialization = errors.New("some restaurant orders could not be created")

// SkippedRestaurant is a restaurant whose part of the cart was not ordered.
type SkippedRestaurant struct {
	RestaurantID kernel.UUID
	Name         string
	Reason       string
}

// FailedGroup is a restaurant whose order failed to persist.
type FailedGroup struct {
	RestaurantID kernel.UUID
	Err          error
}

// MaterializationResult lists the orders of a payment. Replayed is true when
// the payment had already been materialized and nothing was created.
type MaterializationResult struct {
	Orders   []*order.Order
	Skipped  []SkippedRestaurant
	Failed   []FailedGroup
	Replayed bool
}

// PartialMaterializationError reports groups that failed after retries. The
// orders that were created stay committed.
type PartialMaterializationError struct {
	Created int
	Skipped int
	Failed  []FailedGroup
}

func (e *PartialMaterializationError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		ids = append(ids, fmt.Sprintf("%s (%v)", f.RestaurantID, f.Err))
	}
	return fmt.Sprintf("%s: created %d, skipped %d, failed: %s",
		ErrPartialMaterialization, e.Created, e.Skipped, strings.Join(ids, "; "))
}

func (e *PartialMaterializationError) Unwrap() error {
	return ErrPartialMaterialization
}

// MaterializeFromPaymentCommandHandler creates orders from a settled payment.
//
// The handler is idempotent: a payment that already produced orders returns
// them unchanged. Concurrent deliveries of the same payment are resolved by the
// store's unique (payment reference, restaurant) constraint; the loser loads
// the winner's order. Each restaurant is its own transaction so one failing
// group never undoes the others.
type MaterializeFromPaymentCommandHandler struct {
	uowFactory SettlementUoWFactory
	planner    services.SettlementPlanner
	clock      clock.Clock
	policy     retry.Policy
	logger     *slog.Logger
}

// NewMaterializeFromPaymentCommandHandler creates a handler for settlements.
func NewMaterializeFromPaymentCommandHandler(
	uowFactory SettlementUoWFactory,
	planner services.SettlementPlanner,
	clk clock.Clock,
	policy retry.Policy,
	logger *slog.Logger,
) MaterializeFromPaymentCommandHandler {
	return MaterializeFromPaymentCommandHandler{
		uowFactory: uowFactory,
		planner:    planner,
		clock:      clk,
		policy:     policy,
		logger:     logger.With("component", "settlement_materializer"),
	}
}

// Handle processes the settlement. On partial failure it returns both the
// result and a *PartialMaterializationError; when every group failed the
// result carries no orders.
func (h MaterializeFromPaymentCommandHandler) Handle(
	ctx context.Context,
	cmd MaterializeFromPaymentCommand,
) (MaterializationResult, error) {
	if err := cmd.Validate(); err != nil {
		return MaterializationResult{}, err
	}

	existing, err := h.uowFactory.Create().OrderRepository().ListByPaymentReference(ctx, cmd.PaymentReference())
	if err != nil {
		return MaterializationResult{}, err
	}
	if len(existing) > 0 {
		h.logger.InfoContext(ctx, "Payment already materialized",
			"payment_reference", cmd.PaymentReference(), "orders", len(existing))
		return MaterializationResult{Orders: existing, Skipped: []SkippedRestaurant{}, Replayed: true}, nil
	}

	groups, err := h.planner.Group(cmd.Cart())
	if err != nil {
		return MaterializationResult{}, err
	}
	h.checkPaidAmount(ctx, cmd)

	result := MaterializationResult{
		Orders:  make([]*order.Order, 0, len(groups)),
		Skipped: make([]SkippedRestaurant, 0),
	}

	for _, group := range groups {
		created, skipped, groupErr := h.materializeGroup(ctx, cmd, group)
		switch {
		case groupErr != nil:
			h.logger.ErrorContext(ctx, "Failed to materialize restaurant order",
				"payment_reference", cmd.PaymentReference(),
				"restaurant_id", group.RestaurantID.String(),
				"error", groupErr)
			result.Failed = append(result.Failed, FailedGroup{RestaurantID: group.RestaurantID, Err: groupErr})
		case skipped != nil:
			h.logger.WarnContext(ctx, "Skipped restaurant during materialization",
				"payment_reference", cmd.PaymentReference(),
				"restaurant_id", skipped.RestaurantID.String(),
				"reason", skipped.Reason)
			result.Skipped = append(result.Skipped, *skipped)
		default:
			result.Orders = append(result.Orders, created)
		}
	}

	if len(result.Failed) == 0 {
		return result, nil
	}

	partial := &PartialMaterializationError{
		Created: len(result.Orders),
		Skipped: len(result.Skipped),
		Failed:  result.Failed,
	}
	if len(result.Failed) == len(groups) {
		return MaterializationResult{Skipped: result.Skipped, Failed: result.Failed}, partial
	}
	return result, partial
}

// materializeGroup creates the order of one restaurant, regenerating the order
// number on collision and retrying transient store errors.
func (h MaterializeFromPaymentCommandHandler) materializeGroup(
	ctx context.Context,
	cmd MaterializeFromPaymentCommand,
	group services.SettlementGroup,
) (*order.Order, *SkippedRestaurant, error) {
	var (
		created *order.Order
		skipped *SkippedRestaurant
	)

	err := retry.Do(ctx, h.policy, isRetryableInsert, func() error {
		o, s, err := h.createOrder(ctx, cmd, group)
		if err != nil {
			return err
		}
		created, skipped = o, s
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return created, skipped, nil
}

func (h MaterializeFromPaymentCommandHandler) createOrder(
	ctx context.Context,
	cmd MaterializeFromPaymentCommand,
	group services.SettlementGroup,
) (*order.Order, *SkippedRestaurant, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	r, err := uow.RestaurantDirectory().Get(ctx, group.RestaurantID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, skip(group, restaurant.ReasonNotFound), nil
	}
	if err != nil {
		return nil, nil, err
	}

	var notAccepting *restaurant.NotAcceptingOrdersError
	if err = r.CanAcceptOrders(); errors.As(err, &notAccepting) {
		s := skip(group, notAccepting.Reason)
		s.Name = r.Name()
		return nil, s, nil
	}
	if err != nil {
		return nil, nil, err
	}

	now := h.clock.Now()
	o, err := order.NewOrder(order.NewOrderParams{
		ID:             kernel.NewUUID(),
		Number:         order.NewNumber(now),
		StudentID:      cmd.StudentID(),
		RestaurantID:   r.ID(),
		RestaurantName: r.Name(),
		Items:          group.Items,
		Pricing:        h.planner.Pricing(),
		Payment:        order.Payment{Reference: cmd.PaymentReference(), Method: cmd.PaymentMethod()},
		Delivery:       cmd.Delivery(),
		CreatedAt:      now,
	})
	if err != nil {
		return nil, nil, err
	}

	err = uow.OrderRepository().Add(ctx, o)
	if errors.Is(err, ports.ErrDuplicateSettlement) {
		_ = uow.Rollback(ctx)
		existing, getErr := h.uowFactory.Create().OrderRepository().
			GetBySettlement(ctx, cmd.PaymentReference(), group.RestaurantID)
		if getErr != nil {
			return nil, nil, getErr
		}
		return existing, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, nil, err
	}

	return o, nil, nil
}

// checkPaidAmount logs a mismatch between the gateway amount and the priced
// cart. The payment already settled, so orders are created regardless.
func (h MaterializeFromPaymentCommandHandler) checkPaidAmount(ctx context.Context, cmd MaterializeFromPaymentCommand) {
	if cmd.PaidAmount() == 0 {
		return
	}
	expected, err := h.planner.QuoteCart(cmd.Cart())
	if err != nil || expected == cmd.PaidAmount() {
		return
	}
	h.logger.WarnContext(ctx, "Paid amount does not match priced cart",
		"payment_reference", cmd.PaymentReference(),
		"paid", cmd.PaidAmount().Int64(),
		"expected", expected.Int64())
}

func skip(group services.SettlementGroup, reason string) *SkippedRestaurant {
	return &SkippedRestaurant{
		RestaurantID: group.RestaurantID,
		Name:         group.RestaurantName,
		Reason:       reason,
	}
}

func isRetryableInsert(err error) bool {
	return errors.Is(err, ports.ErrDuplicateOrderNumber) || errors.Is(err, ports.ErrTransient)
}
