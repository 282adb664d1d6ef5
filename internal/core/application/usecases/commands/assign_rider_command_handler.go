package commands

import (
	"context"
	"errors"
	"fmt"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/domain/services"
	"campuseats/internal/core/ports"
	"campuseats/internal/pkg/clock"
	"campuseats/internal/pkg/retry"
)

var (
	// ErrAlreadyAssigned is returned when another rider won the order.
	ErrAlreadyAssigned = order.ErrRiderAlreadyAssigned
	// ErrNotEligible is returned when the order status or the rider state
	// does not allow the change.
	ErrNotEligible = services.ErrNotEligible
)

// AssignRiderResult is the order after the request. Assigned is false when
// the rider already held the order.
type AssignRiderResult struct {
	Order    *order.Order
	Assigned bool
}

// AssignRiderCommandHandler coordinates push and pull assignment.
//
// Preconditions are checked against the loaded order, then the rider is
// written with a conditional update that only matches an order without rider
// in an assignable status. Push and pull race on that single write: the first
// one wins, the loser re-reads and gets *order.RiderAlreadyAssignedError. The
// store's one-active-delivery index rejects a rider who is already busy.
//
// Example:
//
//	result, err := handler.Handle(ctx, cmd)
//	var taken *order.RiderAlreadyAssignedError
//	if errors.As(err, &taken) {
//	    // 409 with taken.CurrentRiderID
//	}
type AssignRiderCommandHandler struct {
	uowFactory DispatchUoWFactory
	dispatcher services.RiderDispatcher
	clock      clock.Clock
	policy     retry.Policy
}

// NewAssignRiderCommandHandler creates a handler for rider assignment.
func NewAssignRiderCommandHandler(
	uowFactory DispatchUoWFactory,
	clk clock.Clock,
	policy retry.Policy,
) AssignRiderCommandHandler {
	return AssignRiderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: services.NewRiderDispatcher(),
		clock:      clk,
		policy:     policy,
	}
}

// Handle processes the assignment command. Only transient store errors are
// retried; losing the race is a final answer. With ErrAlreadyAssigned the
// result still carries the order as it is stored.
func (h AssignRiderCommandHandler) Handle(ctx context.Context, cmd AssignRiderCommand) (AssignRiderResult, error) {
	if err := cmd.Validate(); err != nil {
		return AssignRiderResult{}, err
	}

	var result AssignRiderResult
	err := retry.Do(ctx, h.policy, isTransient, func() error {
		r, err := h.assign(ctx, cmd)
		result = r
		return err
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyAssigned) {
			return AssignRiderResult{Order: result.Order}, err
		}
		return AssignRiderResult{}, err
	}

	return result, nil
}

func (h AssignRiderCommandHandler) assign(ctx context.Context, cmd AssignRiderCommand) (AssignRiderResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AssignRiderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return AssignRiderResult{}, err
	}

	r, err := uow.RiderDirectory().Get(ctx, cmd.RiderID())
	if err != nil {
		return AssignRiderResult{}, err
	}

	event, err := h.dispatcher.Assign(o, r, cmd.TriggeredBy(), h.clock.Now())
	if err != nil {
		return AssignRiderResult{Order: o}, err
	}
	if event == nil {
		return AssignRiderResult{Order: o}, nil
	}

	err = orderRepo.AssignRider(ctx, o)
	switch {
	case errors.Is(err, ports.ErrAssignmentConflict):
		return h.resolveLostRace(ctx, orderRepo, cmd.OrderID(), cmd.RiderID())
	case errors.Is(err, ports.ErrRiderBusy):
		return AssignRiderResult{}, fmt.Errorf("%w: %w", ErrNotEligible, err)
	case err != nil:
		return AssignRiderResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return AssignRiderResult{}, err
	}

	return AssignRiderResult{Order: o, Assigned: true}, nil
}

// resolveLostRace re-reads the order after the conditional write matched no
// row and explains why.
func (h AssignRiderCommandHandler) resolveLostRace(
	ctx context.Context,
	orderRepo ports.OrderRepository,
	orderID, riderID kernel.UUID,
) (AssignRiderResult, error) {
	current, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return AssignRiderResult{}, err
	}

	holder := current.Rider()
	switch {
	case holder != nil && holder.IsEqual(riderID):
		return AssignRiderResult{Order: current}, nil
	case holder != nil:
		return AssignRiderResult{Order: current}, &order.RiderAlreadyAssignedError{OrderID: orderID, CurrentRiderID: *holder}
	}
	return AssignRiderResult{}, fmt.Errorf("%w: %w: order is %s", ErrNotEligible, order.ErrNotAssignable, current.Status())
}
