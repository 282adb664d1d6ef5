package commands

import (
	"context"
	"errors"
	"fmt"

	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/ports"
	"campuseats/internal/pkg/clock"
	"campuseats/internal/pkg/retry"
)

// UnassignRiderResult is the order after the request. Released is false when
// the order had no rider.
type UnassignRiderResult struct {
	Order    *order.Order
	Released bool
}

// UnassignRiderCommandHandler returns an order to the pull pool. The rider is
// cleared conditionally on still being the rider that was loaded.
type UnassignRiderCommandHandler struct {
	uowFactory DispatchUoWFactory
	clock      clock.Clock
	policy     retry.Policy
}

// NewUnassignRiderCommandHandler creates a handler for rider release.
func NewUnassignRiderCommandHandler(
	uowFactory DispatchUoWFactory,
	clk clock.Clock,
	policy retry.Policy,
) UnassignRiderCommandHandler {
	return UnassignRiderCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
		policy:     policy,
	}
}

// Handle processes the unassign command. A picked up or finished order yields
// ErrNotEligible.
func (h UnassignRiderCommandHandler) Handle(ctx context.Context, cmd UnassignRiderCommand) (UnassignRiderResult, error) {
	if err := cmd.Validate(); err != nil {
		return UnassignRiderResult{}, err
	}

	var result UnassignRiderResult
	err := retry.Do(ctx, h.policy, isRetryableWrite, func() error {
		r, err := h.unassign(ctx, cmd)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return UnassignRiderResult{}, err
	}

	return result, nil
}

func (h UnassignRiderCommandHandler) unassign(
	ctx context.Context,
	cmd UnassignRiderCommand,
) (UnassignRiderResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return UnassignRiderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return UnassignRiderResult{}, err
	}

	event, err := o.UnassignRider(h.clock.Now())
	if errors.Is(err, order.ErrNotAssignable) {
		return UnassignRiderResult{}, fmt.Errorf("%w: %w", ErrNotEligible, err)
	}
	if err != nil {
		return UnassignRiderResult{}, err
	}
	if event == nil {
		return UnassignRiderResult{Order: o}, nil
	}

	// A conflict means the rider or status changed since the read: reload and
	// decide again.
	if err = orderRepo.UnassignRider(ctx, o, event.PreviousRiderID); err != nil {
		if errors.Is(err, ports.ErrAssignmentConflict) {
			return UnassignRiderResult{}, fmt.Errorf("%w: %w", ports.ErrVersionConflict, err)
		}
		return UnassignRiderResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return UnassignRiderResult{}, err
	}

	return UnassignRiderResult{Order: o, Released: true}, nil
}
