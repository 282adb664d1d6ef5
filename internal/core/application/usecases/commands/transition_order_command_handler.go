package commands

import (
	"context"
	"errors"

	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/ports"
	"campuseats/internal/pkg/clock"
	"campuseats/internal/pkg/retry"
)

// TransitionOrderResult is the order after the request. Changed is false for
// an idempotent retry of the current status.
type TransitionOrderResult struct {
	Order   *order.Order
	Changed bool
}

// TransitionOrderCommandHandler loads the order, applies the transition and
// writes it back conditionally on the loaded version. A concurrent change
// makes the whole load-apply-write cycle run again with backoff, so the
// transition is re-evaluated against the newer state.
//
// Example:
//
//	handler := NewTransitionOrderCommandHandler(uowFactory, clock.NewSystem(), retry.DefaultPolicy())
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, order.ErrInvalidTransition):
//	    // 422
//	case errors.Is(err, order.ErrNotAuthorized):
//	    // 403
//	}
type TransitionOrderCommandHandler struct {
	uowFactory TransitionUoWFactory
	clock      clock.Clock
	policy     retry.Policy
}

// NewTransitionOrderCommandHandler creates a handler for status transitions.
func NewTransitionOrderCommandHandler(
	uowFactory TransitionUoWFactory,
	clk clock.Clock,
	policy retry.Policy,
) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clk,
		policy:     policy,
	}
}

// Handle processes the transition command.
func (h TransitionOrderCommandHandler) Handle(
	ctx context.Context,
	cmd TransitionOrderCommand,
) (TransitionOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionOrderResult{}, err
	}

	var result TransitionOrderResult
	err := retry.Do(ctx, h.policy, isRetryableWrite, func() error {
		r, err := h.apply(ctx, cmd)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return TransitionOrderResult{}, err
	}

	return result, nil
}

func (h TransitionOrderCommandHandler) apply(
	ctx context.Context,
	cmd TransitionOrderCommand,
) (TransitionOrderResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TransitionOrderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return TransitionOrderResult{}, err
	}

	event, err := o.Transition(cmd.Status(), cmd.Actor(), cmd.Reason(), h.clock.Now())
	if err != nil {
		return TransitionOrderResult{}, err
	}
	if event == nil {
		return TransitionOrderResult{Order: o}, nil
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return TransitionOrderResult{}, err
	}

	if err = uow.HistoryRepository().Append(ctx, ports.HistoryEntry{
		OrderID: o.ID(),
		From:    event.From,
		To:      event.To,
		Actor:   event.Actor,
		Note:    event.Reason,
		At:      event.At,
	}); err != nil {
		return TransitionOrderResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return TransitionOrderResult{}, err
	}

	return TransitionOrderResult{Order: o, Changed: true}, nil
}

func isRetryableWrite(err error) bool {
	return errors.Is(err, ports.ErrVersionConflict) || errors.Is(err, ports.ErrTransient)
}

func isTransient(err error) bool {
	return errors.Is(err, ports.ErrTransient)
}
