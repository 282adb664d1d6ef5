package commands

import (
	"errors"
	"strings"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/pkg/errs"
	"campuseats/internal/pkg/guard"
)

// MaxReasonLength bounds the free-text note attached to a transition.
const MaxReasonLength = 500

var ErrTransitionOrderCommandIsNotConstructed = errors.New(
	"TransitionOrderCommand must be created via NewTransitionOrderCommand constructor",
)

// TransitionOrderCommand asks to move an order to a new status on behalf of an actor.
// The raw status is normalized here, at the boundary, so "picked up" and
// "PICKED_UP" are the same request.
//
// Example:
//
//	cmd, err := NewTransitionOrderCommand(orderID, "preparing", actor, "")
//	if err != nil {
//	    return fmt.Errorf("invalid transition: %w", err)
//	}
//	result, err := handler.Handle(ctx, cmd)
type TransitionOrderCommand struct {
	orderID kernel.UUID
	status  order.Status
	actor   order.Actor
	reason  string

	guard guard.ConstructorGuard
}

// NewTransitionOrderCommand validates the order id, the status spelling and the actor.
func NewTransitionOrderCommand(
	orderID kernel.UUID,
	rawStatus string,
	actor order.Actor,
	reason string,
) (TransitionOrderCommand, error) {
	cmd := TransitionOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setStatus(rawStatus),
		cmd.setActor(actor),
		cmd.setReason(reason),
	); err != nil {
		return TransitionOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c TransitionOrderCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderCommandIsNotConstructed)
}

func (c TransitionOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c TransitionOrderCommand) Status() order.Status { return c.status }
func (c TransitionOrderCommand) Actor() order.Actor   { return c.actor }
func (c TransitionOrderCommand) Reason() string       { return c.reason }

func (c *TransitionOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *TransitionOrderCommand) setStatus(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errs.NewValueIsRequiredError("status")
	}
	status, err := order.ParseStatus(raw)
	if err != nil {
		return err
	}
	c.status = status
	return nil
}

func (c *TransitionOrderCommand) setActor(actor order.Actor) error {
	validated, err := order.NewActor(actor.Role, actor.ID)
	if err != nil {
		return err
	}
	c.actor = validated
	return nil
}

func (c *TransitionOrderCommand) setReason(reason string) error {
	reason = strings.TrimSpace(reason)
	if len(reason) > MaxReasonLength {
		return errs.NewValueIsOutOfRangeError("reason length", len(reason), 0, MaxReasonLength)
	}
	c.reason = reason
	return nil
}
