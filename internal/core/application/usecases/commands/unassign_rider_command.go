package commands

import (
	"errors"
	"fmt"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/pkg/guard"
)

var ErrUnassignRiderCommandIsNotConstructed = errors.New(
	"UnassignRiderCommand must be created via NewUnassignRiderCommand constructor",
)

// UnassignRiderCommand releases the rider of an order before pickup. Admin only.
type UnassignRiderCommand struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

// NewUnassignRiderCommand validates the order id and that actor is an admin.
func NewUnassignRiderCommand(orderID kernel.UUID, actor order.Actor) (UnassignRiderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return UnassignRiderCommand{}, err
	}
	if actor.Role != order.RoleAdmin {
		return UnassignRiderCommand{}, fmt.Errorf("%w: only admins may unassign riders", order.ErrNotAuthorized)
	}

	return UnassignRiderCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c UnassignRiderCommand) Validate() error {
	return c.guard.Validate(ErrUnassignRiderCommandIsNotConstructed)
}

func (c UnassignRiderCommand) OrderID() kernel.UUID { return c.orderID }
