package commands

import (
	"errors"
	"fmt"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/pkg/guard"
)

var ErrAssignRiderCommandIsNotConstructed = errors.New(
	"AssignRiderCommand must be created via NewAssignRiderCommand constructor",
)

// AssignRiderCommand binds a rider to an order. Admins push any rider; a rider
// pulls an order from the pool for themself only.
//
// Example:
//
//	// admin push
//	cmd, err := NewAssignRiderCommand(orderID, riderID, adminActor)
//	// rider pull
//	cmd, err := NewAssignRiderCommand(orderID, riderActor.ID, riderActor)
type AssignRiderCommand struct {
	orderID kernel.UUID
	riderID kernel.UUID
	actor   order.Actor

	guard guard.ConstructorGuard
}

// NewAssignRiderCommand validates identifiers and the actor's right to assign.
func NewAssignRiderCommand(orderID, riderID kernel.UUID, actor order.Actor) (AssignRiderCommand, error) {
	if err := errors.Join(orderID.Validate(), riderID.Validate()); err != nil {
		return AssignRiderCommand{}, err
	}

	switch actor.Role {
	case order.RoleAdmin:
	case order.RoleRider:
		if !actor.ID.IsEqual(riderID) {
			return AssignRiderCommand{}, fmt.Errorf("%w: riders may only accept orders for themselves", order.ErrNotAuthorized)
		}
	default:
		return AssignRiderCommand{}, fmt.Errorf("%w: %s may not assign riders", order.ErrNotAuthorized, actor.Role)
	}

	return AssignRiderCommand{
		orderID: orderID,
		riderID: riderID,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AssignRiderCommand) Validate() error {
	return c.guard.Validate(ErrAssignRiderCommandIsNotConstructed)
}

func (c AssignRiderCommand) OrderID() kernel.UUID { return c.orderID }
func (c AssignRiderCommand) RiderID() kernel.UUID { return c.riderID }

// TriggeredBy is RoleAdmin for push assignment and RoleRider for pull.
func (c AssignRiderCommand) TriggeredBy() order.Role { return c.actor.Role }
