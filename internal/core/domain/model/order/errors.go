package order

import (
	"errors"
	"fmt"

	"campuseats/internal/core/domain/model/kernel"
)

var (
	// ErrOrderIsNotConstructed is returned for orders not built by NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrInvalidTransition is the sentinel behind *InvalidTransitionError.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotAuthorized is the sentinel behind *NotAuthorizedError.
	ErrNotAuthorized = errors.New("actor is not authorized")

	// ErrRiderAlreadyAssigned is the sentinel behind *RiderAlreadyAssignedError.
	ErrRiderAlreadyAssigned = errors.New("order already has a rider")

	// ErrNotAssignable is returned when the order status does not allow
	// binding or releasing a rider.
	ErrNotAssignable = errors.New("order is not assignable")
)

// InvalidTransitionError carries the statuses of a rejected transition.
type InvalidTransitionError struct {
	Current   Status
	Requested Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.Current, e.Requested)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NotAuthorizedError reports an actor requesting a transition its role may not make.
type NotAuthorizedError struct {
	Actor     Actor
	Requested Status
	Reason    string
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("%s: %s may not move order to %s: %s", ErrNotAuthorized, e.Actor.Role, e.Requested, e.Reason)
}

func (e *NotAuthorizedError) Unwrap() error {
	return ErrNotAuthorized
}

// RiderAlreadyAssignedError reports the rider that won the assignment.
type RiderAlreadyAssignedError struct {
	OrderID        kernel.UUID
	CurrentRiderID kernel.UUID
}

func (e *RiderAlreadyAssignedError) Error() string {
	return fmt.Sprintf("%s: order %s is held by rider %s", ErrRiderAlreadyAssigned, e.OrderID, e.CurrentRiderID)
}

func (e *RiderAlreadyAssignedError) Unwrap() error {
	return ErrRiderAlreadyAssigned
}
