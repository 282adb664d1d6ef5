package services

import (
	"errors"
	"fmt"
	"time"

	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/domain/model/rider"
)

// ErrNotEligible is returned when the order or the rider does not meet the
// preconditions of an assignment. The underlying cause is wrapped alongside.
var ErrNotEligible = errors.New("assignment is not eligible")

// RiderDispatcher binds riders to orders.
//
// Business rules:
//   - the order must be Accepted, Preparing or Ready and have no rider
//   - the rider must be online and available
//   - re-assigning the rider that already holds the order is a no-op
//
// Example usage:
//
//	event, err := services.NewRiderDispatcher().Assign(o, r, order.RoleAdmin, now)
//	switch {
//	case errors.Is(err, order.ErrRiderAlreadyAssigned):
//	    // another rider won
//	case errors.Is(err, services.ErrNotEligible):
//	    // wrong status, or rider offline
//	}
type RiderDispatcher struct{}

// NewRiderDispatcher creates a new RiderDispatcher instance.
func NewRiderDispatcher() RiderDispatcher {
	return RiderDispatcher{}
}

// CheckEligibility reports whether r may be bound to o right now. It returns
// nil when r already holds o.
func (d RiderDispatcher) CheckEligibility(o *order.Order, r *rider.Rider) error {
	if err := errors.Join(o.Validate(), r.Validate()); err != nil {
		return err
	}

	if current := o.Rider(); current != nil {
		if current.IsEqual(r.ID()) {
			return nil
		}
		return &order.RiderAlreadyAssignedError{OrderID: o.ID(), CurrentRiderID: *current}
	}
	if !o.Status().IsAssignable() {
		return fmt.Errorf("%w: %w: order is %s", ErrNotEligible, order.ErrNotAssignable, o.Status())
	}
	if err := r.CanTakeDelivery(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotEligible, err)
	}
	return nil
}

// Assign checks eligibility and binds r to o. The returned event is nil when
// r already held o.
func (d RiderDispatcher) Assign(
	o *order.Order,
	r *rider.Rider,
	triggeredBy order.Role,
	at time.Time,
) (*order.RiderAssigned, error) {
	if err := d.CheckEligibility(o, r); err != nil {
		return nil, err
	}
	return o.AssignRider(r.ID(), triggeredBy, at)
}
