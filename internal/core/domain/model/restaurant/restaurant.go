// Package restaurant provides the read-only Restaurant snapshot consulted when
// a paid cart is split into orders and when riders browse the pickup pool.
// Restaurants are owned by the catalogue service; closing one never cancels
// orders that already exist.
package restaurant

import (
	"errors"
	"fmt"
	"strings"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/pkg/errs"
	"campuseats/internal/pkg/guard"
)

// Reasons a restaurant cannot receive new orders.
const (
	ReasonNotFound    = "restaurant not found"
	ReasonNotApproved = "restaurant is not approved"
	ReasonNotActive   = "restaurant is not active"
	ReasonClosed      = "restaurant is closed"
)

var (
	ErrRestaurantIsNotConstructed = errors.New("Restaurant must be created via RestoreRestaurant constructor")

	// ErrNotAcceptingOrders is the sentinel behind *NotAcceptingOrdersError.
	ErrNotAcceptingOrders = errors.New("restaurant is not accepting orders")
)

// NotAcceptingOrdersError carries the skip reason reported to the student.
type NotAcceptingOrdersError struct {
	RestaurantID kernel.UUID
	Reason       string
}

func (e *NotAcceptingOrdersError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrNotAcceptingOrders, e.RestaurantID, e.Reason)
}

func (e *NotAcceptingOrdersError) Unwrap() error {
	return ErrNotAcceptingOrders
}

// Restaurant is a directory snapshot. DeliveryFee is informational: orders are
// priced with the platform delivery fee.
type Restaurant struct {
	id                    kernel.UUID
	name                  string
	isApproved            bool
	isActive              bool
	isOpen                bool
	deliveryFee           kernel.Money
	estimatedDeliveryTime int
	guard                 guard.ConstructorGuard
}

// Params groups the directory columns of a restaurant.
type Params struct {
	ID                    kernel.UUID
	Name                  string
	IsApproved            bool
	IsActive              bool
	IsOpen                bool
	DeliveryFee           kernel.Money
	EstimatedDeliveryTime int
}

// RestoreRestaurant rebuilds a restaurant from the directory.
func RestoreRestaurant(p Params) (*Restaurant, error) {
	if err := p.ID.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, errs.NewValueIsRequiredError("restaurant name")
	}
	if err := p.DeliveryFee.Validate(); err != nil {
		return nil, err
	}

	return &Restaurant{
		id:                    p.ID,
		name:                  name,
		isApproved:            p.IsApproved,
		isActive:              p.IsActive,
		isOpen:                p.IsOpen,
		deliveryFee:           p.DeliveryFee,
		estimatedDeliveryTime: p.EstimatedDeliveryTime,
		guard:                 guard.NewConstructorGuard(),
	}, nil
}

func (r *Restaurant) Validate() error {
	if r == nil {
		return ErrRestaurantIsNotConstructed
	}
	return r.guard.Validate(ErrRestaurantIsNotConstructed)
}

func (r *Restaurant) ID() kernel.UUID             { return r.id }
func (r *Restaurant) Name() string                { return r.name }
func (r *Restaurant) IsApproved() bool            { return r.isApproved }
func (r *Restaurant) IsActive() bool              { return r.isActive }
func (r *Restaurant) IsOpen() bool                { return r.isOpen }
func (r *Restaurant) DeliveryFee() kernel.Money   { return r.deliveryFee }
func (r *Restaurant) EstimatedDeliveryTime() int  { return r.estimatedDeliveryTime }

// CanAcceptOrders returns a *NotAcceptingOrdersError unless the restaurant is
// approved, active and open. Checks run in that order.
func (r *Restaurant) CanAcceptOrders() error {
	if err := r.Validate(); err != nil {
		return err
	}
	switch {
	case !r.isApproved:
		return &NotAcceptingOrdersError{RestaurantID: r.id, Reason: ReasonNotApproved}
	case !r.isActive:
		return &NotAcceptingOrdersError{RestaurantID: r.id, Reason: ReasonNotActive}
	case !r.isOpen:
		return &NotAcceptingOrdersError{RestaurantID: r.id, Reason: ReasonClosed}
	}
	return nil
}
