// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries read the database directly on every call; nothing is cached, so
// results always reflect the latest committed writes.
package queries

import (
	"errors"
	"time"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/pkg/errs"
	"campuseats/internal/pkg/guard"
)

const (
	// DefaultPoolLimit is used when the caller does not ask for a page size.
	DefaultPoolLimit = 50
	// MaxPoolLimit bounds one pool page.
	MaxPoolLimit = 200
)

var (
	ErrListAssignablePoolQueryIsNotConstructed = errors.New(
		"ListAssignablePoolQuery must be created via NewListAssignablePoolQuery constructor",
	)
)

// ListAssignablePoolQuery lists orders riders may pull: Accepted or Ready,
// without a rider, at an approved, active and open restaurant. Oldest first.
//
// Example:
//
//	query, err := NewListAssignablePoolQuery(nil, 20)
//	if err != nil {
//	    return err
//	}
//	pool, err := handler.Handle(ctx, query)
type ListAssignablePoolQuery struct {
	restaurantID *kernel.UUID
	limit        int
	guard        guard.ConstructorGuard
}

// NewListAssignablePoolQuery builds a pool query. restaurantID narrows the pool
// to one restaurant; limit 0 means DefaultPoolLimit.
func NewListAssignablePoolQuery(restaurantID *kernel.UUID, limit int) (ListAssignablePoolQuery, error) {
	if limit == 0 {
		limit = DefaultPoolLimit
	}
	if limit < 1 || limit > MaxPoolLimit {
		return ListAssignablePoolQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxPoolLimit)
	}
	if restaurantID != nil {
		if err := restaurantID.Validate(); err != nil {
			return ListAssignablePoolQuery{}, err
		}
		id := *restaurantID
		restaurantID = &id
	}

	return ListAssignablePoolQuery{
		restaurantID: restaurantID,
		limit:        limit,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q ListAssignablePoolQuery) Validate() error {
	return q.guard.Validate(ErrListAssignablePoolQueryIsNotConstructed)
}

func (q ListAssignablePoolQuery) RestaurantID() *kernel.UUID { return q.restaurantID }
func (q ListAssignablePoolQuery) Limit() int                 { return q.limit }

// PoolOrderResponse is the read model of an order waiting for a rider.
type PoolOrderResponse struct {
	ID              kernel.UUID
	OrderNumber     string
	RestaurantID    kernel.UUID
	RestaurantName  string
	Status          order.Status
	Total           kernel.Money
	DeliveryFee     kernel.Money
	DeliveryAddress string
	CreatedAt       time.Time
}
