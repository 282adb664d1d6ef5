// Package ports defines the contracts between the fulfillment core and its
// infrastructure: repositories, read-only directories, the outbox and the
// outbound notification channels.
package ports

import (
	"context"
	"time"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Writes are conditional; none of them overwrites a concurrent change.
type OrderRepository interface {
	// Add inserts a new order. Returns ErrDuplicateSettlement when the
	// (payment reference, restaurant) pair exists and ErrDuplicateOrderNumber
	// when the order number is taken.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update writes status and timestamps when the stored version still equals
	// the version the aggregate was loaded with, otherwise ErrVersionConflict.
	Update(ctx context.Context, aggregate *order.Order) error

	// AssignRider stores the aggregate's rider only if the stored order has no
	// rider and is Accepted, Preparing or Ready. Zero matched rows yield
	// ErrAssignmentConflict; a rider with another active delivery yields
	// ErrRiderBusy.
	AssignRider(ctx context.Context, aggregate *order.Order) error

	// UnassignRider clears the rider only if it is still previousRiderID and
	// the order is still assignable, otherwise ErrAssignmentConflict.
	UnassignRider(ctx context.Context, aggregate *order.Order, previousRiderID kernel.UUID) error

	// Get retrieves an order by identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetBySettlement retrieves the order created for a payment reference and
	// restaurant.
	GetBySettlement(ctx context.Context, paymentReference string, restaurantID kernel.UUID) (*order.Order, error)

	// ListByPaymentReference returns every order created for a payment,
	// oldest first.
	ListByPaymentReference(ctx context.Context, paymentReference string) ([]*order.Order, error)
}

// HistoryEntry is one audited status change.
type HistoryEntry struct {
	OrderID kernel.UUID
	From    order.Status
	To      order.Status
	Actor   order.Actor
	Note    string
	At      time.Time
}

// HistoryRepository stores the append-only status audit trail.
type HistoryRepository interface {
	Append(ctx context.Context, entry HistoryEntry) error
	List(ctx context.Context, orderID kernel.UUID) ([]HistoryEntry, error)
}
