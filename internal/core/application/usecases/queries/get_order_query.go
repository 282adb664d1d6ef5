package queries

import (
	"errors"
	"time"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/pkg/guard"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)
	ErrGetOrderHistoryQueryIsNotConstructed = errors.New(
		"GetOrderHistoryQuery must be created via NewGetOrderHistoryQuery constructor",
	)
)

// GetOrderQuery reads one order on behalf of actor. It backs the polling
// fallback of the event stream, so it always reads the stored row.
type GetOrderQuery struct {
	orderID kernel.UUID
	actor   order.Actor
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID, actor order.Actor) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	if _, err := order.NewActor(actor.Role, actor.ID); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID { return q.orderID }
func (q GetOrderQuery) Actor() order.Actor   { return q.actor }

// GetOrderHistoryQuery reads the status audit trail of one order. Access
// follows GetOrderQuery.
type GetOrderHistoryQuery struct {
	orderID kernel.UUID
	actor   order.Actor
	guard   guard.ConstructorGuard
}

func NewGetOrderHistoryQuery(orderID kernel.UUID, actor order.Actor) (GetOrderHistoryQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderHistoryQuery{}, err
	}
	if _, err := order.NewActor(actor.Role, actor.ID); err != nil {
		return GetOrderHistoryQuery{}, err
	}
	return GetOrderHistoryQuery{orderID: orderID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderHistoryQueryIsNotConstructed)
}

func (q GetOrderHistoryQuery) OrderID() kernel.UUID { return q.orderID }
func (q GetOrderHistoryQuery) Actor() order.Actor   { return q.actor }

// HistoryEntryResponse is one audited status change.
type HistoryEntryResponse struct {
	From      order.Status
	To        order.Status
	ActorRole order.Role
	ActorID   kernel.UUID
	Note      string
	At        time.Time
}
