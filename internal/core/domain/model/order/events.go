package order

import (
	"time"

	"campuseats/internal/core/domain/model/kernel"
)

// EventType names a domain event on the wire and in the outbox.
type EventType string

const (
	EventNewOrder        EventType = "NewOrder"
	EventStatusChanged   EventType = "StatusChanged"
	EventRiderAssigned   EventType = "RiderAssigned"
	EventRiderUnassigned EventType = "RiderUnassigned"
)

// DomainEvent is recorded by the Order aggregate on every mutation and
// persisted to the outbox in the same transaction as the order row.
type DomainEvent interface {
	EventID() kernel.UUID
	EventType() EventType
	AggregateID() kernel.UUID
	OccurredAt() time.Time
	Audience() Parties
}

// Parties are the identities an event concerns; the notifier routes on them.
type Parties struct {
	StudentID    kernel.UUID  `json:"studentId"`
	RestaurantID kernel.UUID  `json:"restaurantId"`
	RiderID      *kernel.UUID `json:"riderId,omitempty"`
}

// NewOrderCreated is emitted once when a settlement creates the order.
type NewOrderCreated struct {
	ID          kernel.UUID  `json:"eventId"`
	OrderID     kernel.UUID  `json:"orderId"`
	OrderNumber Number       `json:"orderNumber"`
	Total       kernel.Money `json:"total"`
	At          time.Time    `json:"at"`
	Parties
}

func (e NewOrderCreated) EventID() kernel.UUID     { return e.ID }
func (e NewOrderCreated) EventType() EventType     { return EventNewOrder }
func (e NewOrderCreated) AggregateID() kernel.UUID { return e.OrderID }
func (e NewOrderCreated) OccurredAt() time.Time    { return e.At }
func (e NewOrderCreated) Audience() Parties        { return e.Parties }

// StatusChanged is emitted for every applied transition.
type StatusChanged struct {
	ID      kernel.UUID `json:"eventId"`
	OrderID kernel.UUID `json:"orderId"`
	From    Status      `json:"from"`
	To      Status      `json:"to"`
	Actor   Actor       `json:"actor"`
	Reason  string      `json:"reason,omitempty"`
	At      time.Time   `json:"at"`
	Parties
}

func (e StatusChanged) EventID() kernel.UUID     { return e.ID }
func (e StatusChanged) EventType() EventType     { return EventStatusChanged }
func (e StatusChanged) AggregateID() kernel.UUID { return e.OrderID }
func (e StatusChanged) OccurredAt() time.Time    { return e.At }
func (e StatusChanged) Audience() Parties        { return e.Parties }

// RiderAssigned is emitted when the dispatch coordinator binds a rider.
type RiderAssigned struct {
	ID          kernel.UUID `json:"eventId"`
	OrderID     kernel.UUID `json:"orderId"`
	RiderID     kernel.UUID `json:"assignedRiderId"`
	TriggeredBy Role        `json:"triggeredBy"`
	Status      Status      `json:"status"`
	At          time.Time   `json:"at"`
	Parties
}

func (e RiderAssigned) EventID() kernel.UUID     { return e.ID }
func (e RiderAssigned) EventType() EventType     { return EventRiderAssigned }
func (e RiderAssigned) AggregateID() kernel.UUID { return e.OrderID }
func (e RiderAssigned) OccurredAt() time.Time    { return e.At }
func (e RiderAssigned) Audience() Parties        { return e.Parties }

// RiderUnassigned is emitted when an admin releases the rider; the order
// returns to the pull pool.
type RiderUnassigned struct {
	ID              kernel.UUID `json:"eventId"`
	OrderID         kernel.UUID `json:"orderId"`
	PreviousRiderID kernel.UUID `json:"previousRiderId"`
	Status          Status      `json:"status"`
	At              time.Time   `json:"at"`
	Parties
}

func (e RiderUnassigned) EventID() kernel.UUID     { return e.ID }
func (e RiderUnassigned) EventType() EventType     { return EventRiderUnassigned }
func (e RiderUnassigned) AggregateID() kernel.UUID { return e.OrderID }
func (e RiderUnassigned) OccurredAt() time.Time    { return e.At }
func (e RiderUnassigned) Audience() Parties        { return e.Parties }
