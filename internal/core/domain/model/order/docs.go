// Package order provides the Order aggregate of the campus food delivery core:
// one restaurant-scoped fulfillment unit created from a settled payment and
// driven through preparation, pickup and delivery.
//
// The package includes:
//   - Order: the aggregate root holding the item snapshot, amounts, parties
//     and the assigned rider
//   - Status: the fulfillment state machine
//   - Actor and Role: who requests a change, checked against the order's parties
//   - DomainEvent: NewOrderCreated, StatusChanged, RiderAssigned and
//     RiderUnassigned, recorded on every mutation
//
// Key business rules:
//   - Status moves only to its immediate successor, or to Cancelled from
//     Pending, Accepted or Preparing
//   - Restaurant steps belong to the owning restaurant, pickup and delivery
//     to the assigned rider
//   - Requesting the current status is an idempotent no-op without an event
//   - A rider can be bound only while the order is Accepted, Preparing or Ready
//   - Item prices are frozen at creation and total = subtotal + service
//     charge + delivery fee
package order
