// Package services provides domain services that coordinate business rules
// spanning several aggregates of the campus delivery core.
//
// The package includes:
//   - RiderDispatcher: decides whether a rider may be bound to an order and
//     performs the binding on the aggregate
//   - SettlementPlanner: splits a paid cart into per-restaurant groups and
//     prices them with the platform charges
//
// Domain services hold no state and never touch storage; command handlers load
// the aggregates, call the service and persist the result.
package services
