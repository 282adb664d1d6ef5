// Package rider provides the read-only Rider snapshot used by the dispatch
// coordinator. Riders are registered and toggled online by an external
// service; this package only decides whether a rider may take a delivery.
//
// Key business rules:
//   - A rider must have a valid identifier and a non-empty name
//   - A rider takes a delivery only while both online and available
//   - Holding another active delivery is enforced by the order store, not here
package rider
