// Package kernel provides the shared value objects of the fulfillment domain.
//
// The package includes:
//   - UUID: identifier value object for every entity
//   - Money: non-negative integer amounts in minor currency units
//
// Both are immutable and safe for concurrent use.
package kernel
