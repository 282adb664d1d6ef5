package ports

import "errors"

// Store errors shared by the repository implementations. Adapters wrap the
// driver error so both can be matched with errors.Is.
var (
	// ErrDuplicateSettlement means an order for the same payment reference and
	// restaurant already exists.
	ErrDuplicateSettlement = errors.New("order for this payment and restaurant already exists")

	// ErrDuplicateOrderNumber means the generated order number is taken.
	ErrDuplicateOrderNumber = errors.New("order number is already taken")

	// ErrVersionConflict means the order changed since it was loaded.
	ErrVersionConflict = errors.New("order was modified concurrently")

	// ErrAssignmentConflict means the conditional rider write matched no row:
	// the order got a rider or left the assignable statuses in the meantime.
	ErrAssignmentConflict = errors.New("order no longer accepts this rider change")

	// ErrRiderBusy means the rider already holds another active delivery.
	ErrRiderBusy = errors.New("rider already has an active delivery")

	// ErrTransient marks connection losses, serialization failures and
	// deadlocks that are safe to retry.
	ErrTransient = errors.New("transient store error")
)
