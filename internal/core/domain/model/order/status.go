package order

import (
	"fmt"
	"strings"

	"campuseats/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──> Accepted ──> Preparing ──> Ready ──> PickedUp ──> Delivered
//	   │           │             │
//	   └───────────┴─────────────┴──────> Cancelled
//
// Pending is the initial state. Delivered and Cancelled are terminal. Once a
// rider has picked the order up it can no longer be cancelled.
type Status int

const (
	// Unknown catches uninitialized Status values.
	Unknown Status = iota

	// Pending orders are paid and waiting for the restaurant to accept.
	Pending

	// Accepted orders were confirmed by the restaurant.
	Accepted

	// Preparing orders are being cooked.
	Preparing

	// Ready orders wait at the restaurant for a rider.
	Ready

	// PickedUp orders are physically with the assigned rider.
	PickedUp

	// Delivered is the successful terminal state.
	Delivered

	// Cancelled is the unsuccessful terminal state.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "UNKNOWN",
		Pending:   "PENDING",
		Accepted:  "ACCEPTED",
		Preparing: "PREPARING",
		Ready:     "READY",
		PickedUp:  "PICKED_UP",
		Delivered: "DELIVERED",
		Cancelled: "CANCELLED",
	}
}

// statusAliases maps normalized input (upper case, separators removed) to a
// status. Legacy clients send "picked up", "ready-for-pickup" or "canceled".
func statusAliases() map[string]Status {
	return map[string]Status{
		"PENDING":        Pending,
		"ACCEPTED":       Accepted,
		"CONFIRMED":      Accepted,
		"PREPARING":      Preparing,
		"READY":          Ready,
		"READYFORPICKUP": Ready,
		"PICKEDUP":       PickedUp,
		"DELIVERED":      Delivered,
		"CANCELLED":      Cancelled,
		"CANCELED":       Cancelled,
	}
}

// happyPath maps each non-terminal state to its immediate successor.
func happyPath() map[Status]Status {
	return map[Status]Status{
		Pending:   Accepted,
		Accepted:  Preparing,
		Preparing: Ready,
		Ready:     PickedUp,
		PickedUp:  Delivered,
	}
}

// ParseStatus normalizes a status received at the boundary. Matching is case
// insensitive and ignores '_', '-' and spaces, so "picked up", "Picked-Up"
// and "PICKED_UP" all parse to PickedUp.
func ParseStatus(raw string) (Status, error) {
	normalized := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ', '\t':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(raw)))

	if s, ok := statusAliases()[normalized]; ok {
		return s, nil
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known status", raw))
}

// MustParseStatus panics when raw is not a status. Only for tests and constants.
func MustParseStatus(raw string) Status {
	s, err := ParseStatus(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Statuses returns every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{Pending, Accepted, Preparing, Ready, PickedUp, Delivered, Cancelled}
}

// Validate rejects Unknown and out-of-range values, e.g. restored from storage.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the canonical upper case wire name.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// MarshalText encodes the canonical wire name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts any spelling ParseStatus accepts.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// IsCancellable reports whether Cancelled is reachable from s.
func (s Status) IsCancellable() bool {
	return s == Pending || s == Accepted || s == Preparing
}

// IsAssignable reports whether a rider may be bound to an order in status s:
// accepted by the restaurant and not yet picked up.
func (s Status) IsAssignable() bool {
	return s == Accepted || s == Preparing || s == Ready
}

// IsPoolVisible reports whether unassigned orders in status s are offered to
// riders in the pull pool.
func (s Status) IsPoolVisible() bool {
	return s == Accepted || s == Ready
}

// Successor returns the next state on the happy path.
func (s Status) Successor() (Status, bool) {
	next, ok := happyPath()[s]
	return next, ok
}

// CanTransitionTo reports whether requested is s's immediate successor or a
// cancellation from a cancellable state.
func (s Status) CanTransitionTo(requested Status) bool {
	if requested == Cancelled {
		return s.IsCancellable()
	}
	next, ok := s.Successor()
	return ok && next == requested
}

// ValidateTransition returns an *InvalidTransitionError when the graph has no
// edge from s to requested.
func (s Status) ValidateTransition(requested Status) error {
	if !s.CanTransitionTo(requested) {
		return &InvalidTransitionError{Current: s, Requested: requested}
	}
	return nil
}
