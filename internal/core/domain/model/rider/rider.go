package rider

import (
	"errors"
	"fmt"
	"strings"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/pkg/errs"
	"campuseats/internal/pkg/guard"
)

var (
	// ErrNameIsRequired is returned when a rider has no name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrRiderIsNotConstructed is returned when using an improperly initialized Rider.
	ErrRiderIsNotConstructed = errors.New("Rider must be created via RestoreRider constructor")
	// ErrRiderUnavailable is the sentinel behind *UnavailableError.
	ErrRiderUnavailable = errors.New("rider cannot take a delivery")
)

// UnavailableError explains why a rider cannot take a delivery.
type UnavailableError struct {
	RiderID kernel.UUID
	Reason  string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: rider %s %s", ErrRiderUnavailable, e.RiderID, e.Reason)
}

func (e *UnavailableError) Unwrap() error {
	return ErrRiderUnavailable
}

// Rider is a snapshot of a delivery rider as seen by dispatch.
//
// Example usage:
//
//	r, err := rider.RestoreRider(id, "Tunde", true, true)
//	if err := r.CanTakeDelivery(); err != nil {
//	    // offline or marked busy
//	}
type Rider struct {
	id          kernel.UUID
	name        string
	isOnline    bool
	isAvailable bool
	guard       guard.ConstructorGuard
}

// RestoreRider rebuilds a rider from the directory.
func RestoreRider(id kernel.UUID, name string, isOnline, isAvailable bool) (*Rider, error) {
	r := &Rider{
		isOnline:    isOnline,
		isAvailable: isAvailable,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setID(id),
		r.setName(name),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// Validate ensures the rider was built via RestoreRider.
func (r *Rider) Validate() error {
	if r == nil {
		return ErrRiderIsNotConstructed
	}
	return r.guard.Validate(ErrRiderIsNotConstructed)
}

// IsEqual compares riders by identity.
func (r *Rider) IsEqual(other *Rider) bool {
	return other != nil && r.id.IsEqual(other.id)
}

func (r *Rider) ID() kernel.UUID   { return r.id }
func (r *Rider) Name() string      { return r.name }
func (r *Rider) IsOnline() bool    { return r.isOnline }
func (r *Rider) IsAvailable() bool { return r.isAvailable }

// CanTakeDelivery returns an *UnavailableError unless the rider is online and
// available.
func (r *Rider) CanTakeDelivery() error {
	if err := r.Validate(); err != nil {
		return err
	}
	switch {
	case !r.isOnline:
		return &UnavailableError{RiderID: r.id, Reason: "is offline"}
	case !r.isAvailable:
		return &UnavailableError{RiderID: r.id, Reason: "is not available"}
	}
	return nil
}

func (r *Rider) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Rider) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	r.name = name
	return nil
}
