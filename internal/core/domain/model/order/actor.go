package order

import (
	"fmt"
	"strings"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/pkg/errs"
)

// Role is the kind of party acting on an order.
type Role int

const (
	RoleUnknown Role = iota
	RoleStudent
	RoleRestaurant
	RoleRider
	RoleAdmin
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown:    "unknown",
		RoleStudent:    "student",
		RoleRestaurant: "restaurant",
		RoleRider:      "rider",
		RoleAdmin:      "admin",
	}
}

// ParseRole accepts the lower case role names issued in access tokens.
func ParseRole(raw string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for role, name := range getRoleStrings() {
		if role != RoleUnknown && name == normalized {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", raw))
}

func (r Role) String() string {
	if s, ok := getRoleStrings()[r]; ok {
		return s
	}
	return "unknown"
}

// MarshalText encodes the lower case role name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses a role name.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Actor identifies who requests a change. Authentication happens upstream;
// the order only checks that the role and identity fit the change.
type Actor struct {
	Role Role        `json:"role"`
	ID   kernel.UUID `json:"id"`
}

// NewActor validates role and identity.
func NewActor(role Role, id kernel.UUID) (Actor, error) {
	if role == RoleUnknown || role > RoleAdmin {
		return Actor{}, errs.NewValueIsInvalidError("role")
	}
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	return Actor{Role: role, ID: id}, nil
}

// Is reports whether the actor has role r and identity id.
func (a Actor) Is(r Role, id kernel.UUID) bool {
	return a.Role == r && a.ID.IsEqual(id)
}

func (a Actor) String() string {
	return a.Role.String() + ":" + a.ID.String()
}
