package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Number is the human readable order reference shown to students and
// restaurants, e.g. CF-20261018-9F3A61C2. Uniqueness is enforced by the
// store; callers regenerate on collision.
type Number string

// NewNumber builds a number for the UTC day of at with a random suffix.
func NewNumber(at time.Time) Number {
	id := uuid.New()
	suffix := strings.ToUpper(fmt.Sprintf("%x", id[:4]))
	return Number(fmt.Sprintf("CF-%s-%s", at.UTC().Format("20060102"), suffix))
}

func (n Number) String() string {
	return string(n)
}
