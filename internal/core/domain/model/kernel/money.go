package kernel

import (
	"fmt"
	"math"

	"campuseats/internal/pkg/errs"
)

// Money is a non-negative amount in minor currency units (kobo, cents).
// Integer arithmetic keeps order totals free of floating point drift.
type Money int64

// Zero is the empty amount.
const Zero Money = 0

// NewMoney validates that amount is not negative.
func NewMoney(amount int64) (Money, error) {
	if amount < 0 {
		return 0, errs.NewValueIsOutOfRangeError("amount", amount, 0, int64(math.MaxInt64))
	}
	return Money(amount), nil
}

// Add returns m+other, failing on overflow.
func (m Money) Add(other Money) (Money, error) {
	if other > 0 && m > math.MaxInt64-other {
		return 0, errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%d + %d overflows", m, other))
	}
	return m + other, nil
}

// Times returns m*quantity, failing on overflow or negative quantity.
func (m Money) Times(quantity int) (Money, error) {
	if quantity < 0 {
		return 0, errs.NewValueIsOutOfRangeError("quantity", quantity, 0, math.MaxInt32)
	}
	if quantity != 0 && m > math.MaxInt64/Money(quantity) {
		return 0, errs.NewValueIsInvalidErrorWithCause("amount", fmt.Errorf("%d x %d overflows", m, quantity))
	}
	return m * Money(quantity), nil
}

// Int64 returns the raw minor-unit amount.
func (m Money) Int64() int64 {
	return int64(m)
}

// Validate rejects negative amounts restored from storage.
func (m Money) Validate() error {
	if m < 0 {
		return errs.NewValueIsOutOfRangeError("amount", int64(m), 0, int64(math.MaxInt64))
	}
	return nil
}
