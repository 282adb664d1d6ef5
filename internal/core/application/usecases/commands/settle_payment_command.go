package commands

import (
	"errors"
	"strings"

	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/pkg/errs"
	"campuseats/internal/pkg/guard"
)

var ErrSettlePaymentCommandIsNotConstructed = errors.New(
	"SettlePaymentCommand must be created via NewSettlePaymentCommand constructor",
)

// SettlePaymentCommand verifies a payment with the gateway and materializes
// its orders. Requester is nil for gateway webhooks; a student verifying from
// the checkout page must be the student the payment belongs to.
type SettlePaymentCommand struct {
	reference string
	requester *order.Actor
	guard     guard.ConstructorGuard
}

// NewSettlePaymentCommand validates the payment reference.
func NewSettlePaymentCommand(reference string, requester *order.Actor) (SettlePaymentCommand, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return SettlePaymentCommand{}, errs.NewValueIsRequiredError("payment reference")
	}

	var actor *order.Actor
	if requester != nil {
		a := *requester
		actor = &a
	}

	return SettlePaymentCommand{
		reference: reference,
		requester: actor,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SettlePaymentCommand) Validate() error {
	return c.guard.Validate(ErrSettlePaymentCommandIsNotConstructed)
}

func (c SettlePaymentCommand) Reference() string { return c.reference }

// Requester returns the acting user, or nil for the gateway.
func (c SettlePaymentCommand) Requester() *order.Actor { return c.requester }
