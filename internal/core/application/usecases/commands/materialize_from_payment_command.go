package commands

import (
	"errors"
	"strings"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/domain/services"
	"campuseats/internal/pkg/errs"
	"campuseats/internal/pkg/guard"
)

var ErrMaterializeFromPaymentCommandIsNotConstructed = errors.New(
	"MaterializeFromPaymentCommand must be created via NewMaterializeFromPaymentCommand constructor",
)

// MaterializeParams groups the inputs of a settled checkout.
type MaterializeParams struct {
	PaymentReference string
	PaymentMethod    string
	// PaidAmount is what the gateway charged; zero when unknown.
	PaidAmount kernel.Money
	StudentID  kernel.UUID
	Cart       []services.CartLine
	Delivery   order.Delivery
}

// MaterializeFromPaymentCommand turns a successful payment into one order per
// restaurant in the cart.
//
// Example:
//
//	cmd, err := NewMaterializeFromPaymentCommand(MaterializeParams{
//	    PaymentReference: "PSK_8f2a",
//	    StudentID:        studentID,
//	    Cart:             lines,
//	    Delivery:         order.Delivery{Address: "Hall 3", ContactPhone: "+234..."},
//	})
type MaterializeFromPaymentCommand struct {
	params MaterializeParams
	guard  guard.ConstructorGuard
}

// NewMaterializeFromPaymentCommand validates the payment reference, student,
// cart presence and delivery details. Line-level validation happens when the
// cart is grouped.
func NewMaterializeFromPaymentCommand(p MaterializeParams) (MaterializeFromPaymentCommand, error) {
	p.PaymentReference = strings.TrimSpace(p.PaymentReference)
	p.PaymentMethod = strings.TrimSpace(p.PaymentMethod)
	p.Delivery.Address = strings.TrimSpace(p.Delivery.Address)
	p.Delivery.ContactPhone = strings.TrimSpace(p.Delivery.ContactPhone)
	p.Delivery.Instructions = strings.TrimSpace(p.Delivery.Instructions)

	var err error
	if p.PaymentReference == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("payment reference"))
	}
	if idErr := p.StudentID.Validate(); idErr != nil {
		err = errors.Join(err, idErr)
	}
	if len(p.Cart) == 0 {
		err = errors.Join(err, errs.NewValueIsRequiredError("cart"))
	}
	if p.Delivery.Address == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("delivery address"))
	}
	if p.Delivery.ContactPhone == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("contact phone"))
	}
	if amountErr := p.PaidAmount.Validate(); amountErr != nil {
		err = errors.Join(err, amountErr)
	}
	if err != nil {
		return MaterializeFromPaymentCommand{}, err
	}

	p.Cart = append([]services.CartLine(nil), p.Cart...)
	return MaterializeFromPaymentCommand{
		params: p,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c MaterializeFromPaymentCommand) Validate() error {
	return c.guard.Validate(ErrMaterializeFromPaymentCommandIsNotConstructed)
}

func (c MaterializeFromPaymentCommand) PaymentReference() string { return c.params.PaymentReference }
func (c MaterializeFromPaymentCommand) PaymentMethod() string    { return c.params.PaymentMethod }
func (c MaterializeFromPaymentCommand) PaidAmount() kernel.Money { return c.params.PaidAmount }
func (c MaterializeFromPaymentCommand) StudentID() kernel.UUID   { return c.params.StudentID }
func (c MaterializeFromPaymentCommand) Delivery() order.Delivery { return c.params.Delivery }

// Cart returns a copy of the cart lines.
func (c MaterializeFromPaymentCommand) Cart() []services.CartLine {
	return append([]services.CartLine(nil), c.params.Cart...)
}
