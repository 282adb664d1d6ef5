package ports

import (
	"context"
	"errors"

	"campuseats/internal/core/domain/model/kernel"
)

// PaymentStatusSuccess is the only verification status that materializes orders.
const PaymentStatusSuccess = "success"

// ErrPaymentGateway marks a verifier that could not get an answer from the
// gateway.
var ErrPaymentGateway = errors.New("payment gateway error")

// PaymentCartLine is a cart line carried in the payment metadata.
type PaymentCartLine struct {
	RestaurantID   string       `json:"restaurantId"`
	RestaurantName string       `json:"restaurantName"`
	ItemID         string       `json:"itemId"`
	Name           string       `json:"name"`
	Price          kernel.Money `json:"price"`
	Quantity       int          `json:"quantity"`
}

// PaymentMetadata is what checkout attached to the payment.
type PaymentMetadata struct {
	StudentID            string            `json:"studentId"`
	Cart                 []PaymentCartLine `json:"cart"`
	DeliveryAddress      string            `json:"deliveryAddress"`
	DeliveryInstructions string            `json:"deliveryInstructions"`
	ContactPhone         string            `json:"contactPhone"`
}

// PaymentVerification is the gateway's answer for a reference.
type PaymentVerification struct {
	Reference string
	Status    string
	Amount    kernel.Money
	Channel   string
	Metadata  PaymentMetadata
}

// PaymentVerifier asks the gateway whether a payment settled.
type PaymentVerifier interface {
	Verify(ctx context.Context, reference string) (PaymentVerification, error)
}
