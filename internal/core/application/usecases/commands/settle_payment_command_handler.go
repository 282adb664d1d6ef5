package commands

import (
	"context"
	"errors"
	"fmt"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/domain/services"
	"campuseats/internal/core/ports"
)

// ErrPaymentNotSuccessful is returned when the gateway does not report success.
var ErrPaymentNotSuccessful = errors.New("payment was not successful")

// Materializer is the part of MaterializeFromPaymentCommandHandler used after
// verification.
type Materializer interface {
	Handle(ctx context.Context, cmd MaterializeFromPaymentCommand) (MaterializationResult, error)
}

// SettlePaymentCommandHandler verifies a payment reference and hands the
// checkout metadata to the materializer. Replayed webhooks and repeated
// verify calls end in the materializer's idempotency guard.
type SettlePaymentCommandHandler struct {
	verifier     ports.PaymentVerifier
	materializer Materializer
}

// NewSettlePaymentCommandHandler creates a handler for payment settlement.
func NewSettlePaymentCommandHandler(
	verifier ports.PaymentVerifier,
	materializer Materializer,
) SettlePaymentCommandHandler {
	return SettlePaymentCommandHandler{
		verifier:     verifier,
		materializer: materializer,
	}
}

// Handle verifies and materializes.
func (h SettlePaymentCommandHandler) Handle(ctx context.Context, cmd SettlePaymentCommand) (MaterializationResult, error) {
	if err := cmd.Validate(); err != nil {
		return MaterializationResult{}, err
	}

	verification, err := h.verifier.Verify(ctx, cmd.Reference())
	if err != nil {
		return MaterializationResult{}, err
	}
	if verification.Status != ports.PaymentStatusSuccess {
		return MaterializationResult{}, fmt.Errorf("%w: gateway status %q", ErrPaymentNotSuccessful, verification.Status)
	}

	materialize, err := materializeCommandFrom(cmd.Reference(), verification)
	if err != nil {
		return MaterializationResult{}, err
	}

	if requester := cmd.Requester(); requester != nil {
		if requester.Role != order.RoleAdmin && !requester.Is(order.RoleStudent, materialize.StudentID()) {
			return MaterializationResult{}, fmt.Errorf("%w: payment belongs to another student", order.ErrNotAuthorized)
		}
	}

	return h.materializer.Handle(ctx, materialize)
}

func materializeCommandFrom(reference string, v ports.PaymentVerification) (MaterializeFromPaymentCommand, error) {
	studentID, err := kernel.UUIDFromString(v.Metadata.StudentID)
	if err != nil {
		return MaterializeFromPaymentCommand{}, fmt.Errorf("payment metadata student: %w", err)
	}

	lines := make([]services.CartLine, 0, len(v.Metadata.Cart))
	for _, l := range v.Metadata.Cart {
		restaurantID, idErr := kernel.UUIDFromString(l.RestaurantID)
		if idErr != nil {
			return MaterializeFromPaymentCommand{}, fmt.Errorf("payment metadata restaurant: %w", idErr)
		}
		lines = append(lines, services.CartLine{
			RestaurantID:   restaurantID,
			RestaurantName: l.RestaurantName,
			ItemID:         l.ItemID,
			Name:           l.Name,
			Price:          l.Price,
			Quantity:       l.Quantity,
		})
	}

	return NewMaterializeFromPaymentCommand(MaterializeParams{
		PaymentReference: reference,
		PaymentMethod:    v.Channel,
		PaidAmount:       v.Amount,
		StudentID:        studentID,
		Cart:             lines,
		Delivery: order.Delivery{
			Address:      v.Metadata.DeliveryAddress,
			Instructions: v.Metadata.DeliveryInstructions,
			ContactPhone: v.Metadata.ContactPhone,
		},
	})
}
