package commands_test

import (
	"strings"
	"testing"

	"campuseats/internal/core/application/usecases/commands"
	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/domain/services"
	"campuseats/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransitionOrderCommand(t *testing.T) {
	orderID := kernel.NewUUID()
	actor := order.Actor{Role: order.RoleRider, ID: kernel.NewUUID()}

	t.Run("should normalize the status spelling", func(t *testing.T) {
		cmd, err := commands.NewTransitionOrderCommand(orderID, "picked up", actor, "  at the gate ")

		require.NoError(t, err)
		assert.Equal(t, orderID, cmd.OrderID())
		assert.Equal(t, order.PickedUp, cmd.Status())
		assert.Equal(t, actor, cmd.Actor())
		assert.Equal(t, "at the gate", cmd.Reason())
		assert.NoError(t, cmd.Validate())
	})

	t.Run("should reject unknown status", func(t *testing.T) {
		_, err := commands.NewTransitionOrderCommand(orderID, "shipped", actor, "")

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should require status", func(t *testing.T) {
		_, err := commands.NewTransitionOrderCommand(orderID, " ", actor, "")

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject an actor without role", func(t *testing.T) {
		_, err := commands.NewTransitionOrderCommand(orderID, "accepted", order.Actor{ID: kernel.NewUUID()}, "")

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should cap the reason", func(t *testing.T) {
		_, err := commands.NewTransitionOrderCommand(orderID, "cancelled", actor, strings.Repeat("x", commands.MaxReasonLength+1))

		assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should collect every error", func(t *testing.T) {
		_, err := commands.NewTransitionOrderCommand(kernel.UUID{}, "", order.Actor{}, "")

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		assert.ErrorIs(t, commands.TransitionOrderCommand{}.Validate(), commands.ErrTransitionOrderCommandIsNotConstructed)
	})
}

func TestNewAssignRiderCommand(t *testing.T) {
	orderID := kernel.NewUUID()
	riderID := kernel.NewUUID()

	t.Run("admin may push any rider", func(t *testing.T) {
		cmd, err := commands.NewAssignRiderCommand(orderID, riderID, adminActor())

		require.NoError(t, err)
		assert.Equal(t, orderID, cmd.OrderID())
		assert.Equal(t, riderID, cmd.RiderID())
		assert.Equal(t, order.RoleAdmin, cmd.TriggeredBy())
	})

	t.Run("rider may pull for themselves", func(t *testing.T) {
		cmd, err := commands.NewAssignRiderCommand(orderID, riderID, order.Actor{Role: order.RoleRider, ID: riderID})

		require.NoError(t, err)
		assert.Equal(t, order.RoleRider, cmd.TriggeredBy())
	})

	t.Run("rider may not pull for someone else", func(t *testing.T) {
		_, err := commands.NewAssignRiderCommand(orderID, riderID, order.Actor{Role: order.RoleRider, ID: kernel.NewUUID()})

		assert.ErrorIs(t, err, order.ErrNotAuthorized)
	})

	t.Run("restaurant and student may not assign", func(t *testing.T) {
		for _, role := range []order.Role{order.RoleRestaurant, order.RoleStudent} {
			_, err := commands.NewAssignRiderCommand(orderID, riderID, order.Actor{Role: role, ID: kernel.NewUUID()})

			assert.ErrorIs(t, err, order.ErrNotAuthorized, role.String())
		}
	})

	t.Run("should require identifiers", func(t *testing.T) {
		_, err := commands.NewAssignRiderCommand(kernel.UUID{}, riderID, adminActor())

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestNewUnassignRiderCommand(t *testing.T) {
	orderID := kernel.NewUUID()

	cmd, err := commands.NewUnassignRiderCommand(orderID, adminActor())
	require.NoError(t, err)
	assert.Equal(t, orderID, cmd.OrderID())

	_, err = commands.NewUnassignRiderCommand(orderID, order.Actor{Role: order.RoleRider, ID: kernel.NewUUID()})
	assert.ErrorIs(t, err, order.ErrNotAuthorized)
}

func TestNewMaterializeFromPaymentCommand(t *testing.T) {
	valid := func() commands.MaterializeParams {
		return commands.MaterializeParams{
			PaymentReference: " PSK_8f2a ",
			PaymentMethod:    "card",
			StudentID:        kernel.NewUUID(),
			Cart: []services.CartLine{
				{RestaurantID: kernel.NewUUID(), ItemID: "a-1", Name: "Jollof Rice", Price: 1200, Quantity: 1},
			},
			Delivery: order.Delivery{Address: "Hall 3", ContactPhone: "+2348000000000"},
		}
	}

	t.Run("should trim and copy the inputs", func(t *testing.T) {
		p := valid()
		cmd, err := commands.NewMaterializeFromPaymentCommand(p)
		require.NoError(t, err)

		p.Cart[0].Quantity = 99

		assert.Equal(t, "PSK_8f2a", cmd.PaymentReference())
		assert.Equal(t, 1, cmd.Cart()[0].Quantity)
		assert.NoError(t, cmd.Validate())
	})

	t.Run("should reject missing fields", func(t *testing.T) {
		p := valid()
		p.PaymentReference = ""
		p.Cart = nil
		p.Delivery.Address = " "
		p.Delivery.ContactPhone = ""

		_, err := commands.NewMaterializeFromPaymentCommand(p)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "payment reference")
		assert.Contains(t, err.Error(), "cart")
		assert.Contains(t, err.Error(), "delivery address")
		assert.Contains(t, err.Error(), "contact phone")
	})

	t.Run("should reject a negative paid amount", func(t *testing.T) {
		p := valid()
		p.PaidAmount = -1

		_, err := commands.NewMaterializeFromPaymentCommand(p)

		require.Error(t, err)
	})
}

func TestNewSettlePaymentCommand(t *testing.T) {
	requester := order.Actor{Role: order.RoleStudent, ID: kernel.NewUUID()}

	cmd, err := commands.NewSettlePaymentCommand(" PSK_8f2a ", &requester)
	require.NoError(t, err)
	assert.Equal(t, "PSK_8f2a", cmd.Reference())
	require.NotNil(t, cmd.Requester())
	assert.Equal(t, requester, *cmd.Requester())

	_, err = commands.NewSettlePaymentCommand("", nil)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	assert.ErrorIs(t, commands.SettlePaymentCommand{}.Validate(), commands.ErrSettlePaymentCommandIsNotConstructed)
}
