package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads orders and their history with direct SQL.
//
// Parties of the order and admins may read it. A rider may also read an order
// that is waiting in the pull pool, so the pool can link to the details.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns the stored state of the order.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (order.Snapshot, error) {
	if err := query.Validate(); err != nil {
		return order.Snapshot{}, err
	}

	snapshot, err := h.load(ctx, query.OrderID())
	if err != nil {
		return order.Snapshot{}, err
	}
	if err := authorizeRead(snapshot, query.Actor()); err != nil {
		return order.Snapshot{}, err
	}
	return snapshot, nil
}

// HandleHistory returns the audit trail of the order, oldest first.
func (h GetOrderQueryHandler) HandleHistory(
	ctx context.Context,
	query GetOrderHistoryQuery,
) ([]HistoryEntryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	snapshot, err := h.load(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}
	if err := authorizeRead(snapshot, query.Actor()); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT from_status, to_status, actor_role, actor_id, note, at
		FROM order_status_history
		WHERE order_id = ?
		ORDER BY at, id
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]HistoryEntryResponse, 0)
	for rows.Next() {
		var (
			from, to, role string
			actorID        uuid.UUID
			entry          HistoryEntryResponse
		)
		if err = rows.Scan(&from, &to, &role, &actorID, &entry.Note, &entry.At); err != nil {
			return nil, err
		}
		if entry.From, err = order.ParseStatus(from); err != nil {
			return nil, err
		}
		if entry.To, err = order.ParseStatus(to); err != nil {
			return nil, err
		}
		if entry.ActorRole, err = order.ParseRole(role); err != nil {
			return nil, err
		}
		if entry.ActorID, err = kernel.UUIDFromBytes(actorID[:]); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (h GetOrderQueryHandler) load(ctx context.Context, orderID kernel.UUID) (order.Snapshot, error) {
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id, order_number, student_id, restaurant_id, restaurant_name, rider_id,
			items, subtotal, service_charge, delivery_fee, total, status,
			payment_reference, payment_status, payment_method,
			delivery_address, delivery_instructions, contact_phone,
			rejected_at, rejection_reason, version, created_at, updated_at
		FROM orders
		WHERE id = ?
	`, orderID.Bytes()).Row()

	var (
		s                                   order.Snapshot
		id, studentID, restaurantID         uuid.UUID
		riderID                             *uuid.UUID
		items                               []byte
		subtotal, serviceCharge, fee, total int64
		number, status, paymentStatus       string
		rejectedAt                          *time.Time
	)
	err := row.Scan(
		&id, &number, &studentID, &restaurantID, &s.RestaurantName, &riderID,
		&items, &subtotal, &serviceCharge, &fee, &total, &status,
		&s.Payment.Reference, &paymentStatus, &s.Payment.Method,
		&s.Delivery.Address, &s.Delivery.Instructions, &s.Delivery.ContactPhone,
		&rejectedAt, &s.RejectionReason, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return order.Snapshot{}, errs.NewObjectNotFoundError("order", orderID.String())
		}
		return order.Snapshot{}, err
	}

	if s.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return order.Snapshot{}, err
	}
	if s.StudentID, err = kernel.UUIDFromBytes(studentID[:]); err != nil {
		return order.Snapshot{}, err
	}
	if s.RestaurantID, err = kernel.UUIDFromBytes(restaurantID[:]); err != nil {
		return order.Snapshot{}, err
	}
	if riderID != nil {
		rider, err := kernel.UUIDFromBytes(riderID[:])
		if err != nil {
			return order.Snapshot{}, err
		}
		s.RiderID = &rider
	}
	if err := json.Unmarshal(items, &s.Items); err != nil {
		return order.Snapshot{}, fmt.Errorf("decode items of order %s: %w", orderID, err)
	}
	if s.Status, err = order.ParseStatus(status); err != nil {
		return order.Snapshot{}, err
	}

	s.Number = order.Number(number)
	s.Subtotal = kernel.Money(subtotal)
	s.ServiceCharge = kernel.Money(serviceCharge)
	s.DeliveryFee = kernel.Money(fee)
	s.Total = kernel.Money(total)
	s.Payment.Status = order.PaymentStatus(paymentStatus)
	s.RejectedAt = rejectedAt

	return s, nil
}

func authorizeRead(s order.Snapshot, actor order.Actor) error {
	switch actor.Role {
	case order.RoleAdmin:
		return nil
	case order.RoleStudent:
		if actor.ID.IsEqual(s.StudentID) {
			return nil
		}
	case order.RoleRestaurant:
		if actor.ID.IsEqual(s.RestaurantID) {
			return nil
		}
	case order.RoleRider:
		if s.RiderID != nil && actor.ID.IsEqual(*s.RiderID) {
			return nil
		}
		if s.RiderID == nil && s.Status.IsPoolVisible() {
			return nil
		}
	}
	return fmt.Errorf("%w: %s may not read order %s", order.ErrNotAuthorized, actor.Role, s.ID)
}
