// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// Names of the unique indexes the repository translates into port errors.
const (
	IndexSettlement  = "idx_orders_settlement"
	IndexOrderNumber = "idx_orders_number"
	IndexActiveRider = "idx_orders_active_rider"
)

// OrderDTO represents the database structure for persisting order aggregates.
//
// The settlement index makes materialization idempotent per payment and
// restaurant. The partial active-rider index lets a rider hold one
// undelivered order at a time.
type OrderDTO struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderNumber    string     `gorm:"size:32;not null;uniqueIndex:idx_orders_number"`
	StudentID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	RestaurantID   uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_orders_settlement,priority:2"`
	RestaurantName string     `gorm:"size:255;not null"`
	RiderID        *uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_orders_active_rider,where:rider_id IS NOT NULL AND status <> 'DELIVERED' AND status <> 'CANCELLED'"`
	Items          []ItemDTO  `gorm:"type:jsonb;serializer:json;not null"`
	Subtotal       int64      `gorm:"not null"`
	ServiceCharge  int64      `gorm:"not null"`
	DeliveryFee    int64      `gorm:"not null"`
	Total          int64      `gorm:"not null"`
	Status         string     `gorm:"size:16;not null;index"`

	PaymentReference string `gorm:"size:128;not null;index;uniqueIndex:idx_orders_settlement,priority:1"`
	PaymentStatus    string `gorm:"size:16;not null"`
	PaymentMethod    string `gorm:"size:32"`

	DeliveryAddress      string `gorm:"not null"`
	DeliveryInstructions string
	ContactPhone         string `gorm:"size:32;not null"`

	RejectedAt      *time.Time
	RejectionReason string
	CancelledFrom   string `gorm:"size:16"`

	Version   int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// ItemDTO is one line of the item snapshot stored as JSON.
type ItemDTO struct {
	MenuItemID string `json:"itemId"`
	Name       string `json:"name"`
	UnitPrice  int64  `json:"price"`
	Quantity   int    `json:"quantity"`
}

// AssignableStatuses are the statuses in which a rider may be bound or released.
func AssignableStatuses() []string {
	return []string{order.Accepted.String(), order.Preparing.String(), order.Ready.String()}
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()

	var riderID *uuid.UUID
	if s.RiderID != nil {
		raw := s.RiderID.Bytes()
		riderID = &raw
	}

	var cancelledFrom string
	if s.CancelledFrom != order.Unknown {
		cancelledFrom = s.CancelledFrom.String()
	}

	items := make([]ItemDTO, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, ItemDTO{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice.Int64(),
			Quantity:   item.Quantity,
		})
	}

	return OrderDTO{
		ID:                   s.ID.Bytes(),
		OrderNumber:          s.Number.String(),
		StudentID:            s.StudentID.Bytes(),
		RestaurantID:         s.RestaurantID.Bytes(),
		RestaurantName:       s.RestaurantName,
		RiderID:              riderID,
		Items:                items,
		Subtotal:             s.Subtotal.Int64(),
		ServiceCharge:        s.ServiceCharge.Int64(),
		DeliveryFee:          s.DeliveryFee.Int64(),
		Total:                s.Total.Int64(),
		Status:               s.Status.String(),
		PaymentReference:     s.Payment.Reference,
		PaymentStatus:        string(s.Payment.Status),
		PaymentMethod:        s.Payment.Method,
		DeliveryAddress:      s.Delivery.Address,
		DeliveryInstructions: s.Delivery.Instructions,
		ContactPhone:         s.Delivery.ContactPhone,
		RejectedAt:           s.RejectedAt,
		RejectionReason:      s.RejectionReason,
		CancelledFrom:        cancelledFrom,
		Version:              s.Version,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

// ToSnapshot converts a database row into the order snapshot. Read models
// use it without rebuilding the aggregate.
func ToSnapshot(dto OrderDTO) (order.Snapshot, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return order.Snapshot{}, err
	}
	studentID, err := kernel.UUIDFromBytes(dto.StudentID[:])
	if err != nil {
		return order.Snapshot{}, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return order.Snapshot{}, err
	}

	var riderID *kernel.UUID
	if dto.RiderID != nil {
		rID, riderErr := kernel.UUIDFromBytes((*dto.RiderID)[:])
		if riderErr != nil {
			return order.Snapshot{}, riderErr
		}
		riderID = &rID
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return order.Snapshot{}, err
	}

	cancelledFrom := order.Unknown
	if dto.CancelledFrom != "" {
		if cancelledFrom, err = order.ParseStatus(dto.CancelledFrom); err != nil {
			return order.Snapshot{}, err
		}
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, item := range dto.Items {
		items = append(items, order.Item{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			UnitPrice:  kernel.Money(item.UnitPrice),
			Quantity:   item.Quantity,
		})
	}

	return order.Snapshot{
		ID:             id,
		Number:         order.Number(dto.OrderNumber),
		StudentID:      studentID,
		RestaurantID:   restaurantID,
		RestaurantName: dto.RestaurantName,
		RiderID:        riderID,
		Items:          items,
		Subtotal:       kernel.Money(dto.Subtotal),
		ServiceCharge:  kernel.Money(dto.ServiceCharge),
		DeliveryFee:    kernel.Money(dto.DeliveryFee),
		Total:          kernel.Money(dto.Total),
		Status:         status,
		Payment: order.Payment{
			Reference: dto.PaymentReference,
			Status:    order.PaymentStatus(dto.PaymentStatus),
			Method:    dto.PaymentMethod,
		},
		Delivery: order.Delivery{
			Address:      dto.DeliveryAddress,
			Instructions: dto.DeliveryInstructions,
			ContactPhone: dto.ContactPhone,
		},
		CreatedAt:       dto.CreatedAt,
		UpdatedAt:       dto.UpdatedAt,
		RejectedAt:      dto.RejectedAt,
		RejectionReason: dto.RejectionReason,
		CancelledFrom:   cancelledFrom,
		Version:         dto.Version,
	}, nil
}

// toDomain converts a database DTO to an order domain aggregate.
func toDomain(dto OrderDTO) (*order.Order, error) {
	s, err := ToSnapshot(dto)
	if err != nil {
		return nil, err
	}
	return order.RestoreOrder(s)
}
