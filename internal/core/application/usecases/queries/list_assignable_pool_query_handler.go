package queries

import (
	"context"
	"time"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListAssignablePoolQueryHandler reads the pull pool with direct SQL.
type ListAssignablePoolQueryHandler struct {
	db *gorm.DB
}

func NewListAssignablePoolQueryHandler(db *gorm.DB) ListAssignablePoolQueryHandler {
	return ListAssignablePoolQueryHandler{db: db}
}

// Handle returns the pool page, oldest order first.
func (h ListAssignablePoolQueryHandler) Handle(
	ctx context.Context,
	query ListAssignablePoolQuery,
) ([]PoolOrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sql := `
		SELECT
			o.id,
			o.order_number,
			o.restaurant_id,
			o.restaurant_name,
			o.status,
			o.total,
			o.delivery_fee,
			o.delivery_address,
			o.created_at
		FROM orders o
		JOIN restaurants r ON r.id = o.restaurant_id
		WHERE o.rider_id IS NULL
			AND o.status IN (?, ?)
			AND r.is_approved AND r.is_active AND r.is_open`
	args := []any{order.Accepted.String(), order.Ready.String()}
	if id := query.RestaurantID(); id != nil {
		sql += ` AND o.restaurant_id = ?`
		args = append(args, id.Bytes())
	}
	sql += ` ORDER BY o.created_at, o.order_number LIMIT ?`
	args = append(args, query.Limit())

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pool := make([]PoolOrderResponse, 0)
	for rows.Next() {
		var (
			item               PoolOrderResponse
			id, restaurantID   uuid.UUID
			status             string
			total, deliveryFee int64
			createdAt          time.Time
		)
		err = rows.Scan(
			&id,
			&item.OrderNumber,
			&restaurantID,
			&item.RestaurantName,
			&status,
			&total,
			&deliveryFee,
			&item.DeliveryAddress,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		if item.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if item.RestaurantID, err = kernel.UUIDFromBytes(restaurantID[:]); err != nil {
			return nil, err
		}
		if item.Status, err = order.ParseStatus(status); err != nil {
			return nil, err
		}
		item.Total = kernel.Money(total)
		item.DeliveryFee = kernel.Money(deliveryFee)
		item.CreatedAt = createdAt

		pool = append(pool, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return pool, nil
}
