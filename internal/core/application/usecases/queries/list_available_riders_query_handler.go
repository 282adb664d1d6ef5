package queries

import (
	"context"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListAvailableRidersQueryHandler retrieves dispatchable riders from the
// database. Uses direct SQL queries for read performance in the CQRS pattern.
//
// Example:
//
//	handler := NewListAvailableRidersQueryHandler(db)
//	riders, err := handler.Handle(ctx, NewListAvailableRidersQuery())
type ListAvailableRidersQueryHandler struct {
	db *gorm.DB
}

// NewListAvailableRidersQueryHandler creates a handler for rider queries.
func NewListAvailableRidersQueryHandler(db *gorm.DB) ListAvailableRidersQueryHandler {
	return ListAvailableRidersQueryHandler{db: db}
}

// Handle returns the available riders sorted by name.
func (h ListAvailableRidersQueryHandler) Handle(
	ctx context.Context,
	query ListAvailableRidersQuery,
) ([]AvailableRiderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	riders := make([]AvailableRiderResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			r.id,
			r.name
		FROM riders r
		WHERE r.is_online AND r.is_available
			AND NOT EXISTS (
				SELECT 1 FROM orders o
				WHERE o.rider_id = r.id AND o.status NOT IN (?, ?)
			)
		ORDER BY r.name
	`, order.Delivered.String(), order.Cancelled.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rider AvailableRiderResponse
		var id uuid.UUID

		if err = rows.Scan(&id, &rider.Name); err != nil {
			return nil, err
		}

		riderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		rider.ID = riderID
		riders = append(riders, rider)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return riders, nil
}
