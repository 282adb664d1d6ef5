package orderrepo

import (
	"context"
	"errors"

	"campuseats/internal/adapters/out/postgres/pgerr"
	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/ports"
	"campuseats/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

func constraintErrors() map[string]error {
	return map[string]error{
		IndexSettlement:  ports.ErrDuplicateSettlement,
		IndexOrderNumber: ports.ErrDuplicateOrderNumber,
		IndexActiveRider: ports.ErrRiderBusy,
	}
}

func translate(err error) error {
	return pgerr.Translate(err, constraintErrors())
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return translate(err)
	}

	aggregate.MarkPersisted()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the status fields when the stored version is still the one
// the aggregate was loaded with.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if !aggregate.HasPendingChanges() {
		return nil
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.PersistedVersion()).
		Updates(map[string]any{
			"status":           dto.Status,
			"rejected_at":      dto.RejectedAt,
			"rejection_reason": dto.RejectionReason,
			"cancelled_from":   dto.CancelledFrom,
			"updated_at":       dto.UpdatedAt,
			"version":          dto.Version,
		})
	if result.Error != nil {
		return translate(result.Error)
	}

	if result.RowsAffected == 0 {
		return r.missOrConflict(ctx, aggregate.ID())
	}

	aggregate.MarkPersisted()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// AssignRider binds the aggregate's rider with a single conditional update.
// Of two concurrent calls for the same order exactly one matches a row.
func (r *GormOrderRepository) AssignRider(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	riderID := aggregate.Rider()
	if riderID == nil {
		return errs.NewValueIsRequiredError("rider")
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND rider_id IS NULL AND status IN ?", aggregate.ID().Bytes(), AssignableStatuses()).
		Updates(map[string]any{
			"rider_id":   riderID.Bytes(),
			"updated_at": aggregate.UpdatedAt(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ports.ErrAssignmentConflict
	}

	aggregate.MarkPersisted()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// UnassignRider clears the rider if it is still previousRiderID and the order
// has not been picked up.
func (r *GormOrderRepository) UnassignRider(
	ctx context.Context,
	aggregate *order.Order,
	previousRiderID kernel.UUID,
) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND rider_id = ? AND status IN ?",
			aggregate.ID().Bytes(), previousRiderID.Bytes(), AssignableStatuses()).
		Updates(map[string]any{
			"rider_id":   nil,
			"updated_at": aggregate.UpdatedAt(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ports.ErrAssignmentConflict
	}

	aggregate.MarkPersisted()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, translate(err)
	}

	return toDomain(dto)
}

// GetBySettlement retrieves the order created for a payment and restaurant.
func (r *GormOrderRepository) GetBySettlement(
	ctx context.Context,
	paymentReference string,
	restaurantID kernel.UUID,
) (*order.Order, error) {
	var dto OrderDTO
	err := r.db.WithContext(ctx).
		First(&dto, "payment_reference = ? AND restaurant_id = ?", paymentReference, restaurantID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", paymentReference+"/"+restaurantID.String())
		}
		return nil, translate(err)
	}

	return toDomain(dto)
}

// ListByPaymentReference retrieves every order of a payment, oldest first.
func (r *GormOrderRepository) ListByPaymentReference(ctx context.Context, paymentReference string) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("payment_reference = ?", paymentReference).
		Order("created_at, order_number").
		Find(&dtos).Error
	if err != nil {
		return nil, translate(err)
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func (r *GormOrderRepository) missOrConflict(ctx context.Context, id kernel.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return translate(err)
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	return ports.ErrVersionConflict
}
