package directoryrepo

import (
	"context"
	"errors"

	"campuseats/internal/adapters/out/postgres/pgerr"
	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/restaurant"
	"campuseats/internal/core/domain/model/rider"
	"campuseats/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormRestaurantDirectory implements ports.RestaurantDirectory.
type GormRestaurantDirectory struct {
	db *gorm.DB
}

func NewGormRestaurantDirectory(db *gorm.DB) *GormRestaurantDirectory {
	return &GormRestaurantDirectory{db: db}
}

// Get retrieves a restaurant by identifier.
func (d *GormRestaurantDirectory) Get(ctx context.Context, id kernel.UUID) (*restaurant.Restaurant, error) {
	var dto RestaurantDTO
	err := d.db.WithContext(ctx).Where("id = ?", id.Bytes()).First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("restaurant", id.String())
		}
		return nil, pgerr.Translate(err, nil)
	}

	restaurantID, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return restaurant.RestoreRestaurant(restaurant.Params{
		ID:                    restaurantID,
		Name:                  dto.Name,
		IsApproved:            dto.IsApproved,
		IsActive:              dto.IsActive,
		IsOpen:                dto.IsOpen,
		DeliveryFee:           kernel.Money(dto.DeliveryFee),
		EstimatedDeliveryTime: dto.EstimatedDeliveryTime,
	})
}

// GormRiderDirectory implements ports.RiderDirectory.
type GormRiderDirectory struct {
	db *gorm.DB
}

func NewGormRiderDirectory(db *gorm.DB) *GormRiderDirectory {
	return &GormRiderDirectory{db: db}
}

// Get retrieves a rider by identifier.
func (d *GormRiderDirectory) Get(ctx context.Context, id kernel.UUID) (*rider.Rider, error) {
	var dto RiderDTO
	err := d.db.WithContext(ctx).Where("id = ?", id.Bytes()).First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("rider", id.String())
		}
		return nil, pgerr.Translate(err, nil)
	}

	riderID, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return rider.RestoreRider(riderID, dto.Name, dto.IsOnline, dto.IsAvailable)
}
