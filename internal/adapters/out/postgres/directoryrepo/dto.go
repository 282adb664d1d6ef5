// Package directoryrepo reads the restaurant and rider directories. Both tables
// are owned by other services; the fulfillment core never writes them.
package directoryrepo

import (
	"github.com/google/uuid"
)

// RestaurantDTO mirrors the columns of restaurants the core reads.
type RestaurantDTO struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                  string    `gorm:"not null"`
	IsApproved            bool      `gorm:"not null"`
	IsActive              bool      `gorm:"not null"`
	IsOpen                bool      `gorm:"not null"`
	DeliveryFee           int64     `gorm:"not null;default:0"`
	EstimatedDeliveryTime int       `gorm:"not null;default:30"`
}

// TableName specifies the database table name for restaurants.
func (RestaurantDTO) TableName() string {
	return "restaurants"
}

// RiderDTO mirrors the columns of riders the core reads.
type RiderDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null"`
	IsOnline    bool      `gorm:"not null"`
	IsAvailable bool      `gorm:"not null"`
}

// TableName specifies the database table name for riders.
func (RiderDTO) TableName() string {
	return "riders"
}
