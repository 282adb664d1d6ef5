package ports

import (
	"context"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/restaurant"
	"campuseats/internal/core/domain/model/rider"
)

// RestaurantDirectory reads restaurants owned by the catalogue service.
// Get returns an errs.ObjectNotFoundError for unknown identifiers.
type RestaurantDirectory interface {
	Get(ctx context.Context, id kernel.UUID) (*restaurant.Restaurant, error)
}

// RiderDirectory reads riders owned by the rider service.
// Get returns an errs.ObjectNotFoundError for unknown identifiers.
type RiderDirectory interface {
	Get(ctx context.Context, id kernel.UUID) (*rider.Rider, error)
}
