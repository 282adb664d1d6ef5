package queries

import (
	"errors"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/pkg/guard"
)

var (
	ErrListAvailableRidersQueryIsNotConstructed = errors.New(
		"ListAvailableRidersQuery must be created via NewListAvailableRidersQuery constructor",
	)
)

// ListAvailableRidersQuery retrieves riders an admin can push an order to:
// online, available and without an undelivered order.
//
// Example:
//
//	query := NewListAvailableRidersQuery()
//	handler := NewListAvailableRidersQueryHandler(db)
//
//	riders, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to list riders: %w", err)
//	}
type ListAvailableRidersQuery struct {
	guard guard.ConstructorGuard
}

// NewListAvailableRidersQuery creates a parameterless rider query.
func NewListAvailableRidersQuery() ListAvailableRidersQuery {
	return ListAvailableRidersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrListAvailableRidersQueryIsNotConstructed if validation fails.
func (q ListAvailableRidersQuery) Validate() error {
	return q.guard.Validate(ErrListAvailableRidersQueryIsNotConstructed)
}

// AvailableRiderResponse represents a rider in the read model.
type AvailableRiderResponse struct {
	ID   kernel.UUID
	Name string
}
