package postgres

import (
	"campuseats/internal/adapters/out/postgres/directoryrepo"
	"campuseats/internal/adapters/out/postgres/historyrepo"
	"campuseats/internal/adapters/out/postgres/orderrepo"
	"campuseats/internal/adapters/out/postgres/outboxrepo"

	"gorm.io/gorm"
)

// Models lists every table the service reads or writes.
func Models() []any {
	return []any{
		&directoryrepo.RestaurantDTO{},
		&directoryrepo.RiderDTO{},
		&orderrepo.OrderDTO{},
		&historyrepo.HistoryDTO{},
		&outboxrepo.OutboxDTO{},
	}
}

// Migrate creates or updates the schema, including the unique indexes the
// order repository relies on for idempotent settlement and exclusive riders.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
