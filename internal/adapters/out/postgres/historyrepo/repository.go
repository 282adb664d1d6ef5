// Package historyrepo persists the append-only audit trail of order status
// changes.
package historyrepo

import (
	"context"
	"time"

	"campuseats/internal/adapters/out/postgres/pgerr"
	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryDTO is one row of order_status_history.
type HistoryDTO struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index:idx_order_status_history_order,priority:1"`
	FromStatus string    `gorm:"size:16;not null"`
	ToStatus   string    `gorm:"size:16;not null"`
	ActorRole  string    `gorm:"size:16;not null"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	Note       string
	At         time.Time `gorm:"not null;index:idx_order_status_history_order,priority:2"`
}

// TableName specifies the database table name for history entries.
func (HistoryDTO) TableName() string {
	return "order_status_history"
}

// GormHistoryRepository implements ports.HistoryRepository.
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a history repository on db, which may be
// a transaction.
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append stores one entry.
func (r *GormHistoryRepository) Append(ctx context.Context, entry ports.HistoryEntry) error {
	if err := entry.OrderID.Validate(); err != nil {
		return err
	}

	dto := HistoryDTO{
		OrderID:    entry.OrderID.Bytes(),
		FromStatus: entry.From.String(),
		ToStatus:   entry.To.String(),
		ActorRole:  entry.Actor.Role.String(),
		ActorID:    entry.Actor.ID.Bytes(),
		Note:       entry.Note,
		At:         entry.At,
	}
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Translate(err, nil)
	}
	return nil
}

// List returns the entries of an order in the order they happened.
func (r *GormHistoryRepository) List(ctx context.Context, orderID kernel.UUID) ([]ports.HistoryEntry, error) {
	var dtos []HistoryDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("at, id").
		Find(&dtos).Error
	if err != nil {
		return nil, pgerr.Translate(err, nil)
	}

	entries := make([]ports.HistoryEntry, 0, len(dtos))
	for _, dto := range dtos {
		entry, err := toEntry(dto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func toEntry(dto HistoryDTO) (ports.HistoryEntry, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return ports.HistoryEntry{}, err
	}
	actorID, err := kernel.UUIDFromBytes(dto.ActorID[:])
	if err != nil {
		return ports.HistoryEntry{}, err
	}
	from, err := order.ParseStatus(dto.FromStatus)
	if err != nil {
		return ports.HistoryEntry{}, err
	}
	to, err := order.ParseStatus(dto.ToStatus)
	if err != nil {
		return ports.HistoryEntry{}, err
	}
	role, err := order.ParseRole(dto.ActorRole)
	if err != nil {
		return ports.HistoryEntry{}, err
	}

	return ports.HistoryEntry{
		OrderID: orderID,
		From:    from,
		To:      to,
		Actor:   order.Actor{Role: role, ID: actorID},
		Note:    dto.Note,
		At:      dto.At,
	}, nil
}
