// Package outboxrepo stores domain events in the transactional outbox and
// hands them to the relay.
package outboxrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"campuseats/internal/adapters/out/postgres/pgerr"
	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxErrorLength bounds the stored broker error.
const maxErrorLength = 1000

// OutboxDTO is one pending or relayed domain event.
type OutboxDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	EventType   string     `gorm:"size:32;not null"`
	Payload     []byte     `gorm:"type:jsonb;not null"`
	OccurredAt  time.Time  `gorm:"not null;index:idx_outbox_pending,priority:2"`
	ProcessedAt *time.Time `gorm:"index:idx_outbox_pending,priority:1"`
	Attempts    int        `gorm:"not null;default:0"`
	LastError   string
}

// TableName specifies the database table name for outbox events.
func (OutboxDTO) TableName() string {
	return "outbox_events"
}

// GormOutboxRepository implements ports.OutboxRepository.
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository creates an outbox repository on db, which should be
// the transaction of the aggregate write.
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Append stores events as JSON.
func (r *GormOutboxRepository) Append(ctx context.Context, events ...order.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	dtos := make([]OutboxDTO, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", event.EventType(), err)
		}
		dtos = append(dtos, OutboxDTO{
			ID:         event.EventID().Bytes(),
			OrderID:    event.AggregateID().Bytes(),
			EventType:  string(event.EventType()),
			Payload:    payload,
			OccurredAt: event.OccurredAt(),
		})
	}

	if err := r.db.WithContext(ctx).Create(&dtos).Error; err != nil {
		return pgerr.Translate(err, nil)
	}
	return nil
}

// FetchUnprocessed locks up to limit pending events, oldest first. Rows locked
// by a concurrent relay are skipped, so two relays never publish the same
// batch at once. Rows that failed ports.MaxOutboxAttempts times stay parked.
func (r *GormOutboxRepository) FetchUnprocessed(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	var dtos []OutboxDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("processed_at IS NULL AND attempts < ?", ports.MaxOutboxAttempts).
		Order("occurred_at, id").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, pgerr.Translate(err, nil)
	}

	messages := make([]ports.OutboxMessage, 0, len(dtos))
	for _, dto := range dtos {
		id, err := kernel.UUIDFromBytes(dto.ID[:])
		if err != nil {
			return nil, err
		}
		orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
		if err != nil {
			return nil, err
		}
		messages = append(messages, ports.OutboxMessage{
			ID:         id,
			OrderID:    orderID,
			EventType:  order.EventType(dto.EventType),
			Payload:    dto.Payload,
			OccurredAt: dto.OccurredAt,
			Attempts:   dto.Attempts,
		})
	}
	return messages, nil
}

// MarkProcessed records a successful broker publish.
func (r *GormOutboxRepository) MarkProcessed(ctx context.Context, id kernel.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&OutboxDTO{}).
		Where("id = ?", id.Bytes()).
		Updates(map[string]any{
			"processed_at": at,
			"attempts":     gorm.Expr("attempts + 1"),
			"last_error":   "",
		}).Error
	return pgerr.Translate(err, nil)
}

// MarkFailed bumps the attempt counter and keeps the event pending.
func (r *GormOutboxRepository) MarkFailed(ctx context.Context, id kernel.UUID, cause error) error {
	msg := ""
	if cause != nil {
		msg = truncateError(cause.Error(), maxErrorLength)
	}

	err := r.db.WithContext(ctx).Model(&OutboxDTO{}).
		Where("id = ?", id.Bytes()).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": msg,
		}).Error
	return pgerr.Translate(err, nil)
}

// truncateError cuts msg to at most n bytes of valid UTF-8 without NUL bytes,
// which Postgres rejects in text columns.
func truncateError(msg string, n int) string {
	msg = strings.ToValidUTF8(strings.ReplaceAll(msg, "\x00", ""), "")
	if len(msg) <= n {
		return msg
	}
	return strings.ToValidUTF8(msg[:n], "")
}
