package ports

import (
	"context"
	"time"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
)

// Notification is the envelope published to the broker and the real-time hub.
type Notification struct {
	EventID    kernel.UUID     `json:"eventId"`
	EventType  order.EventType `json:"eventType"`
	OrderID    kernel.UUID     `json:"orderId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    []byte          `json:"-"`
}

// NotificationSink publishes to the broker that triggers email and WhatsApp
// delivery. Delivery is at-least-once; consumers tolerate duplicates.
type NotificationSink interface {
	Publish(ctx context.Context, n Notification) error
	Close() error
}

// RealtimePublisher fans a notification out to identity channels such as
// "student:<id>" or "admin".
type RealtimePublisher interface {
	Publish(ctx context.Context, channels []string, n Notification) error
}

// Subscription streams raw real-time messages until closed.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

// RealtimeSubscriber opens subscriptions for connected clients.
type RealtimeSubscriber interface {
	Subscribe(ctx context.Context, channels ...string) (Subscription, error)
}
