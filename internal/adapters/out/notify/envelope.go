// Package notify publishes order notifications to the broker that drives
// email and WhatsApp delivery. RabbitMQ and Kafka sinks share one JSON
// envelope so consumers do not depend on the broker in use.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/ports"
)

// Envelope is the body of every broker message.
type Envelope struct {
	EventID    kernel.UUID     `json:"eventId"`
	EventType  order.EventType `json:"eventType"`
	OrderID    kernel.UUID     `json:"orderId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// Encode wraps a notification in the envelope.
func Encode(n ports.Notification) ([]byte, error) {
	payload := json.RawMessage(n.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}

	body, err := json.Marshal(Envelope{
		EventID:    n.EventID,
		EventType:  n.EventType,
		OrderID:    n.OrderID,
		OccurredAt: n.OccurredAt,
		Payload:    payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification %s: %w", n.EventID, err)
	}
	return body, nil
}
