package notify

import (
	"context"
	"fmt"

	"campuseats/internal/core/ports"

	"github.com/segmentio/kafka-go"
)

// DefaultKafkaTopic is the topic notification workers consume.
const DefaultKafkaTopic = "order-events"

// messageWriter is the part of *kafka.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes notifications keyed by order id, so the events of one
// order stay in one partition and keep their order.
type KafkaSink struct {
	writer messageWriter
}

var _ ports.NotificationSink = (*KafkaSink)(nil)

// NewKafkaSink creates a sink writing to topic on brokers.
func NewKafkaSink(topic string, brokers ...string) *KafkaSink {
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	return NewKafkaSinkWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	})
}

// NewKafkaSinkWithWriter wraps an existing writer.
func NewKafkaSinkWithWriter(writer messageWriter) *KafkaSink {
	return &KafkaSink{writer: writer}
}

// Publish writes n and waits for the broker acknowledgement.
func (s *KafkaSink) Publish(ctx context.Context, n ports.Notification) error {
	body, err := Encode(n)
	if err != nil {
		return err
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.OrderID.String()),
		Value: body,
		Time:  n.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(n.EventType)},
			{Key: "event_id", Value: []byte(n.EventID.String())},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification to kafka: %w", err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
