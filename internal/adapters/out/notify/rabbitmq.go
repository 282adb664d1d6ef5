package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"campuseats/internal/core/ports"

	"github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeOrderNotifications is the fanout exchange notification
	// workers bind their queues to.
	ExchangeOrderNotifications = "order_notifications"

	publishTimeout = 10 * time.Second
)

// amqpChannel is the part of *amqp091.Channel the sink uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// RabbitMQSink publishes notifications to a durable fanout exchange.
type RabbitMQSink struct {
	conn    *amqp091.Connection
	channel amqpChannel
	logger  *slog.Logger
}

var _ ports.NotificationSink = (*RabbitMQSink)(nil)

// DialRabbitMQ connects to url and declares the exchange.
func DialRabbitMQ(url string, logger *slog.Logger) (*RabbitMQSink, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	sink, err := NewRabbitMQSink(channel, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	sink.conn = conn
	return sink, nil
}

// NewRabbitMQSink declares the exchange on channel.
func NewRabbitMQSink(channel amqpChannel, logger *slog.Logger) (*RabbitMQSink, error) {
	err := channel.ExchangeDeclare(
		ExchangeOrderNotifications,
		amqp091.ExchangeFanout,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare %s exchange: %w", ExchangeOrderNotifications, err)
	}

	return &RabbitMQSink{
		channel: channel,
		logger:  logger.With("component", "rabbitmq_sink"),
	}, nil
}

// Publish sends n as a persistent JSON message.
func (s *RabbitMQSink) Publish(ctx context.Context, n ports.Notification) error {
	body, err := Encode(n)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = s.channel.PublishWithContext(ctx, ExchangeOrderNotifications, "", false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    n.EventID.String(),
		Type:         string(n.EventType),
		Timestamp:    n.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	s.logger.DebugContext(ctx, "Notification published",
		"event_id", n.EventID.String(), "event_type", string(n.EventType), "size", len(body))
	return nil
}

// Close closes the channel and the connection.
func (s *RabbitMQSink) Close() error {
	err := s.channel.Close()
	if s.conn != nil {
		if connErr := s.conn.Close(); err == nil {
			err = connErr
		}
	}
	return err
}
