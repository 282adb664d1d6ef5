// Package realtime fans order notifications out to connected clients through
// Redis pub/sub. Every service instance publishes to and subscribes from the
// same Redis, so a client receives events no matter which instance relayed
// them.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"campuseats/internal/adapters/out/notify"
	"campuseats/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// channelPrefix keeps the hub's channels apart from other Redis users.
const channelPrefix = "campuseats:"

// subscriptionBuffer is the number of messages held for a slow client before
// further messages for it are dropped.
const subscriptionBuffer = 64

// RedisHub implements ports.RealtimePublisher and ports.RealtimeSubscriber.
type RedisHub struct {
	client *redis.Client
	logger *slog.Logger
}

var (
	_ ports.RealtimePublisher  = (*RedisHub)(nil)
	_ ports.RealtimeSubscriber = (*RedisHub)(nil)
)

func NewRedisHub(client *redis.Client, logger *slog.Logger) *RedisHub {
	return &RedisHub{
		client: client,
		logger: logger.With("component", "realtime_hub"),
	}
}

// Publish sends the encoded notification to every channel in one pipeline.
func (h *RedisHub) Publish(ctx context.Context, channels []string, n ports.Notification) error {
	if len(channels) == 0 {
		return nil
	}

	body, err := notify.Encode(n)
	if err != nil {
		return err
	}

	_, err = h.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, channel := range channels {
			pipe.Publish(ctx, channelPrefix+channel, body)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

// Subscribe listens on channels until the subscription is closed or ctx ends.
func (h *RedisHub) Subscribe(ctx context.Context, channels ...string) (ports.Subscription, error) {
	if len(channels) == 0 {
		return nil, errors.New("redis subscribe: no channels")
	}

	names := make([]string, len(channels))
	for i, channel := range channels {
		names[i] = channelPrefix + channel
	}

	pubsub := h.client.Subscribe(ctx, names...)
	// Receive waits for the subscription confirmation, so no message published
	// after Subscribe returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe failed: %w", err)
	}

	sub := &subscription{
		pubsub:   pubsub,
		messages: make(chan []byte, subscriptionBuffer),
		done:     make(chan struct{}),
	}
	go sub.forward(ctx, h.logger)
	return sub, nil
}

type subscription struct {
	pubsub    *redis.PubSub
	messages  chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (s *subscription) Messages() <-chan []byte {
	return s.messages
}

func (s *subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}

func (s *subscription) forward(ctx context.Context, logger *slog.Logger) {
	defer close(s.messages)

	in := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = s.Close()
			return
		case <-s.done:
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			select {
			case s.messages <- []byte(msg.Payload):
			default:
				logger.Warn("Dropping real-time message for slow subscriber", "channel", msg.Channel)
			}
		}
	}
}
