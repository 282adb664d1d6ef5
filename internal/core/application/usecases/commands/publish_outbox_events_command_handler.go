package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/ports"
	"campuseats/internal/pkg/clock"
)

// Real-time channel names. Identity channels are suffixed with ":<id>".
const (
	ChannelAdmin      = "admin"
	ChannelRiders     = "riders"
	channelStudent    = "student"
	channelRestaurant = "restaurant"
	channelRider      = "rider"
)

// PublishOutboxEventsResult counts the outcome of one relay run.
type PublishOutboxEventsResult struct {
	Published int
	Failed    int
}

// PublishOutboxEventsCommandHandler drains the outbox.
//
// Every event goes to the notification broker; the row is marked processed
// only after the broker accepted it, so delivery is at-least-once. On its
// first attempt an event is also fanned out to the real-time hub. Real-time
// errors are logged and never hold back the broker publish.
type PublishOutboxEventsCommandHandler struct {
	uowFactory OutboxUoWFactory
	sink       ports.NotificationSink
	realtime   ports.RealtimePublisher
	clock      clock.Clock
	logger     *slog.Logger
}

// NewPublishOutboxEventsCommandHandler creates the relay handler.
func NewPublishOutboxEventsCommandHandler(
	uowFactory OutboxUoWFactory,
	sink ports.NotificationSink,
	realtime ports.RealtimePublisher,
	clk clock.Clock,
	logger *slog.Logger,
) PublishOutboxEventsCommandHandler {
	return PublishOutboxEventsCommandHandler{
		uowFactory: uowFactory,
		sink:       sink,
		realtime:   realtime,
		clock:      clk,
		logger:     logger.With("component", "outbox_relay"),
	}
}

// Handle relays one batch inside a transaction that keeps the rows locked
// against concurrent relays.
func (h PublishOutboxEventsCommandHandler) Handle(
	ctx context.Context,
	cmd PublishOutboxEventsCommand,
) (PublishOutboxEventsResult, error) {
	if err := cmd.Validate(); err != nil {
		return PublishOutboxEventsResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return PublishOutboxEventsResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	outbox := uow.OutboxRepository()

	messages, err := outbox.FetchUnprocessed(ctx, cmd.BatchSize())
	if err != nil {
		return PublishOutboxEventsResult{}, err
	}
	if len(messages) == 0 {
		return PublishOutboxEventsResult{}, nil
	}

	var result PublishOutboxEventsResult
	for _, msg := range messages {
		n := ports.Notification{
			EventID:    msg.ID,
			EventType:  msg.EventType,
			OrderID:    msg.OrderID,
			OccurredAt: msg.OccurredAt,
			Payload:    msg.Payload,
		}

		if msg.Attempts == 0 {
			h.publishRealtime(ctx, msg, n)
		}

		if publishErr := h.sink.Publish(ctx, n); publishErr != nil {
			h.logger.WarnContext(ctx, "Failed to publish notification",
				"event_id", msg.ID.String(), "event_type", string(msg.EventType),
				"attempts", msg.Attempts+1, "error", publishErr)
			if msg.Attempts+1 >= ports.MaxOutboxAttempts {
				h.logger.ErrorContext(ctx, "Parking notification after repeated failures",
					"event_id", msg.ID.String(), "order_id", msg.OrderID.String(), "attempts", msg.Attempts+1)
			}
			if err = outbox.MarkFailed(ctx, msg.ID, publishErr); err != nil {
				return PublishOutboxEventsResult{}, err
			}
			result.Failed++
			continue
		}

		if err = outbox.MarkProcessed(ctx, msg.ID, h.clock.Now()); err != nil {
			return PublishOutboxEventsResult{}, err
		}
		result.Published++
	}

	if err = uow.Commit(ctx); err != nil {
		return PublishOutboxEventsResult{}, err
	}

	return result, nil
}

func (h PublishOutboxEventsCommandHandler) publishRealtime(ctx context.Context, msg ports.OutboxMessage, n ports.Notification) {
	if h.realtime == nil {
		return
	}
	channels, err := RealtimeChannels(msg)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to route real-time event", "event_id", msg.ID.String(), "error", err)
		return
	}
	if err = h.realtime.Publish(ctx, channels, n); err != nil {
		h.logger.WarnContext(ctx, "Failed to publish real-time event", "event_id", msg.ID.String(), "error", err)
	}
}

// routingEnvelope picks the routing fields out of any event payload.
type routingEnvelope struct {
	order.Parties
	To     *order.Status `json:"to"`
	Status *order.Status `json:"status"`
}

// RealtimeChannels lists the channels an event is fanned out to: the student,
// the restaurant, the rider when there is one, the admin channel and, for
// changes to the pull pool, the shared riders channel.
func RealtimeChannels(msg ports.OutboxMessage) ([]string, error) {
	var env routingEnvelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", msg.EventType, err)
	}

	channels := make([]string, 0, 5)
	if !env.StudentID.IsZero() {
		channels = append(channels, channelStudent+":"+env.StudentID.String())
	}
	if !env.RestaurantID.IsZero() {
		channels = append(channels, channelRestaurant+":"+env.RestaurantID.String())
	}
	if env.RiderID != nil && !env.RiderID.IsZero() {
		channels = append(channels, channelRider+":"+env.RiderID.String())
	}
	channels = append(channels, ChannelAdmin)

	if changesPool(msg.EventType, env) {
		channels = append(channels, ChannelRiders)
	}

	return channels, nil
}

func changesPool(eventType order.EventType, env routingEnvelope) bool {
	switch eventType {
	case order.EventStatusChanged:
		if env.To == nil {
			return false
		}
		// Entering a pool status without rider, or leaving the pool by
		// cancellation or by moving on to preparation.
		return env.RiderID == nil && (env.To.IsPoolVisible() || *env.To == order.Cancelled || *env.To == order.Preparing)
	case order.EventRiderAssigned, order.EventRiderUnassigned:
		return env.Status != nil && env.Status.IsPoolVisible()
	case order.EventNewOrder:
	}
	return false
}

// ChannelFor builds an identity channel name such as "rider:<id>".
func ChannelFor(role order.Role, id string) string {
	switch role {
	case order.RoleAdmin:
		return ChannelAdmin
	case order.RoleStudent:
		return channelStudent + ":" + id
	case order.RoleRestaurant:
		return channelRestaurant + ":" + id
	case order.RoleRider:
		return channelRider + ":" + id
	case order.RoleUnknown:
	}
	return ""
}
