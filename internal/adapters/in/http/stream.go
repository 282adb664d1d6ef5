package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"campuseats/internal/core/application/usecases/commands"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
)

const eventPing = "ping"

// StreamEvents handles GET /api/v1/events/stream as server-sent events. The
// actor receives the events of its own channel; riders also get pool changes.
// Idle streams get a ping so dead clients are noticed. Events missed while
// disconnected are recovered with GET /orders/:id.
func (s *Server) StreamEvents(c echo.Context) error {
	actor, _ := actorFrom(c)
	ctx := c.Request().Context()

	sub, err := s.subscriber.Subscribe(ctx, streamChannels(actor)...)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to open event stream", "role", actor.Role.String(), "error", err)
		return writeError(c, http.StatusServiceUnavailable, "event stream unavailable")
	}
	defer sub.Close()

	metrics.StreamOpened()
	defer metrics.StreamClosed()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err = writePing(w); err != nil {
		return nil
	}

	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.closing:
			return nil
		case msg, ok := <-sub.Messages():
			if !ok {
				return nil
			}
			if err = writeEvent(w, msg); err != nil {
				return nil
			}
		case <-ticker.C:
			if err = writePing(w); err != nil {
				return nil
			}
		}
	}
}

func streamChannels(actor order.Actor) []string {
	channels := []string{commands.ChannelFor(actor.Role, actor.ID.String())}
	if actor.Role == order.RoleRider {
		channels = append(channels, commands.ChannelRiders)
	}
	return channels
}

func writeEvent(w *echo.Response, msg []byte) error {
	var head struct {
		EventID   string `json:"eventId"`
		EventType string `json:"eventType"`
	}
	if err := json.Unmarshal(msg, &head); err != nil {
		return nil
	}

	if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", head.EventID, head.EventType, msg); err != nil {
		return err
	}
	w.Flush()
	return nil
}

func writePing(w *echo.Response) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: {\"at\":%q}\n\n", eventPing, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	w.Flush()
	return nil
}
