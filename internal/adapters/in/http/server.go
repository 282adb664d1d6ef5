package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"campuseats/internal/core/application/usecases/commands"
	"campuseats/internal/core/application/usecases/queries"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/core/ports"
	"campuseats/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
)

// DefaultPingInterval is how often an idle event stream gets a keep-alive.
const DefaultPingInterval = 15 * time.Second

// Use case handlers the server depends on.
type (
	MaterializeHandler interface {
		Handle(ctx context.Context, cmd commands.MaterializeFromPaymentCommand) (commands.MaterializationResult, error)
	}

	SettleHandler interface {
		Handle(ctx context.Context, cmd commands.SettlePaymentCommand) (commands.MaterializationResult, error)
	}

	TransitionHandler interface {
		Handle(ctx context.Context, cmd commands.TransitionOrderCommand) (commands.TransitionOrderResult, error)
	}

	AssignHandler interface {
		Handle(ctx context.Context, cmd commands.AssignRiderCommand) (commands.AssignRiderResult, error)
	}

	UnassignHandler interface {
		Handle(ctx context.Context, cmd commands.UnassignRiderCommand) (commands.UnassignRiderResult, error)
	}

	PoolHandler interface {
		Handle(ctx context.Context, query queries.ListAssignablePoolQuery) ([]queries.PoolOrderResponse, error)
	}

	RidersHandler interface {
		Handle(ctx context.Context, query queries.ListAvailableRidersQuery) ([]queries.AvailableRiderResponse, error)
	}

	OrderReader interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (order.Snapshot, error)
		HandleHistory(ctx context.Context, query queries.GetOrderHistoryQuery) ([]queries.HistoryEntryResponse, error)
	}
)

// Handlers groups the command and query handlers served over HTTP.
type Handlers struct {
	Materialize MaterializeHandler
	Settle      SettleHandler
	Transition  TransitionHandler
	Assign      AssignHandler
	Unassign    UnassignHandler
	Pool        PoolHandler
	Riders      RidersHandler
	Orders      OrderReader
}

// Options configure authentication and the event stream.
type Options struct {
	JWTSecret     []byte
	WebhookSecret []byte
	PingInterval  time.Duration
	// HealthCheck reports whether the store is reachable; nil means always healthy.
	HealthCheck func(ctx context.Context) error
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers   Handlers
	subscriber ports.RealtimeSubscriber
	opts       Options
	logger     *slog.Logger

	// closing is closed once the process stops serving; open event streams
	// end on it because http.Server.Shutdown does not cancel their requests.
	closing   chan struct{}
	closeOnce sync.Once
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	handlers Handlers,
	subscriber ports.RealtimeSubscriber,
	opts Options,
	logger *slog.Logger,
) *Server {
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	return &Server{
		handlers:   handlers,
		subscriber: subscriber,
		opts:       opts,
		logger:     logger.With("component", "http_server"),
		closing:    make(chan struct{}),
	}
}

// Shutdown ends the open event streams. Register it with
// http.Server.RegisterOnShutdown.
func (s *Server) Shutdown() {
	s.closeOnce.Do(func() { close(s.closing) })
}

// Register mounts the routes on e. Authenticated routes are validated
// against the embedded OpenAPI document, which is also served at
// /openapi.json.
func (s *Server) Register(e *echo.Echo) error {
	doc, err := LoadOpenAPI()
	if err != nil {
		return err
	}
	validator, err := RequestValidator(doc)
	if err != nil {
		return err
	}

	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/openapi.json", func(c echo.Context) error {
		return c.JSON(http.StatusOK, doc)
	})
	e.POST("/api/v1/payments/webhook", s.PaymentWebhook)

	api := e.Group("/api/v1", ActorMiddleware(s.opts.JWTSecret), validator)

	admin := RequireRoles(order.RoleAdmin)

	api.POST("/settlements", s.CreateSettlement, admin)
	api.POST("/payments/:reference/verify", s.VerifyPayment, RequireRoles(order.RoleStudent, order.RoleAdmin))

	api.GET("/orders/:id", s.GetOrder)
	api.GET("/orders/:id/history", s.GetOrderHistory)
	api.POST("/orders/:id/transitions", s.TransitionOrder)
	api.POST("/orders/:id/assignment", s.AssignRider, admin)
	api.DELETE("/orders/:id/assignment", s.UnassignRider, admin)
	api.POST("/orders/:id/accept", s.AcceptOrder, RequireRoles(order.RoleRider))

	api.GET("/pool", s.ListPool, RequireRoles(order.RoleRider, order.RoleAdmin))
	api.GET("/riders/available", s.ListAvailableRiders, admin)

	api.GET("/events/stream", s.StreamEvents)

	return nil
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	if s.opts.HealthCheck != nil {
		if err := s.opts.HealthCheck(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
