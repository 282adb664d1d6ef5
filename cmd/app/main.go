package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campuseats/cmd"
	httpin "campuseats/internal/adapters/in/http"
	"campuseats/internal/adapters/out/notify"
	"campuseats/internal/adapters/out/payment"
	"campuseats/internal/adapters/out/postgres"
	"campuseats/internal/adapters/out/realtime"
	"campuseats/internal/core/ports"
	"campuseats/internal/jobs"
	"campuseats/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config, err := cmd.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := gorm.Open(postgresdriver.Open(config.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
	defer redisClient.Close()
	hub := realtime.NewRedisHub(redisClient, logger)

	sink, err := newNotificationSink(config, logger)
	if err != nil {
		log.Fatalf("Failed to create notification sink: %v", err)
	}
	defer sink.Close()

	verifier := payment.NewGatewayClient(config.PaymentGatewayURL, config.PaymentGatewaySecret, nil)

	app, err := cmd.NewCompositionRoot(config, gormDB, verifier, sink, hub, logger)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	jobManager := jobs.NewJobManager(app.CreatePublishOutboxEventsCommandHandler(), config.OutboxBatchSize, logger)
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(ctx, app, hub, gormDB, config, logger)
}

func newNotificationSink(config cmd.Config, logger *slog.Logger) (ports.NotificationSink, error) {
	switch config.NotifyBroker {
	case cmd.BrokerKafka:
		return notify.NewKafkaSink(config.KafkaTopic, config.KafkaBrokers...), nil
	case cmd.BrokerRabbitMQ:
		return notify.DialRabbitMQ(config.RabbitMQURL, logger)
	}
	return nil, fmt.Errorf("unknown notification broker %q", config.NotifyBroker)
}

func startWebServer(
	ctx context.Context,
	app cmd.CompositionRoot,
	hub *realtime.RedisHub,
	gormDB *gorm.DB,
	config cmd.Config,
	logger *slog.Logger,
) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(metrics.Middleware())

	server := httpin.NewServer(httpin.Handlers{
		Materialize: app.CreateMaterializeFromPaymentCommandHandler(),
		Settle:      app.CreateSettlePaymentCommandHandler(),
		Transition:  app.CreateTransitionOrderCommandHandler(),
		Assign:      app.CreateAssignRiderCommandHandler(),
		Unassign:    app.CreateUnassignRiderCommandHandler(),
		Pool:        app.CreateListAssignablePoolQueryHandler(),
		Riders:      app.CreateListAvailableRidersQueryHandler(),
		Orders:      app.CreateGetOrderQueryHandler(),
	}, hub, httpin.Options{
		JWTSecret:     []byte(config.JWTSecret),
		WebhookSecret: []byte(config.WebhookSecret),
		PingInterval:  config.StreamPingInterval,
		HealthCheck: func(ctx context.Context) error {
			sqlDB, err := gormDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}, logger)
	if err := server.Register(e); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}
	e.Server.RegisterOnShutdown(server.Shutdown)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", config.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
}
