package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/patient-flow/internal/api/http"
	"github.com/spec-kit/patient-flow/internal/api/http/handlers"
	"github.com/spec-kit/patient-flow/internal/app"
	"github.com/spec-kit/patient-flow/internal/auth"
	"github.com/spec-kit/patient-flow/internal/config"
	"github.com/spec-kit/patient-flow/internal/observability"
	"github.com/spec-kit/patient-flow/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build service", zap.Error(err))
	}
	defer container.Close()

	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "dev-secret" && cfg.App.Env == "production" {
		logger.Warn("AUTH_JWT_SECRET is the development default")
	}

	fiberApp := fiber.New(fiber.Config{AppName: cfg.App.Name, Immutable: true})
	httptransport.RegisterMiddlewares(fiberApp, logger, container.Metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(fiberApp, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": container.Postgres,
			"redis":    container.Redis,
		}),
		Auth:           handlers.NewAuthHandler(container.Auth),
		Patients:       handlers.NewPatientsHandler(container.Patients, container.Assignments),
		Dashboard:      handlers.NewDashboardHandler(container.Dashboard, container.Snapshots),
		Simulation:     handlers.NewSimulationHandler(container.Simulation, container.Predictions),
		Advisory:       handlers.NewAdvisoryHandler(container.Advisories),
		AuthMiddleware: auth.NewAuthMiddleware(container.Tokens, cfg.Auth.Enabled),
		Metrics:        container.Metrics,
	})

	var workers sync.WaitGroup
	notifications := worker.StartNotificationWorker(container.Dispatcher, container.Notifications, 0, logger)
	workers.Add(1)
	go func() {
		defer workers.Done()
		notifications.Run(ctx)
	}()
	startBackgroundWorkers(ctx, &workers, container, logger)

	go func() {
		if err := fiberApp.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = fiberApp.Shutdown()
	workers.Wait()
}

func startBackgroundWorkers(ctx context.Context, wg *sync.WaitGroup, c *app.Container, logger *zap.Logger) {
	if interval := c.Config.Simulation.TickInterval(); interval > 0 {
		sim := worker.NewSimulationWorker(c.Simulation, c.Snapshots, interval, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sim.Run(ctx)
		}()
	}

	if c.Config.Intake.SQSQueue != "" && c.AWS != nil {
		queueURL, err := c.AWS.QueueURL(ctx, c.Config.Intake.SQSQueue)
		if err != nil {
			logger.Warn("intake queue unavailable", zap.Error(err))
			return
		}
		intake := worker.NewIntakeWorker(c.AWS.SQS, queueURL, c.Patients,
			c.Config.Intake.WaitTimeSeconds, c.Config.Intake.MaxMessages, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			intake.Run(ctx)
		}()
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
