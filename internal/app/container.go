// Package app assembles the service graph shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/patient-flow/internal/archive"
	"github.com/spec-kit/patient-flow/internal/auth"
	"github.com/spec-kit/patient-flow/internal/config"
	"github.com/spec-kit/patient-flow/internal/events"
	"github.com/spec-kit/patient-flow/internal/messaging"
	"github.com/spec-kit/patient-flow/internal/observability"
	"github.com/spec-kit/patient-flow/internal/persistence"
	"github.com/spec-kit/patient-flow/internal/repository"
	"github.com/spec-kit/patient-flow/internal/repository/memory"
	"github.com/spec-kit/patient-flow/internal/service"
	"github.com/spec-kit/patient-flow/pkg/util/clock"
	"github.com/spec-kit/patient-flow/pkg/util/randutil"
)

// Container holds every long-lived dependency.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Postgres   *persistence.Postgres
	Redis      *persistence.Redis
	AWS        *persistence.AWSClients
	Store      *repository.Store
	Dispatcher events.Dispatcher
	Publishers []messaging.Publisher
	Tokens     *auth.TokenManager

	Patients      *service.PatientService
	Assignments   *service.AssignmentService
	Dashboard     *service.MetricsService
	Predictions   *service.PredictionService
	Simulation    *service.SimulationService
	Advisories    *service.AdvisoryService
	Snapshots     *service.SnapshotService
	Auth          *service.AuthService
	Notifications *service.NotificationService
}

// Build connects to the configured backends and wires the services.
// Optional backends (Redis, brokers, AWS) that fail to connect are logged and skipped.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    observability.NewMetrics(),
		Dispatcher: events.NewInMemoryDispatcher(),
		Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c.Postgres = pg
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if _, err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		c.Store = repository.NewPostgresStore(pg.Pool)
	} else {
		c.Store = memory.NewStore()
	}

	c.Redis, err = persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		pg.Close()
		return nil, fmt.Errorf("configure redis: %w", err)
	}
	var locker service.Locker = service.NewKeyedMutex()
	if c.Redis.Enabled() {
		locker = service.NewRedisLocker(c.Redis.Client, cfg.Redis.LockTTL())
	}

	c.Publishers = connectPublishers(cfg.Messaging, logger)

	var archiver service.SnapshotArchiver
	if cfg.Archive.S3Bucket != "" || cfg.Intake.SQSQueue != "" {
		clients, err := persistence.NewAWSClients(ctx)
		if err != nil {
			logger.Warn("aws clients unavailable", zap.Error(err))
		} else {
			c.AWS = clients
			if cfg.Archive.S3Bucket != "" {
				archiver = archive.NewS3Archiver(clients.S3, cfg.Archive.S3Bucket, cfg.Archive.S3Prefix)
			}
		}
	}

	clk := clock.System{}
	rnd := randutil.New(cfg.Simulation.Seed)

	c.Patients = service.NewPatientService(service.PatientDependencies{
		Store:      c.Store,
		Locker:     locker,
		Clock:      clk,
		Dispatcher: c.Dispatcher,
		Metrics:    c.Metrics,
		Logger:     logger,
	})
	c.Assignments = service.NewAssignmentService(c.Patients, c.Store.Staff, logger)
	c.Dashboard = service.NewMetricsService(c.Store, clk)
	c.Predictions = service.NewPredictionService(service.PredictionDependencies{
		Store:      c.Store,
		Rules:      rulesFor(cfg.Simulation),
		Rand:       rnd,
		Clock:      clk,
		Dispatcher: c.Dispatcher,
		Metrics:    c.Metrics,
		Logger:     logger,
	})
	c.Simulation = service.NewSimulationService(service.SimulationDependencies{
		Store:      c.Store,
		Patients:   c.Patients,
		Config:     cfg.Simulation,
		Rand:       rnd,
		Clock:      clk,
		Dispatcher: c.Dispatcher,
		Metrics:    c.Metrics,
		Logger:     logger,
	})
	c.Advisories = service.NewAdvisoryService(c.Store, locker, clk, c.Dispatcher, logger)
	c.Snapshots = service.NewSnapshotService(service.SnapshotDependencies{
		Store:      c.Store,
		Archiver:   archiver,
		Clock:      clk,
		Dispatcher: c.Dispatcher,
		Metrics:    c.Metrics,
		Logger:     logger,
	})
	if cfg.Auth.OperatorPasswordHash != "" {
		if _, err := auth.CheckHash(cfg.Auth.OperatorPasswordHash); err != nil {
			logger.Warn("operator login disabled", zap.Error(err))
		}
	}
	c.Auth = service.NewAuthService(cfg.Auth, c.Tokens)
	c.Notifications = service.NewNotificationService(c.Dispatcher, c.Publishers, c.Metrics, logger)

	return c, nil
}

// Close releases connections in reverse order of acquisition.
func (c *Container) Close() {
	for _, p := range c.Publishers {
		if err := p.Close(); err != nil {
			c.Logger.Warn("close publisher", zap.String("broker", p.Name()), zap.Error(err))
		}
	}
	c.Redis.Close()
	c.Postgres.Close()
}

func rulesFor(cfg config.SimulationConfig) service.RuleTable {
	rules := service.DefaultRules()
	if cfg.AlertCount >= 0 {
		rules.AlertCount = cfg.AlertCount
	}
	return rules
}

func connectPublishers(cfg config.MessagingConfig, logger *zap.Logger) []messaging.Publisher {
	var publishers []messaging.Publisher
	if cfg.RabbitMQURL != "" {
		rmq, err := messaging.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue, logger)
		if err != nil {
			logger.Warn("rabbitmq unavailable; events will not be forwarded there", zap.Error(err))
		} else {
			publishers = append(publishers, rmq)
		}
	}
	if len(cfg.KafkaBrokers) > 0 {
		publishers = append(publishers, messaging.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic))
	}
	return publishers
}
