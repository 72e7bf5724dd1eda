package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App        AppConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Messaging  MessagingConfig
	Intake     IntakeConfig
	Archive    ArchiveConfig
	Simulation SimulationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values. An empty DSN selects the in-memory store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
	ConnectRetries int
	AppName        string
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
// Addr may also be a redis:// or rediss:// URL.
type RedisConfig struct {
	Addr               string
	Password           string
	DB                 int
	LockTTLSeconds     int
	PoolSize           int
	DialTimeoutSeconds int
	ClientName         string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Format string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	Enabled               bool
	JWTSecret             string
	AccessTokenTTLMinutes int
	OperatorUsername      string
	OperatorPasswordHash  string
	OperatorRole          string
}

// MessagingConfig configures outbound event fan-out.
type MessagingConfig struct {
	RabbitMQURL   string
	RabbitMQQueue string
	KafkaBrokers  []string
	KafkaTopic    string
}

// IntakeConfig configures the SQS admission feed.
type IntakeConfig struct {
	SQSQueue        string
	WaitTimeSeconds int32
	MaxMessages     int32
}

// ArchiveConfig configures S3 archiving of department snapshots.
type ArchiveConfig struct {
	S3Bucket string
	S3Prefix string
}

// SimulationConfig controls synthetic data volume and the background simulator.
type SimulationConfig struct {
	Seed          int64
	PatientsMin   int
	PatientsMax   int
	StaffCount    int
	ResourceCount int
	AlertCount    int
	TickSeconds   int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	seed, err := strconv.ParseInt(getEnv("SIMULATION_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SIMULATION_SEED: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "patient-flow-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			ConnectRetries: getEnvAsInt("POSTGRES_CONNECT_RETRIES", 3),
		},
		Redis: RedisConfig{
			Addr:               os.Getenv("REDIS_ADDR"),
			Password:           os.Getenv("REDIS_PASSWORD"),
			DB:                 redisDB,
			LockTTLSeconds:     getEnvAsInt("REDIS_LOCK_TTL_SECONDS", 5),
			PoolSize:           getEnvAsInt("REDIS_POOL_SIZE", 10),
			DialTimeoutSeconds: getEnvAsInt("REDIS_DIAL_TIMEOUT_SECONDS", 2),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			Enabled:               getEnvAsBool("AUTH_ENABLED", true),
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			OperatorUsername:      getEnv("AUTH_OPERATOR_USERNAME", "admin"),
			OperatorPasswordHash:  os.Getenv("AUTH_OPERATOR_PASSWORD_HASH"),
			OperatorRole:          getEnv("AUTH_OPERATOR_ROLE", "ADMIN"),
		},
		Messaging: MessagingConfig{
			RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
			RabbitMQQueue: getEnv("RABBITMQ_QUEUE", "patient-flow-events"),
			KafkaBrokers:  getEnvAsList("KAFKA_BROKERS"),
			KafkaTopic:    getEnv("KAFKA_TOPIC", "patient-flow-events"),
		},
		Intake: IntakeConfig{
			SQSQueue:        os.Getenv("INTAKE_SQS_QUEUE"),
			WaitTimeSeconds: int32(getEnvAsInt("INTAKE_WAIT_SECONDS", 20)),
			MaxMessages:     int32(getEnvAsInt("INTAKE_MAX_MESSAGES", 10)),
		},
		Archive: ArchiveConfig{
			S3Bucket: os.Getenv("ARCHIVE_S3_BUCKET"),
			S3Prefix: getEnv("ARCHIVE_S3_PREFIX", "department-metrics"),
		},
		Simulation: SimulationConfig{
			Seed:          seed,
			PatientsMin:   getEnvAsInt("SIMULATION_PATIENTS_MIN", 25),
			PatientsMax:   getEnvAsInt("SIMULATION_PATIENTS_MAX", 40),
			StaffCount:    getEnvAsInt("SIMULATION_STAFF_COUNT", 20),
			ResourceCount: getEnvAsInt("SIMULATION_RESOURCE_COUNT", 15),
			AlertCount:    getEnvAsInt("SIMULATION_ALERT_COUNT", 5),
			TickSeconds:   getEnvAsInt("SIMULATION_TICK_SECONDS", 0),
		},
	}

	cfg.Postgres.AppName = cfg.App.Name
	cfg.Redis.ClientName = cfg.App.Name

	if cfg.Simulation.PatientsMax <= cfg.Simulation.PatientsMin {
		return nil, fmt.Errorf("SIMULATION_PATIENTS_MAX (%d) must exceed SIMULATION_PATIENTS_MIN (%d)",
			cfg.Simulation.PatientsMax, cfg.Simulation.PatientsMin)
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// LockTTL returns the per-patient lock lease.
func (r RedisConfig) LockTTL() time.Duration {
	if r.LockTTLSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(r.LockTTLSeconds) * time.Second
}

// TickInterval returns the background simulation interval; zero disables it.
func (s SimulationConfig) TickInterval() time.Duration {
	if s.TickSeconds <= 0 {
		return 0
	}
	return time.Duration(s.TickSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
