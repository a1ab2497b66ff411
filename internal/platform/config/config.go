package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "municipal/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	AllowedOrigins []string
	SeedDemoData   bool
	RequestTimeout time.Duration
	StoreTimeout   time.Duration
	LogFormat      string
	LogLevel       string

	Database     DatabaseConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	Gateway      GatewayConfig
	Retry        RetryConfig
	Notification NotificationConfig
}

// DatabaseConfig selects the Postgres backend. An empty URL keeps every store in memory.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig selects the Redis backend for the retry queue and reminders.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig selects the Kafka notification publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// GatewayConfig tunes the simulated payment gateway.
type GatewayConfig struct {
	SuccessRate float64
	Latency     time.Duration
}

// RetryConfig controls how declined payments are rescheduled.
type RetryConfig struct {
	Delay        time.Duration
	MaxAttempts  int
	PollInterval time.Duration
	BatchSize    int
}

// NotificationConfig controls reminder scheduling.
type NotificationConfig struct {
	ReminderKey string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:           getenv("MUNICIPAL_ADDR", ":8080"),
		AllowedOrigins: platformstrings.SplitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		SeedDemoData:   getenv("SEED_DEMO_DATA", "false") == "true",
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),
		StoreTimeout:   getDuration("STORE_TIMEOUT", 5*time.Second),
		LogFormat:      getenv("LOG_FORMAT", "json"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: getInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: platformstrings.SplitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getenv("NOTIFICATION_TOPIC", "citizen-notifications"),
		},
		Gateway: GatewayConfig{
			SuccessRate: getFloat("GATEWAY_SUCCESS_RATE", 0.9),
			Latency:     getDuration("GATEWAY_LATENCY", 0),
		},
		Retry: RetryConfig{
			Delay:        getDuration("RETRY_DELAY", 30*time.Second),
			MaxAttempts:  getInt("RETRY_MAX_ATTEMPTS", 3),
			PollInterval: getDuration("RETRY_POLL_INTERVAL", 5*time.Second),
			BatchSize:    getInt("RETRY_BATCH_SIZE", 20),
		},
		Notification: NotificationConfig{
			ReminderKey: getenv("REMINDER_KEY", "municipal:reminders"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
