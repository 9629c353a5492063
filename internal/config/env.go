package config

import (
	"ExpenseChat/database/postgres"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSqlite   = "sqlite"
	BackendRedis    = "redis"
)

type Env struct {
	// HTTP server
	AppPort string
	AppEnv  string

	LogLevel string

	// Ledger persistence
	LedgerBackend string
	Postgres      postgres.Config
	SqlitePath    string

	// Pending capture store
	PendingStore  string
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Reporting
	ReportingCurrency string
	ReportingTimezone string

	// Dialogue
	MaxClarificationTurns int
	PendingTTL            time.Duration
	RequirePaymentMethod  bool
	RequireDate           bool

	// Ledger events
	AMQPURL      string
	AMQPExchange string

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() *Env {
	return &Env{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		LedgerBackend: getEnv("LEDGER_BACKEND", BackendMemory),
		Postgres: postgres.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		SqlitePath: getEnv("SQLITE_PATH", "./storage/ledger.db"),

		PendingStore:  getEnv("PENDING_STORE", BackendMemory),
		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		ReportingCurrency: strings.ToUpper(getEnv("REPORTING_CURRENCY", "MXN")),
		ReportingTimezone: getEnv("REPORTING_TIMEZONE", "America/Mexico_City"),

		MaxClarificationTurns: getEnvInt("CHAT_MAX_CLARIFICATION_TURNS", 3),
		PendingTTL:            getEnvDuration("CHAT_PENDING_TTL", 30*time.Minute),
		RequirePaymentMethod:  getEnvBool("CHAT_REQUIRE_PAYMENT_METHOD", false),
		RequireDate:           getEnvBool("CHAT_REQUIRE_DATE", false),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "expense-ledger"),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 100),
	}
}

// Validate reports every problem at once.
func (e *Env) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(e.AppPort); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", e.AppPort))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch e.LedgerBackend {
	case BackendMemory:
	case BackendPostgres:
		if e.Postgres.User == "" || e.Postgres.Name == "" {
			errors = append(errors, "DB_USER and DB_NAME are required when using the postgres backend")
		}
	case BackendSqlite:
		if e.SqlitePath == "" {
			errors = append(errors, "SQLITE_PATH cannot be empty when using the sqlite backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid ledger backend '%s': must be one of [memory postgres sqlite]", e.LedgerBackend))
	}

	switch e.PendingStore {
	case BackendMemory:
	case BackendRedis:
		if e.RedisAddress == "" {
			errors = append(errors, "REDIS_ADDRESS is required when using the redis pending store")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid pending store '%s': must be one of [memory redis]", e.PendingStore))
	}

	if len(e.ReportingCurrency) != 3 {
		errors = append(errors, fmt.Sprintf("invalid reporting currency '%s': must be a three letter ISO code", e.ReportingCurrency))
	}

	if _, err := time.LoadLocation(e.ReportingTimezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid reporting timezone '%s': %v", e.ReportingTimezone, err))
	}

	if e.MaxClarificationTurns < 1 {
		errors = append(errors, fmt.Sprintf("invalid clarification turn cap %d: must be at least 1", e.MaxClarificationTurns))
	}

	if e.PendingTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid pending ttl %v: must be at least 1 minute", e.PendingTTL))
	}

	if e.AMQPURL != "" {
		if parsedURL, err := url.Parse(e.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", e.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if e.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if e.RateLimitRPS <= 0 || e.RateLimitBurst < 1 {
		errors = append(errors, "rate limit must allow at least one request")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Location falls back to UTC for an unknown zone. Validate reports it.
func (e *Env) Location() *time.Location {
	loc, err := time.LoadLocation(e.ReportingTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
