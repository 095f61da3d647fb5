// Package config builds runtime configuration from environment variables so
// main stays lean. Every setting has a development-safe default; production
// deployments override what they need.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// Postgres holds the database connection settings. An empty DSN means the
// service runs on in-memory stores.
type Postgres struct {
	DSN string
}

// Redis holds connection settings for the shared rate limit store. An empty
// URL means rate limit state stays process-local.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SMTP configures outbound mail delivery.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
	From     string
}

// Kafka configures the audit outbox relay. No brokers means audit events
// stay in the database outbox.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Admin configures the review API credentials and session signing.
type Admin struct {
	Username     string
	PasswordHash string
	SigningKey   string
	SessionTTL   time.Duration
}

// RateLimit toggles request throttling.
type RateLimit struct {
	Disabled bool
}

// Retention configures the data retention sweep.
type Retention struct {
	Days           int
	AutoDelete     bool
	DeletePDFs     bool
	DeletePayloads bool
	SweepInterval  time.Duration
}

// Config is the full runtime configuration.
type Config struct {
	Server    Server
	Postgres  Postgres
	Redis     Redis
	SMTP      SMTP
	Kafka     Kafka
	Admin     Admin
	RateLimit RateLimit
	Retention Retention
}

// FromEnv reads the configuration from the environment.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr: envString("WILLFORGE_ADDR", ":8080"),
		},
		Postgres: Postgres{
			DSN: os.Getenv("DATABASE_URL"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			UseTLS:   envBool("SMTP_USE_TLS", true),
			From:     envString("EMAIL_FROM_ADDRESS", "wills@example.com"),
		},
		Kafka: Kafka{
			Brokers: envList("KAFKA_BROKERS"),
			Topic:   envString("AUDIT_TOPIC", "willforge.audit"),
		},
		Admin: Admin{
			Username:     os.Getenv("ADMIN_USERNAME"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			SigningKey:   os.Getenv("SECRET_KEY"),
			SessionTTL:   envDuration("ADMIN_SESSION_TTL", time.Hour),
		},
		RateLimit: RateLimit{
			Disabled: envBool("RATE_LIMIT_DISABLED", false),
		},
		Retention: Retention{
			Days:           envInt("RETENTION_DAYS", 2555),
			AutoDelete:     envBool("RETENTION_AUTO_DELETE", false),
			DeletePDFs:     envBool("RETENTION_DELETE_PDFS", true),
			DeletePayloads: envBool("RETENTION_DELETE_PAYLOADS", false),
			SweepInterval:  envDuration("RETENTION_SWEEP_INTERVAL", 24*time.Hour),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return strings.EqualFold(v, "true") || v == "1"
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
