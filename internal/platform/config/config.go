// Package config loads service configuration from environment variables.
// An empty DATABASE_URL selects the in-memory stores; an empty REDIS_URL
// disables the analysis cache; no KAFKA_BROKERS disables the outbox relay.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const devSigningKey = "dev-secret-key-change-in-production"

type Config struct {
	Environment string `env:"RENTWISE_ENV" envDefault:"development"`

	Server    Server
	Logging   Logging
	Database  Database
	Redis     RedisConfig
	Kafka     Kafka
	Vision    Vision
	Auth      Auth
	Tenancy   Tenancy
	RateLimit RateLimit
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `env:"RENTWISE_ADDR" envDefault:":8080"`
	ReadHeaderTimeout time.Duration `env:"RENTWISE_READ_HEADER_TIMEOUT" envDefault:"5s"`
	RequestTimeout    time.Duration `env:"RENTWISE_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout   time.Duration `env:"RENTWISE_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type Logging struct {
	Level         string `env:"LOG_LEVEL" envDefault:"info"`
	Format        string `env:"LOG_FORMAT" envDefault:"text"`
	IncludeCaller bool   `env:"LOG_INCLUDE_CALLER" envDefault:"false"`
}

type Database struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
	TxTimeout       time.Duration `env:"DATABASE_TX_TIMEOUT" envDefault:"5s"`
}

// RedisConfig configures the vision analysis cache.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	AnalysisTTL  time.Duration `env:"REDIS_ANALYSIS_TTL" envDefault:"10m"`
}

// Kafka configures the audit outbox relay.
type Kafka struct {
	Brokers           []string      `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic        string        `env:"KAFKA_AUDIT_TOPIC" envDefault:"rentwise.audit.compliance"`
	Partitions        int32         `env:"KAFKA_AUDIT_PARTITIONS" envDefault:"3"`
	ReplicationFactor int16         `env:"KAFKA_AUDIT_REPLICATION" envDefault:"1"`
	PollInterval      time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	BatchSize         int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
}

func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

// Vision selects and tunes the identity-document analysis provider.
type Vision struct {
	Provider         string        `env:"VISION_PROVIDER" envDefault:"static"`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL"`
	Model            string        `env:"VISION_MODEL" envDefault:"gpt-4o"`
	Timeout          time.Duration `env:"VISION_TIMEOUT" envDefault:"20s"`
	FailureThreshold int           `env:"VISION_BREAKER_FAILURES" envDefault:"5"`
	BreakerCooldown  time.Duration `env:"VISION_BREAKER_COOLDOWN" envDefault:"30s"`
}

type Auth struct {
	JWTSigningKey string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	Issuer        string        `env:"JWT_ISSUER" envDefault:"rentwise"`
	Audience      string        `env:"JWT_AUDIENCE" envDefault:"rentwise-api"`
	TokenTTL      time.Duration `env:"JWT_TOKEN_TTL" envDefault:"1h"`
}

type Tenancy struct {
	InviteTTL time.Duration `env:"TENANCY_INVITE_TTL" envDefault:"168h"`
}

// RateLimit sets per-user budgets. Windows are shared across replicas when
// Redis is configured.
type RateLimit struct {
	Disabled             bool          `env:"RATELIMIT_DISABLED" envDefault:"false"`
	VerificationRequests int           `env:"RATELIMIT_VERIFICATION_REQUESTS" envDefault:"10"`
	VerificationWindow   time.Duration `env:"RATELIMIT_VERIFICATION_WINDOW" envDefault:"1h"`
	WriteRequests        int           `env:"RATELIMIT_WRITE_REQUESTS" envDefault:"120"`
	WriteWindow          time.Duration `env:"RATELIMIT_WRITE_WINDOW" envDefault:"1m"`
}

// FromEnv builds the Config from environment variables so main stays lean.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Environment != "development" && c.Auth.JWTSigningKey == devSigningKey {
		return errors.New("JWT_SIGNING_KEY must be set outside development")
	}
	switch c.Vision.Provider {
	case "static":
	case "openai":
		if c.Vision.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required when VISION_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unknown VISION_PROVIDER %q", c.Vision.Provider)
	}
	if !c.RateLimit.Disabled && (c.RateLimit.VerificationRequests <= 0 || c.RateLimit.WriteRequests <= 0) {
		return errors.New("rate limit request budgets must be positive")
	}
	if c.Tenancy.InviteTTL <= 0 {
		return errors.New("TENANCY_INVITE_TTL must be positive")
	}
	return nil
}

// InMemory reports whether the service runs without Postgres.
func (c *Config) InMemory() bool { return c.Database.URL == "" }
