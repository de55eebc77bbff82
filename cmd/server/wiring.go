package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	depositAdapters "rentwise/internal/deposit/adapters"
	depositHandler "rentwise/internal/deposit/handler"
	depositMetrics "rentwise/internal/deposit/metrics"
	depositService "rentwise/internal/deposit/service"
	depositStore "rentwise/internal/deposit/store"
	jwttoken "rentwise/internal/jwt_token"
	"rentwise/internal/platform/config"
	"rentwise/internal/platform/kafka"
	"rentwise/internal/platform/postgres"
	redisclient "rentwise/internal/platform/redis"
	ratelimitmetrics "rentwise/internal/ratelimit/metrics"
	ratelimit "rentwise/internal/ratelimit/middleware"
	ratelimitmodels "rentwise/internal/ratelimit/models"
	"rentwise/internal/ratelimit/store/bucket"
	tenancyHandler "rentwise/internal/tenancy/handler"
	tenancyMetrics "rentwise/internal/tenancy/metrics"
	tenancyService "rentwise/internal/tenancy/service"
	tenancyStore "rentwise/internal/tenancy/store"
	httptransport "rentwise/internal/transport/http"
	"rentwise/internal/verification/analysis"
	verificationHandler "rentwise/internal/verification/handler"
	verificationMetrics "rentwise/internal/verification/metrics"
	verificationService "rentwise/internal/verification/service"
	verificationStore "rentwise/internal/verification/store"
	"rentwise/migrations"
	"rentwise/pkg/platform/audit"
	"rentwise/pkg/platform/audit/outbox"
	"rentwise/pkg/platform/audit/publishers/compliance"
	auditmemory "rentwise/pkg/platform/audit/store/memory"
	auditpostgres "rentwise/pkg/platform/audit/store/postgres"
	"rentwise/pkg/platform/circuit"
	authmw "rentwise/pkg/platform/middleware/auth"
	"rentwise/pkg/platform/tx"
)

// infra holds the optional backing services. Nil fields are disabled.
type infra struct {
	db       *sql.DB
	redis    *redisclient.Client
	producer *kafka.Producer
}

func buildInfra(ctx context.Context, cfg *config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{}

	if !cfg.InMemory() {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		in.db = db
		if err := postgres.ApplyMigrations(ctx, db, migrations.FS); err != nil {
			in.Close(log)
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		in.Close(log)
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	in.redis = rdb

	if cfg.Kafka.Enabled() {
		if in.db == nil {
			in.Close(log)
			return nil, errors.New("KAFKA_BROKERS requires DATABASE_URL for the audit outbox")
		}
		producer, err := kafka.NewProducer(ctx, cfg.Kafka)
		if err != nil {
			in.Close(log)
			return nil, fmt.Errorf("create kafka producer: %w", err)
		}
		in.producer = producer
		if err := producer.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			in.Close(log)
			return nil, fmt.Errorf("ensure audit topic: %w", err)
		}
	}
	return in, nil
}

func (in *infra) HealthChecks() map[string]httptransport.HealthCheck {
	checks := map[string]httptransport.HealthCheck{}
	if in.db != nil {
		checks["postgres"] = in.db.PingContext
	}
	if in.redis != nil {
		checks["redis"] = in.redis.Health
	}
	if in.producer != nil {
		checks["kafka"] = in.producer.Health
	}
	return checks
}

func (in *infra) Close(log *slog.Logger) {
	if in.producer != nil {
		in.producer.Close()
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			log.Warn("closing redis failed", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			log.Warn("closing postgres failed", "error", err)
		}
	}
}

type modules struct {
	validator  authmw.JWTValidator
	writeLimit func(http.Handler) http.Handler
	routes     []httptransport.RouteRegistrar
}

func buildModules(cfg *config.Config, log *slog.Logger, in *infra, reg prometheus.Registerer) modules {
	var (
		runner     tx.Runner
		auditStore audit.Store
		tenancies  tenancyService.Store
		deposits   depositService.Store
		attempts   verificationService.Store
	)
	if in.db != nil {
		runner = tx.NewPostgresRunner(in.db, cfg.Database.TxTimeout)
		auditStore = auditpostgres.New(in.db)
		tenancies = tenancyStore.NewPostgres(in.db)
		deposits = depositStore.NewPostgres(in.db)
		attempts = verificationStore.NewPostgres(in.db)
	} else {
		runner = tx.NewLockRunner(cfg.Database.TxTimeout)
		auditStore = auditmemory.NewInMemoryStore()
		tenancies = tenancyStore.NewInMemory()
		deposits = depositStore.NewInMemory()
		attempts = verificationStore.NewInMemory()
	}

	auditPublisher := compliance.New(auditStore,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliance.NewMetrics(reg)),
	)

	tenancySvc := tenancyService.New(tenancies,
		tenancyService.WithLogger(log),
		tenancyService.WithAuditPublisher(auditPublisher),
		tenancyService.WithMetrics(tenancyMetrics.NewWithRegisterer(reg)),
		tenancyService.WithTx(runner),
		tenancyService.WithInviteTTL(cfg.Tenancy.InviteTTL),
	)

	depositSvc := depositService.New(deposits, depositAdapters.NewTenancyAdapter(tenancySvc),
		depositService.WithLogger(log),
		depositService.WithAuditPublisher(auditPublisher),
		depositService.WithMetrics(depositMetrics.NewWithRegisterer(reg)),
		depositService.WithTx(runner),
	)

	verificationSvc := verificationService.New(attempts, buildAnalyzer(cfg, log, in, reg),
		verificationService.WithLogger(log),
		verificationService.WithAuditPublisher(auditPublisher),
		verificationService.WithMetrics(verificationMetrics.NewWithRegisterer(reg)),
		verificationService.WithTx(runner),
	)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	limiter := buildRateLimiter(cfg, log, in, reg)

	return modules{
		validator:  jwttoken.NewJWTServiceAdapter(jwtService),
		writeLimit: limiter.Writes(ratelimitmodels.ClassWrite),
		routes: []httptransport.RouteRegistrar{
			tenancyHandler.New(tenancySvc, log),
			depositHandler.New(depositSvc, log),
			verificationHandler.New(verificationSvc, log,
				verificationHandler.WithSubmitLimit(limiter.ForUser(ratelimitmodels.ClassVerificationSubmit)),
			),
		},
	}
}

func buildRateLimiter(cfg *config.Config, log *slog.Logger, in *infra, reg prometheus.Registerer) *ratelimit.Middleware {
	var store ratelimit.Store = bucket.NewInMemory()
	if in.redis != nil {
		store = bucket.NewRedis(in.redis.Client)
	}
	return ratelimit.New(store, log,
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
		ratelimit.WithMetrics(ratelimitmetrics.NewWithRegisterer(reg)),
		ratelimit.WithLimit(ratelimitmodels.ClassVerificationSubmit, ratelimitmodels.Limit{
			Requests: cfg.RateLimit.VerificationRequests,
			Window:   cfg.RateLimit.VerificationWindow,
		}),
		ratelimit.WithLimit(ratelimitmodels.ClassWrite, ratelimitmodels.Limit{
			Requests: cfg.RateLimit.WriteRequests,
			Window:   cfg.RateLimit.WriteWindow,
		}),
	)
}

// buildAnalyzer layers provider -> circuit breaker -> cache. Cache hits
// never touch the breaker.
func buildAnalyzer(cfg *config.Config, log *slog.Logger, in *infra, reg prometheus.Registerer) analysis.Analyzer {
	var provider analysis.Analyzer
	switch cfg.Vision.Provider {
	case "openai":
		provider = analysis.NewOpenAIAnalyzer(analysis.OpenAIConfig{
			APIKey:  cfg.Vision.OpenAIAPIKey,
			BaseURL: cfg.Vision.OpenAIBaseURL,
			Model:   cfg.Vision.Model,
			Timeout: cfg.Vision.Timeout,
		})
	default:
		provider = analysis.NewStaticAnalyzer()
	}

	breaker := circuit.New("vision-"+cfg.Vision.Provider,
		circuit.WithFailureThreshold(cfg.Vision.FailureThreshold),
		circuit.WithCooldown(cfg.Vision.BreakerCooldown),
	)
	guarded := analysis.NewGuarded(provider, breaker, log)

	if in.redis == nil {
		return guarded
	}
	return analysis.NewRedisCache(guarded, in.redis.Client,
		analysis.WithCacheTTL(cfg.Redis.AnalysisTTL),
		analysis.WithCacheLogger(log),
		analysis.WithCacheMetrics(reg),
	)
}

// startOutboxRelay runs the relay when both Postgres and Kafka are
// configured. The returned channel closes once the relay has stopped.
func startOutboxRelay(ctx context.Context, cfg *config.Config, log *slog.Logger, in *infra, reg prometheus.Registerer) <-chan struct{} {
	done := make(chan struct{})
	if in.db == nil || in.producer == nil {
		close(done)
		return done
	}

	relay := outbox.NewRelay(in.db, kafka.NewOutboxPublisher(in.producer),
		outbox.WithBatchSize(cfg.Kafka.BatchSize),
		outbox.WithInterval(cfg.Kafka.PollInterval),
		outbox.WithLogger(log),
		outbox.WithMetrics(outbox.NewMetrics(reg)),
	)
	go func() {
		defer close(done)
		log.Info("outbox relay started", "topic", cfg.Kafka.AuditTopic)
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("outbox relay stopped", "error", err)
		}
	}()
	return done
}
