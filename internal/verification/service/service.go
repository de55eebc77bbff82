// Package service records identity verification attempts. The two image
// analyses run concurrently; the outcome is decided by the pure decision
// package and persisted exactly once together with its audit event.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rentwise/internal/verification/analysis"
	verificationmetrics "rentwise/internal/verification/metrics"
	"rentwise/internal/verification/models"
	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
	"rentwise/pkg/platform/audit"
	"rentwise/pkg/platform/sentinel"
	"rentwise/pkg/platform/tx"
)

var tracer = otel.Tracer("rentwise/internal/verification/service")

// Store persists verification attempts. Attempts are never updated.
type Store interface {
	Create(ctx context.Context, a *models.Attempt) error
	FindByID(ctx context.Context, attemptID id.AttemptID) (*models.Attempt, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Attempt, error)
	FindLatestByUser(ctx context.Context, userID id.UserID) (*models.Attempt, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.ComplianceEvent) error
}

type serviceConfig struct {
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *verificationmetrics.Metrics
	tx             tx.Runner
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(c *serviceConfig) {
		c.auditPublisher = publisher
	}
}

func WithMetrics(m *verificationmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

func WithTx(runner tx.Runner) Option {
	return func(c *serviceConfig) {
		c.tx = runner
	}
}

type Service struct {
	attempts     Store
	analyzer     analysis.Analyzer
	auditEmitter *auditEmitter
	metrics      *verificationmetrics.Metrics
	tx           tx.Runner
	logger       *slog.Logger
}

func New(attempts Store, analyzer analysis.Analyzer, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	runner := cfg.tx
	if runner == nil {
		runner = tx.NewLockRunner(0)
	}
	return &Service{
		attempts:     attempts,
		analyzer:     analyzer,
		auditEmitter: &auditEmitter{logger: cfg.logger, publisher: cfg.auditPublisher},
		metrics:      cfg.metrics,
		tx:           runner,
		logger:       cfg.logger,
	}
}

type auditEmitter struct {
	logger    *slog.Logger
	publisher AuditPublisher
}

func (e *auditEmitter) emit(ctx context.Context, a *models.Attempt) error {
	if e.publisher == nil {
		return nil
	}
	details := map[string]string{
		"document_type": string(a.DocumentType),
	}
	if a.FailureReason != "" {
		details["failure_reason"] = a.FailureReason
	}
	err := e.publisher.Emit(ctx, audit.ComplianceEvent{
		UserID:        a.UserID,
		AggregateType: "verification_attempt",
		AggregateID:   a.ID.String(),
		Action:        audit.EventVerificationDecided,
		Decision:      string(a.Status),
		Reason:        a.Notes,
		Details:       details,
	})
	if err != nil {
		if e.logger != nil {
			e.logger.ErrorContext(ctx, "verification audit emit failed",
				"attempt_id", a.ID,
				"error", err,
			)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func requireCaller(caller id.UserID) error {
	if caller.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	return nil
}

func wrapAttemptErr(err error, action string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "verification attempt not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "verification attempt already recorded")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}
