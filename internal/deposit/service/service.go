// Package service runs the deposit lifecycle.
//
// Every transition follows the same shape inside one transaction: load the
// deposit, check the caller is the party of record allowed to act, apply the
// domain transition, then compare-and-set the new state against the status
// that was read. The audit event is written in the same transaction.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	depositmetrics "rentwise/internal/deposit/metrics"
	"rentwise/internal/deposit/models"
	"rentwise/internal/deposit/ports"
	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
	"rentwise/pkg/platform/audit"
	"rentwise/pkg/platform/sentinel"
	"rentwise/pkg/platform/tx"
)

var tracer = otel.Tracer("rentwise/internal/deposit/service")

// Store persists deposits. UpdateIfStatus must return sentinel.ErrInvalidState
// when the stored status no longer equals expected.
type Store interface {
	Create(ctx context.Context, d *models.Deposit) error
	FindByID(ctx context.Context, depositID id.DepositID) (*models.Deposit, error)
	ListByTenancy(ctx context.Context, tenancyID id.TenancyID, statuses ...models.Status) ([]*models.Deposit, error)
	UpdateIfStatus(ctx context.Context, d *models.Deposit, expected models.Status) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.ComplianceEvent) error
}

type serviceConfig struct {
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *depositmetrics.Metrics
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

func WithMetrics(m *depositmetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

func WithTx(runner tx.Runner) Option {
	return func(c *serviceConfig) {
		c.tx = runner
	}
}

// Service implements the deposit operations. Caller identity is always an
// explicit argument.
type Service struct {
	deposits     Store
	tenancies    ports.TenancyPort
	auditEmitter *auditEmitter
	metrics      *depositmetrics.Metrics
	tx           tx.Runner
	logger       *slog.Logger
}

func New(deposits Store, tenancies ports.TenancyPort, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	runner := cfg.tx
	if runner == nil {
		runner = tx.NewLockRunner(0)
	}
	return &Service{
		deposits:     deposits,
		tenancies:    tenancies,
		auditEmitter: newAuditEmitter(cfg.logger, cfg.auditPublisher),
		metrics:      cfg.metrics,
		tx:           runner,
		logger:       cfg.logger,
	}
}

type auditEmitter struct {
	logger    *slog.Logger
	publisher AuditPublisher
}

func newAuditEmitter(logger *slog.Logger, publisher AuditPublisher) *auditEmitter {
	return &auditEmitter{logger: logger, publisher: publisher}
}

func (e *auditEmitter) emit(ctx context.Context, actor id.UserID, d *models.Deposit, action audit.AuditEvent, details map[string]string) error {
	if e.publisher == nil {
		return nil
	}
	if details == nil {
		details = map[string]string{}
	}
	details["tenancy_id"] = d.TenancyID.String()
	err := e.publisher.Emit(ctx, audit.ComplianceEvent{
		UserID:        actor,
		AggregateType: "deposit",
		AggregateID:   d.ID.String(),
		Action:        action,
		Decision:      string(d.Status),
		Reason:        d.ReturnReason,
		Details:       details,
	})
	if err != nil {
		if e.logger != nil {
			e.logger.ErrorContext(ctx, "deposit audit emit failed",
				"action", action,
				"deposit_id", d.ID,
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

// wrapDepositErr maps store sentinels to domain errors. Domain errors pass through.
func wrapDepositErr(err error, action string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "deposit not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeInvalidStateTransition, "deposit state changed before the transition was applied")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "deposit already exists")
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
