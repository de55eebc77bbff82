// Package service implements the tenancy lifecycle: invite, accept, end.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	tenancymetrics "rentwise/internal/tenancy/metrics"
	"rentwise/internal/tenancy/models"
	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
	"rentwise/pkg/platform/audit"
	"rentwise/pkg/platform/sentinel"
	"rentwise/pkg/platform/tx"
)

const defaultInviteTTL = 7 * 24 * time.Hour

var tracer = otel.Tracer("rentwise/internal/tenancy/service")

// Store persists tenancies. UpdateIfStatus must fail with
// sentinel.ErrInvalidState when the stored status differs from expected.
type Store interface {
	Create(ctx context.Context, t *models.Tenancy) error
	FindByID(ctx context.Context, tenancyID id.TenancyID) (*models.Tenancy, error)
	UpdateIfStatus(ctx context.Context, t *models.Tenancy, expected models.Status) error
}

// AuditPublisher is the fail-closed compliance sink.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.ComplianceEvent) error
}

type serviceConfig struct {
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *tenancymetrics.Metrics
	tx             tx.Runner
	inviteTTL      time.Duration
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

func WithMetrics(m *tenancymetrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

func WithTx(runner tx.Runner) Option {
	return func(c *serviceConfig) {
		c.tx = runner
	}
}

// WithInviteTTL overrides how long an invitation stays valid.
func WithInviteTTL(ttl time.Duration) Option {
	return func(c *serviceConfig) {
		if ttl > 0 {
			c.inviteTTL = ttl
		}
	}
}

type auditEmitter struct {
	logger    *slog.Logger
	publisher AuditPublisher
}

func newAuditEmitter(logger *slog.Logger, publisher AuditPublisher) *auditEmitter {
	return &auditEmitter{logger: logger, publisher: publisher}
}

func (e *auditEmitter) emit(ctx context.Context, actor id.UserID, t *models.Tenancy, action audit.AuditEvent, details map[string]string) error {
	if e.publisher == nil {
		return nil
	}
	err := e.publisher.Emit(ctx, audit.ComplianceEvent{
		UserID:        actor,
		AggregateType: "tenancy",
		AggregateID:   t.ID.String(),
		Action:        action,
		Decision:      string(t.Status),
		Details:       details,
	})
	if err != nil {
		if e.logger != nil {
			e.logger.ErrorContext(ctx, "tenancy audit emit failed",
				"action", action,
				"tenancy_id", t.ID,
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

func requireTenancyID(tenancyID id.TenancyID) error {
	if tenancyID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "tenancy ID required")
	}
	return nil
}

// wrapTenancyErr maps store sentinels to domain errors. Domain errors pass through.
func wrapTenancyErr(err error, action string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "tenancy not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeInvalidStateTransition, "tenancy changed state concurrently")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "tenancy already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
	}
}

func startSpan(ctx context.Context, name string, tenancyID id.TenancyID) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name)
	if !tenancyID.IsNil() {
		span.SetAttributes(tenancyIDAttr(tenancyID))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	}
	span.End()
}
