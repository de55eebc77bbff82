package analysis

import (
	"context"
	"errors"
	"log/slog"

	"rentwise/internal/verification/models"
	"rentwise/pkg/platform/circuit"
)

// Guarded sheds calls to a failing provider. Provider failures count against
// the breaker; bad data and caller cancellation do not, since they say nothing
// about provider health.
type Guarded struct {
	next    Analyzer
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuarded(next Analyzer, breaker *circuit.Breaker, logger *slog.Logger) *Guarded {
	return &Guarded{next: next, breaker: breaker, logger: logger}
}

func (g *Guarded) AnalyzeDocument(ctx context.Context, imageRef string, docType models.DocumentType) (models.DocumentAnalysis, error) {
	if err := g.admit(); err != nil {
		return models.DocumentAnalysis{}, err
	}
	result, err := g.next.AnalyzeDocument(ctx, imageRef, docType)
	g.record(ctx, err)
	return result, err
}

func (g *Guarded) AnalyzeSelfie(ctx context.Context, imageRef string) (models.SelfieAnalysis, error) {
	if err := g.admit(); err != nil {
		return models.SelfieAnalysis{}, err
	}
	result, err := g.next.AnalyzeSelfie(ctx, imageRef)
	g.record(ctx, err)
	return result, err
}

func (g *Guarded) admit() error {
	if g.breaker.Allow() {
		return nil
	}
	return NewProviderError(ErrorProviderOutage, g.breaker.Name(), "circuit open", ErrCircuitOpen)
}

func (g *Guarded) record(ctx context.Context, err error) {
	var change circuit.StateChange
	switch {
	case err == nil:
		_, change = g.breaker.RecordSuccess()
	case errors.Is(err, context.Canceled), GetCategory(err) == ErrorBadData:
		return
	default:
		_, change = g.breaker.RecordFailure()
	}
	if g.logger == nil {
		return
	}
	if change.Opened {
		g.logger.WarnContext(ctx, "vision provider circuit opened", "breaker", g.breaker.Name(), "error", err)
	}
	if change.Closed {
		g.logger.InfoContext(ctx, "vision provider circuit closed", "breaker", g.breaker.Name())
	}
}
