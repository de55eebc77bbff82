// Package middleware enforces per-user request budgets on authenticated routes.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	ratelimitmetrics "rentwise/internal/ratelimit/metrics"
	"rentwise/internal/ratelimit/models"
	dErrors "rentwise/pkg/domain-errors"
	"rentwise/pkg/platform/httputil"
	"rentwise/pkg/requestcontext"
)

// Store records a request against key and reports whether it fits limit.
type Store interface {
	Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error)
}

type Middleware struct {
	store    Store
	logger   *slog.Logger
	metrics  *ratelimitmetrics.Metrics
	limits   map[models.EndpointClass]models.Limit
	disabled bool
}

type Option func(*Middleware)

// WithLimit sets the budget for class. Classes without a limit are not enforced.
func WithLimit(class models.EndpointClass, limit models.Limit) Option {
	return func(m *Middleware) {
		if !limit.IsZero() {
			m.limits[class] = limit
		}
	}
}

func WithMetrics(metrics *ratelimitmetrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

// WithDisabled turns every check into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(store Store, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		logger: logger,
		limits: make(map[models.EndpointClass]models.Limit),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled && logger != nil {
		logger.Info("rate limiting disabled")
	}
	return m
}

// ForUser limits every request of class per authenticated caller. It must
// run after the auth middleware; anonymous requests pass through.
func (m *Middleware) ForUser(class models.EndpointClass) func(http.Handler) http.Handler {
	return m.limit(class, func(*http.Request) bool { return true })
}

// Writes is ForUser restricted to state-changing methods.
func (m *Middleware) Writes(class models.EndpointClass) func(http.Handler) http.Handler {
	return m.limit(class, func(r *http.Request) bool {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return false
		}
		return true
	})
}

func (m *Middleware) limit(class models.EndpointClass, applies func(*http.Request) bool) func(http.Handler) http.Handler {
	limit, enforced := m.limits[class]
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := requestcontext.UserID(ctx)
			if m.disabled || !enforced || userID.IsNil() || !applies(r) {
				next.ServeHTTP(w, r)
				return
			}

			result, err := m.store.Allow(ctx, models.UserKey(class, userID), limit)
			if err != nil {
				m.metrics.IncStoreError()
				if m.logger != nil {
					m.logger.ErrorContext(ctx, "rate limit check failed, allowing request",
						"error", err,
						"class", string(class),
						"user_id", userID.String(),
						"request_id", requestcontext.RequestID(ctx),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			m.metrics.IncDecision(string(class), result.Allowed)
			addRateLimitHeaders(w, result)
			if !result.Allowed {
				if m.logger != nil {
					m.logger.WarnContext(ctx, "rate limit exceeded",
						"class", string(class),
						"user_id", userID.String(),
						"retry_after", result.RetryAfter,
						"request_id", requestcontext.RequestID(ctx),
					)
				}
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited,
					fmt.Sprintf("too many requests, retry after %d seconds", result.RetryAfter)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
