package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ratelimitmetrics "rentwise/internal/ratelimit/metrics"
	"rentwise/internal/ratelimit/models"
	"rentwise/internal/ratelimit/store/bucket"
	id "rentwise/pkg/domain"
	"rentwise/pkg/platform/httputil"
	"rentwise/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, models.Limit) (*models.Result, error) {
	return nil, errors.New("connection refused")
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func serve(h http.Handler, method string, user id.UserID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/verifications", nil)
	if !user.IsNil() {
		req = req.WithContext(requestcontext.WithUserID(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestForUser_RejectsOverBudget(t *testing.T) {
	m := ratelimitmetrics.NewWithRegisterer(prometheus.NewRegistry())
	mw := New(bucket.NewInMemory(), nil,
		WithLimit(models.ClassVerificationSubmit, models.Limit{Requests: 2, Window: time.Hour}),
		WithMetrics(m),
	)
	h := mw.ForUser(models.ClassVerificationSubmit)(okHandler)
	user := id.UserID(uuid.New())

	for range 2 {
		rec := serve(h, http.MethodPost, user)
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := serve(h, http.MethodPost, user)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body.Error)

	other := serve(h, http.MethodPost, id.UserID(uuid.New()))
	assert.Equal(t, http.StatusNoContent, other.Code, "budgets are per user")

	assert.Equal(t, 3.0, promtestutil.ToFloat64(m.Decisions.WithLabelValues("verification_submit", "allowed")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.Decisions.WithLabelValues("verification_submit", "rejected")))
}

func TestWrites_SkipsSafeMethods(t *testing.T) {
	mw := New(bucket.NewInMemory(), nil,
		WithLimit(models.ClassWrite, models.Limit{Requests: 1, Window: time.Minute}),
	)
	h := mw.Writes(models.ClassWrite)(okHandler)
	user := id.UserID(uuid.New())

	for range 5 {
		assert.Equal(t, http.StatusNoContent, serve(h, http.MethodGet, user).Code)
	}
	assert.Equal(t, http.StatusNoContent, serve(h, http.MethodPost, user).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, http.MethodPost, user).Code)
}

func TestPassThrough(t *testing.T) {
	limit := models.Limit{Requests: 1, Window: time.Minute}
	user := id.UserID(uuid.New())

	cases := []struct {
		name string
		mw   *Middleware
		user id.UserID
	}{
		{"disabled", New(bucket.NewInMemory(), nil, WithDisabled(true), WithLimit(models.ClassWrite, limit)), user},
		{"class without a limit", New(bucket.NewInMemory(), nil), user},
		{"anonymous request", New(bucket.NewInMemory(), nil, WithLimit(models.ClassWrite, limit)), id.UserID{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := tc.mw.ForUser(models.ClassWrite)(okHandler)
			for range 3 {
				rec := serve(h, http.MethodPost, tc.user)
				assert.Equal(t, http.StatusNoContent, rec.Code)
				assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
			}
		})
	}
}

func TestStoreFailureFailsOpen(t *testing.T) {
	m := ratelimitmetrics.NewWithRegisterer(prometheus.NewRegistry())
	mw := New(failingStore{}, nil,
		WithLimit(models.ClassWrite, models.Limit{Requests: 1, Window: time.Minute}),
		WithMetrics(m),
	)
	h := mw.ForUser(models.ClassWrite)(okHandler)

	rec := serve(h, http.MethodPost, id.UserID(uuid.New()))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.StoreErrors))
}
