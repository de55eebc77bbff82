package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rentwise/internal/verification/models"
	"rentwise/internal/verification/service"
	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
	"rentwise/pkg/platform/httputil"
	"rentwise/pkg/requestcontext"
)

// Service defines the verification operations exposed over HTTP.
type Service interface {
	SubmitVerification(ctx context.Context, caller id.UserID, req service.SubmitRequest) (*models.Attempt, error)
	GetAttempt(ctx context.Context, caller id.UserID, attemptID id.AttemptID) (*models.Attempt, error)
	ListAttempts(ctx context.Context, caller id.UserID) ([]*models.Attempt, error)
	LatestStatus(ctx context.Context, caller id.UserID) (*models.Attempt, error)
}

type Handler struct {
	service     Service
	logger      *slog.Logger
	submitLimit []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithSubmitLimit wraps POST /verifications, which is the only route that
// reaches the vision provider.
func WithSubmitLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		if mw != nil {
			h.submitLimit = append(h.submitLimit, mw)
		}
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.With(h.submitLimit...).Post("/verifications", h.HandleSubmit)
	r.Get("/verifications", h.HandleList)
	r.Get("/verifications/latest", h.HandleLatest)
	r.Get("/verifications/{id}", h.HandleGet)
}

// HandleSubmit handles POST /verifications. The response is 201 whatever the
// outcome; a failed analysis yields a pending attempt.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubmitVerificationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	a, err := h.service.SubmitVerification(ctx, caller, req.toService())
	if err != nil {
		h.fail(w, ctx, "submit verification failed", requestID, caller, err)
		return
	}
	h.logger.InfoContext(ctx, "verification submitted",
		"request_id", requestID,
		"user_id", caller,
		"attempt_id", a.ID,
		"status", a.Status,
	)
	httputil.WriteJSON(w, http.StatusCreated, toAttemptResponse(a))
}

// HandleList handles GET /verifications.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	attempts, err := h.service.ListAttempts(ctx, caller)
	if err != nil {
		h.fail(w, ctx, "list verifications failed", requestID, caller, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAttemptListResponse(attempts))
}

// HandleLatest handles GET /verifications/latest.
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	a, err := h.service.LatestStatus(ctx, caller)
	if err != nil {
		h.fail(w, ctx, "latest verification failed", requestID, caller, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LatestStatusResponse{
		Status:  string(a.Status),
		Attempt: toAttemptResponse(a),
	})
}

// HandleGet handles GET /verifications/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	attemptID, err := id.ParseAttemptID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid verification id"))
		return
	}
	a, err := h.service.GetAttempt(ctx, caller, attemptID)
	if err != nil {
		h.fail(w, ctx, "get verification failed", requestID, caller, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAttemptResponse(a))
}

func (h *Handler) fail(w http.ResponseWriter, ctx context.Context, msg, requestID string, caller id.UserID, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestID,
		"user_id", caller,
		"error", err,
	)
	httputil.WriteError(w, err)
}

func requireCaller(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	caller := requestcontext.UserID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return caller, true
}
