package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rentwise/internal/tenancy/models"
	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
	"rentwise/pkg/platform/httputil"
	"rentwise/pkg/requestcontext"
)

// Service defines the tenancy operations exposed over HTTP.
type Service interface {
	CreateTenancy(ctx context.Context, landlord id.UserID, params models.CreateParams) (*models.Tenancy, string, error)
	AcceptInvitation(ctx context.Context, caller id.UserID, tenancyID id.TenancyID, token string) (*models.Tenancy, error)
	EndTenancy(ctx context.Context, caller id.UserID, tenancyID id.TenancyID) (*models.Tenancy, error)
	GetTenancy(ctx context.Context, caller id.UserID, tenancyID id.TenancyID) (*models.Tenancy, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts tenancy endpoints. Routes expect an authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tenancies", h.HandleCreate)
	r.Get("/tenancies/{id}", h.HandleGet)
	r.Post("/tenancies/{id}/accept", h.HandleAccept)
	r.Post("/tenancies/{id}/end", h.HandleEnd)
}

// HandleCreate handles POST /tenancies.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateTenancyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	t, token, err := h.service.CreateTenancy(ctx, caller, req.Params())
	if err != nil {
		h.logFailure(ctx, "create tenancy failed", requestID, caller, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "tenancy created",
		"request_id", requestID,
		"user_id", caller,
		"tenancy_id", t.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, CreateTenancyResponse{
		TenancyResponse: toTenancyResponse(t),
		InviteToken:     token,
	})
}

// HandleGet handles GET /tenancies/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}
	tenancyID, ok := parseTenancyID(w, r)
	if !ok {
		return
	}

	t, err := h.service.GetTenancy(ctx, caller, tenancyID)
	if err != nil {
		h.logFailure(ctx, "get tenancy failed", requestID, caller, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTenancyResponse(t))
}

// HandleAccept handles POST /tenancies/{id}/accept.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}
	tenancyID, ok := parseTenancyID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AcceptInvitationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	t, err := h.service.AcceptInvitation(ctx, caller, tenancyID, req.Token)
	if err != nil {
		h.logFailure(ctx, "accept invitation failed", requestID, caller, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "tenancy invitation accepted",
		"request_id", requestID,
		"user_id", caller,
		"tenancy_id", t.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, toTenancyResponse(t))
}

// HandleEnd handles POST /tenancies/{id}/end.
func (h *Handler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := h.requireCaller(w, ctx)
	if !ok {
		return
	}
	tenancyID, ok := parseTenancyID(w, r)
	if !ok {
		return
	}

	t, err := h.service.EndTenancy(ctx, caller, tenancyID)
	if err != nil {
		h.logFailure(ctx, "end tenancy failed", requestID, caller, err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "tenancy ended",
		"request_id", requestID,
		"user_id", caller,
		"tenancy_id", t.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, toTenancyResponse(t))
}

func (h *Handler) requireCaller(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	caller := requestcontext.UserID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return caller, true
}

// logFailure logs at warn for client errors and error for everything else.
func (h *Handler) logFailure(ctx context.Context, msg, requestID string, caller id.UserID, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestID,
		"user_id", caller,
		"error", err,
	)
}

func parseTenancyID(w http.ResponseWriter, r *http.Request) (id.TenancyID, bool) {
	tenancyID, err := id.ParseTenancyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenancy id"))
		return id.TenancyID{}, false
	}
	return tenancyID, true
}
