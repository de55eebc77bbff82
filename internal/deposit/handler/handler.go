package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"rentwise/internal/deposit/models"
	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
	"rentwise/pkg/platform/httputil"
	"rentwise/pkg/requestcontext"
)

// Service defines the deposit operations exposed over HTTP.
type Service interface {
	RequestDeposit(ctx context.Context, caller id.UserID, tenancyID id.TenancyID, amount decimal.Decimal, currency string) (*models.Deposit, error)
	MarkPaid(ctx context.Context, caller id.UserID, depositID id.DepositID) (*models.Deposit, error)
	ProposeReturn(ctx context.Context, caller id.UserID, depositID id.DepositID, amount decimal.Decimal, reason string) (*models.Deposit, error)
	RespondToReturn(ctx context.Context, caller id.UserID, depositID id.DepositID, response models.Response) (*models.Deposit, error)
	FinalizeReturn(ctx context.Context, caller id.UserID, depositID id.DepositID) (*models.Deposit, error)
	GetDeposit(ctx context.Context, caller id.UserID, depositID id.DepositID) (*models.Deposit, error)
	ListDepositsForTenancy(ctx context.Context, caller id.UserID, tenancyID id.TenancyID, statuses ...models.Status) ([]*models.Deposit, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts deposit endpoints. Routes expect an authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tenancies/{id}/deposits", h.HandleRequestDeposit)
	r.Get("/tenancies/{id}/deposits", h.HandleListForTenancy)
	r.Get("/deposits/{id}", h.HandleGet)
	r.Post("/deposits/{id}/mark-paid", h.HandleMarkPaid)
	r.Post("/deposits/{id}/propose-return", h.HandleProposeReturn)
	r.Post("/deposits/{id}/respond", h.HandleRespond)
	r.Post("/deposits/{id}/finalize", h.HandleFinalize)
}

// HandleRequestDeposit handles POST /tenancies/{id}/deposits.
func (h *Handler) HandleRequestDeposit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	tenancyID, err := id.ParseTenancyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenancy id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[RequestDepositRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	d, err := h.service.RequestDeposit(ctx, caller, tenancyID, *req.Amount, req.Currency)
	if err != nil {
		h.fail(w, ctx, "request deposit failed", requestID, caller, err)
		return
	}
	h.logger.InfoContext(ctx, "deposit requested",
		"request_id", requestID,
		"user_id", caller,
		"deposit_id", d.ID,
		"tenancy_id", tenancyID,
	)
	httputil.WriteJSON(w, http.StatusCreated, toDepositResponse(d))
}

// HandleListForTenancy handles GET /tenancies/{id}/deposits[?status=a,b].
func (h *Handler) HandleListForTenancy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	tenancyID, err := id.ParseTenancyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid tenancy id"))
		return
	}
	statuses, err := parseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	deposits, err := h.service.ListDepositsForTenancy(ctx, caller, tenancyID, statuses...)
	if err != nil {
		h.fail(w, ctx, "list deposits failed", requestID, caller, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDepositListResponse(deposits))
}

// HandleGet handles GET /deposits/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	depositID, ok := parseDepositID(w, r)
	if !ok {
		return
	}

	d, err := h.service.GetDeposit(ctx, caller, depositID)
	if err != nil {
		h.fail(w, ctx, "get deposit failed", requestID, caller, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDepositResponse(d))
}

// HandleMarkPaid handles POST /deposits/{id}/mark-paid.
func (h *Handler) HandleMarkPaid(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "mark paid", func(ctx context.Context, caller id.UserID, depositID id.DepositID) (*models.Deposit, bool, error) {
		d, err := h.service.MarkPaid(ctx, caller, depositID)
		return d, true, err
	})
}

// HandleProposeReturn handles POST /deposits/{id}/propose-return.
func (h *Handler) HandleProposeReturn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "propose return", func(ctx context.Context, caller id.UserID, depositID id.DepositID) (*models.Deposit, bool, error) {
		req, ok := httputil.DecodeAndPrepare[ProposeReturnRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return nil, false, nil
		}
		d, err := h.service.ProposeReturn(ctx, caller, depositID, *req.Amount, req.Reason)
		return d, true, err
	})
}

// HandleRespond handles POST /deposits/{id}/respond.
func (h *Handler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "respond to return", func(ctx context.Context, caller id.UserID, depositID id.DepositID) (*models.Deposit, bool, error) {
		req, ok := httputil.DecodeAndPrepare[RespondRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return nil, false, nil
		}
		d, err := h.service.RespondToReturn(ctx, caller, depositID, req.ParsedResponse())
		return d, true, err
	})
}

// HandleFinalize handles POST /deposits/{id}/finalize.
func (h *Handler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "finalize return", func(ctx context.Context, caller id.UserID, depositID id.DepositID) (*models.Deposit, bool, error) {
		d, err := h.service.FinalizeReturn(ctx, caller, depositID)
		return d, true, err
	})
}

// transition runs the common auth/parse/respond steps around one state
// change. run returns handled=false when it has already written a response.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string,
	run func(ctx context.Context, caller id.UserID, depositID id.DepositID) (*models.Deposit, bool, error),
) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	caller, ok := requireCaller(w, ctx)
	if !ok {
		return
	}
	depositID, ok := parseDepositID(w, r)
	if !ok {
		return
	}

	d, handled, err := run(ctx, caller, depositID)
	if !handled {
		return
	}
	if err != nil {
		h.fail(w, ctx, action+" failed", requestID, caller, err)
		return
	}

	h.logger.InfoContext(ctx, "deposit "+action,
		"request_id", requestID,
		"user_id", caller,
		"deposit_id", d.ID,
		"status", d.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, toDepositResponse(d))
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

func parseDepositID(w http.ResponseWriter, r *http.Request) (id.DepositID, bool) {
	depositID, err := id.ParseDepositID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid deposit id"))
		return id.DepositID{}, false
	}
	return depositID, true
}
