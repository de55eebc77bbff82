package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"rentwise/internal/tenancy/invite"
	tenancymetrics "rentwise/internal/tenancy/metrics"
	"rentwise/internal/tenancy/models"
	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
	"rentwise/pkg/platform/audit"
	"rentwise/pkg/platform/tx"
	"rentwise/pkg/requestcontext"
)

// Service orchestrates tenancy lifecycle management.
type Service struct {
	tenancies    Store
	auditEmitter *auditEmitter
	metrics      *tenancymetrics.Metrics
	tx           tx.Runner
	inviteTTL    time.Duration
}

func New(tenancies Store, opts ...Option) *Service {
	cfg := &serviceConfig{inviteTTL: defaultInviteTTL}
	for _, opt := range opts {
		opt(cfg)
	}
	runner := cfg.tx
	if runner == nil {
		runner = tx.NewLockRunner(0)
	}
	return &Service{
		tenancies:    tenancies,
		auditEmitter: newAuditEmitter(cfg.logger, cfg.auditPublisher),
		metrics:      cfg.metrics,
		tx:           runner,
		inviteTTL:    cfg.inviteTTL,
	}
}

// CreateTenancy opens a tenancy in pending_invite on behalf of the landlord.
// The cleartext invitation token is returned once and never stored.
func (s *Service) CreateTenancy(ctx context.Context, landlord id.UserID, params models.CreateParams) (*models.Tenancy, string, error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("create", start)
	ctx, span := startSpan(ctx, "tenancy.Create", id.TenancyID{})
	var err error
	defer func() { endSpan(span, err) }()

	if err = requireCaller(landlord); err != nil {
		return nil, "", err
	}

	token, hash, err := invite.NewToken()
	if err != nil {
		err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue invitation")
		return nil, "", err
	}

	var created *models.Tenancy
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		t, err := models.NewTenancy(id.NewTenancyID(), landlord, params, hash, now.Add(s.inviteTTL), now)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
				return dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
			}
			return err
		}
		if err := s.tenancies.Create(txCtx, t); err != nil {
			return wrapTenancyErr(err, "create tenancy")
		}
		if err := s.auditEmitter.emit(txCtx, landlord, t, audit.EventTenancyCreated, map[string]string{
			"property_id": t.PropertyID.String(),
		}); err != nil {
			return err
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	span.SetAttributes(tenancyIDAttr(created.ID))
	s.metrics.IncTenancyCreated()
	return created, token, nil
}

// AcceptInvitation binds the caller as tenant once the token checks out.
func (s *Service) AcceptInvitation(ctx context.Context, caller id.UserID, tenancyID id.TenancyID, token string) (*models.Tenancy, error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("accept", start)
	ctx, span := startSpan(ctx, "tenancy.AcceptInvitation", tenancyID)
	var err error
	defer func() { endSpan(span, err) }()

	if err = requireCaller(caller); err != nil {
		return nil, err
	}
	if err = requireTenancyID(tenancyID); err != nil {
		return nil, err
	}

	var accepted *models.Tenancy
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := s.tenancies.FindByID(txCtx, tenancyID)
		if err != nil {
			return wrapTenancyErr(err, "load tenancy")
		}
		now := requestcontext.Now(txCtx)
		if err := t.CanAccept(caller, now); err != nil {
			return err
		}
		if err := invite.Verify(token, t.InviteTokenHash); err != nil {
			if dErrors.HasCode(err, dErrors.CodeValidation) {
				return err
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify invitation")
		}

		t.ApplyAcceptance(caller, now)
		if err := s.tenancies.UpdateIfStatus(txCtx, t, models.StatusPendingInvite); err != nil {
			return wrapTenancyErr(err, "accept invitation")
		}
		if err := s.auditEmitter.emit(txCtx, caller, t, audit.EventTenancyAccepted, nil); err != nil {
			return err
		}
		accepted = t
		return nil
	})
	if err != nil {
		s.metrics.IncInviteRejected(string(dErrors.CodeOf(err)))
		return nil, err
	}

	s.metrics.IncInviteAccepted()
	return accepted, nil
}

// EndTenancy moves an active tenancy to ended. Landlord only.
func (s *Service) EndTenancy(ctx context.Context, caller id.UserID, tenancyID id.TenancyID) (*models.Tenancy, error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("end", start)
	ctx, span := startSpan(ctx, "tenancy.End", tenancyID)
	var err error
	defer func() { endSpan(span, err) }()

	if err = requireCaller(caller); err != nil {
		return nil, err
	}
	if err = requireTenancyID(tenancyID); err != nil {
		return nil, err
	}

	var ended *models.Tenancy
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := s.tenancies.FindByID(txCtx, tenancyID)
		if err != nil {
			return wrapTenancyErr(err, "load tenancy")
		}
		if !t.IsLandlord(caller) {
			return dErrors.New(dErrors.CodeNotAuthorized, "only the landlord can end a tenancy")
		}
		if err := t.CanEnd(); err != nil {
			return err
		}
		t.ApplyEnd(requestcontext.Now(txCtx))
		if err := s.tenancies.UpdateIfStatus(txCtx, t, models.StatusActive); err != nil {
			return wrapTenancyErr(err, "end tenancy")
		}
		if err := s.auditEmitter.emit(txCtx, caller, t, audit.EventTenancyEnded, nil); err != nil {
			return err
		}
		ended = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTenancyEnded()
	return ended, nil
}

// GetTenancy returns a tenancy to its landlord or tenant.
func (s *Service) GetTenancy(ctx context.Context, caller id.UserID, tenancyID id.TenancyID) (*models.Tenancy, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := requireTenancyID(tenancyID); err != nil {
		return nil, err
	}
	t, err := s.tenancies.FindByID(ctx, tenancyID)
	if err != nil {
		return nil, wrapTenancyErr(err, "load tenancy")
	}
	if !t.IsParty(caller) {
		return nil, dErrors.New(dErrors.CodeNotAuthorized, "caller is not a party to this tenancy")
	}
	return t, nil
}

// FindTenancy loads a tenancy without a caller check, for other modules
// that authorize against the tenancy's parties themselves.
func (s *Service) FindTenancy(ctx context.Context, tenancyID id.TenancyID) (*models.Tenancy, error) {
	if err := requireTenancyID(tenancyID); err != nil {
		return nil, err
	}
	t, err := s.tenancies.FindByID(ctx, tenancyID)
	if err != nil {
		return nil, wrapTenancyErr(err, "load tenancy")
	}
	return t, nil
}

func tenancyIDAttr(tenancyID id.TenancyID) attribute.KeyValue {
	return attribute.String("tenancy.id", tenancyID.String())
}
