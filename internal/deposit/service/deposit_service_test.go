package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"rentwise/internal/deposit/models"
	portmocks "rentwise/internal/deposit/ports/mocks"
	"rentwise/internal/deposit/service/mocks"
	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
	"rentwise/pkg/platform/audit"
	"rentwise/pkg/platform/sentinel"
	"rentwise/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockStore   *mocks.MockStore
	mockAudit   *mocks.MockAuditPublisher
	mockTenancy *portmocks.MockTenancyPort
	service     *Service
	ctx         context.Context
	now         time.Time
	parties     models.Parties
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = mocks.NewMockStore(s.ctrl)
	s.mockAudit = mocks.NewMockAuditPublisher(s.ctrl)
	s.mockTenancy = portmocks.NewMockTenancyPort(s.ctrl)
	s.service = New(s.mockStore, s.mockTenancy, WithAuditPublisher(s.mockAudit))
	s.now = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.parties = models.Parties{
		TenancyID:  id.NewTenancyID(),
		LandlordID: id.UserID(uuid.New()),
		TenantID:   id.UserID(uuid.New()),
		Active:     true,
	}
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) deposit(status models.Status) *models.Deposit {
	d, err := models.NewDeposit(id.NewDepositID(), s.parties, decimal.NewFromInt(1000), "GBP", s.now.Add(-time.Hour))
	s.Require().NoError(err)
	if status == models.StatusRequested {
		return d
	}
	s.Require().NoError(d.MarkPaid(s.now))
	if status == models.StatusPaid {
		return d
	}
	s.Require().NoError(d.ProposeReturn(decimal.NewFromInt(800), "carpet cleaning", s.now))
	if status == models.StatusReturnProposed {
		return d
	}
	if status == models.StatusReturnDisputed {
		s.Require().NoError(d.Respond(models.ResponseDispute, s.now))
		return d
	}
	s.Require().NoError(d.Respond(models.ResponseAccept, s.now))
	if status == models.StatusReturnAccepted {
		return d
	}
	s.Require().NoError(d.FinalizeReturn(s.now))
	return d
}

func (s *ServiceSuite) TestRequestDeposit() {
	amount := decimal.NewFromInt(1000)

	s.Run("landlord requests on active tenancy", func() {
		s.mockTenancy.EXPECT().LookupParties(gomock.Any(), s.parties.TenancyID).Return(&s.parties, nil)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.ComplianceEvent) error {
				s.Equal(audit.EventDepositRequested, e.Action)
				s.Equal("deposit", e.AggregateType)
				s.Equal("1000", e.Details["amount"])
				s.Equal("GBP", e.Details["currency"])
				return nil
			})

		d, err := s.service.RequestDeposit(s.ctx, s.parties.LandlordID, s.parties.TenancyID, amount, "gbp")
		s.Require().NoError(err)
		s.Equal(models.StatusRequested, d.Status)
		s.Equal(id.Currency("GBP"), d.Currency)
		s.Equal(s.parties.TenantID, d.TenantID)
		s.Equal(s.now, d.RequestedAt)
	})

	s.Run("tenant cannot request", func() {
		s.mockTenancy.EXPECT().LookupParties(gomock.Any(), s.parties.TenancyID).Return(&s.parties, nil)
		_, err := s.service.RequestDeposit(s.ctx, s.parties.TenantID, s.parties.TenancyID, amount, "GBP")
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("inactive tenancy", func() {
		pending := s.parties
		pending.Active = false
		pending.TenantID = id.UserID{}
		s.mockTenancy.EXPECT().LookupParties(gomock.Any(), s.parties.TenancyID).Return(&pending, nil)
		_, err := s.service.RequestDeposit(s.ctx, s.parties.LandlordID, s.parties.TenancyID, amount, "GBP")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})

	s.Run("invalid currency is rejected before lookup", func() {
		_, err := s.service.RequestDeposit(s.ctx, s.parties.LandlordID, s.parties.TenancyID, amount, "QQQ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("non-positive amount", func() {
		s.mockTenancy.EXPECT().LookupParties(gomock.Any(), s.parties.TenancyID).Return(&s.parties, nil)
		_, err := s.service.RequestDeposit(s.ctx, s.parties.LandlordID, s.parties.TenancyID, decimal.Zero, "GBP")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("duplicate insert is a conflict", func() {
		s.mockTenancy.EXPECT().LookupParties(gomock.Any(), s.parties.TenancyID).Return(&s.parties, nil)
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)
		_, err := s.service.RequestDeposit(s.ctx, s.parties.LandlordID, s.parties.TenancyID, amount, "GBP")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("oversized amount never reaches the store", func() {
		s.mockTenancy.EXPECT().LookupParties(gomock.Any(), s.parties.TenancyID).Return(&s.parties, nil)
		_, err := s.service.RequestDeposit(s.ctx, s.parties.LandlordID, s.parties.TenancyID,
			decimal.RequireFromString("1e20000000"), "GBP")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown tenancy", func() {
		s.mockTenancy.EXPECT().LookupParties(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "tenancy not found"))
		_, err := s.service.RequestDeposit(s.ctx, s.parties.LandlordID, id.NewTenancyID(), amount, "GBP")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestMarkPaid() {
	s.Run("landlord marks requested deposit paid", func() {
		d := s.deposit(models.StatusRequested)
		s.mockStore.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil)
		s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), models.StatusRequested).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		paid, err := s.service.MarkPaid(s.ctx, s.parties.LandlordID, d.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPaid, paid.Status)
		s.Require().NotNil(paid.PaidAt)
		s.Equal(s.now, *paid.PaidAt)
	})

	s.Run("fails from any other state without writing", func() {
		for _, status := range []models.Status{
			models.StatusPaid, models.StatusReturnProposed, models.StatusReturnAccepted,
			models.StatusReturnDisputed, models.StatusReturned,
		} {
			d := s.deposit(status)
			s.mockStore.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil)

			_, err := s.service.MarkPaid(s.ctx, s.parties.LandlordID, d.ID)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition), status)
		}
	})

	s.Run("tenant is not authorized, even in the wrong state", func() {
		d := s.deposit(models.StatusReturned)
		s.mockStore.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil)

		_, err := s.service.MarkPaid(s.ctx, s.parties.TenantID, d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("losing a concurrent race is an invalid transition", func() {
		d := s.deposit(models.StatusRequested)
		s.mockStore.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil)
		s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), models.StatusRequested).Return(sentinel.ErrInvalidState)

		_, err := s.service.MarkPaid(s.ctx, s.parties.LandlordID, d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})

	s.Run("unknown deposit", func() {
		depositID := id.NewDepositID()
		s.mockStore.EXPECT().FindByID(gomock.Any(), depositID).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.MarkPaid(s.ctx, s.parties.LandlordID, depositID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("audit failure fails the transition", func() {
		d := s.deposit(models.StatusRequested)
		s.mockStore.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil)
		s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), models.StatusRequested).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("outbox insert failed"))

		_, err := s.service.MarkPaid(s.ctx, s.parties.LandlordID, d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("store failure is internal", func() {
		d := s.deposit(models.StatusRequested)
		s.mockStore.EXPECT().FindByID(gomock.Any(), d.ID).Return(nil, errors.New("connection reset"))

		_, err := s.service.MarkPaid(s.ctx, s.parties.LandlordID, d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestProposeReturn() {
	s.Run("amount above deposit is out of range", func() {
		d := s.deposit(models.StatusPaid)
		s.mockStore.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil)

		_, err := s.service.ProposeReturn(s.ctx, s.parties.LandlordID, d.ID, decimal.RequireFromString("1000.01"), "")
		s.True(dErrors.HasCode(err, dErrors.CodeAmountOutOfRange))
	})

	s.Run("negative amount is out of range", func() {
		d := s.deposit(models.StatusPaid)
		s.mockStore.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil)

		_, err := s.service.ProposeReturn(s.ctx, s.parties.LandlordID, d.ID, decimal.NewFromInt(-1), "")
		s.True(dErrors.HasCode(err, dErrors.CodeAmountOutOfRange))
	})

	s.Run("records amount reason and time", func() {
		d := s.deposit(models.StatusPaid)
		s.mockStore.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil)
		s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), models.StatusPaid).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.ComplianceEvent) error {
				s.Equal("0", e.Details["proposed_return_amount"])
				s.Equal("total loss", e.Reason)
				return nil
			})

		proposed, err := s.service.ProposeReturn(s.ctx, s.parties.LandlordID, d.ID, decimal.Zero, "total loss")
		s.Require().NoError(err)
		s.Equal(models.StatusReturnProposed, proposed.Status)
		s.Equal("total loss", proposed.ReturnReason)
		s.Equal(s.now, *proposed.ReturnProposedAt)
	})

	s.Run("tenant cannot propose", func() {
		d := s.deposit(models.StatusPaid)
		s.mockStore.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil)

		_, err := s.service.ProposeReturn(s.ctx, s.parties.TenantID, d.ID, decimal.NewFromInt(1), "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})
}

func (s *ServiceSuite) TestRespondToReturn() {
	s.Run("landlord cannot respond", func() {
		d := s.deposit(models.StatusReturnProposed)
		s.mockStore.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil)

		_, err := s.service.RespondToReturn(s.ctx, s.parties.LandlordID, d.ID, models.ResponseAccept)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("dispute emits disputed event", func() {
		d := s.deposit(models.StatusReturnProposed)
		s.mockStore.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil)
		s.mockStore.EXPECT().UpdateIfStatus(gomock.Any(), gomock.Any(), models.StatusReturnProposed).Return(nil)
		s.mockAudit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.ComplianceEvent) error {
				s.Equal(audit.EventDepositReturnDisputed, e.Action)
				s.Equal(s.parties.TenantID, e.UserID)
				return nil
			})

		disputed, err := s.service.RespondToReturn(s.ctx, s.parties.TenantID, d.ID, models.ResponseDispute)
		s.Require().NoError(err)
		s.Equal(models.StatusReturnDisputed, disputed.Status)
	})
}

func (s *ServiceSuite) TestFinalizeReturn() {
	s.Run("disputed deposit cannot be finalized", func() {
		d := s.deposit(models.StatusReturnDisputed)
		s.mockStore.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil)

		_, err := s.service.FinalizeReturn(s.ctx, s.parties.LandlordID, d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})
}

func (s *ServiceSuite) TestReads() {
	s.Run("outsider cannot read a deposit", func() {
		d := s.deposit(models.StatusPaid)
		s.mockStore.EXPECT().FindByID(gomock.Any(), d.ID).Return(d, nil)

		_, err := s.service.GetDeposit(s.ctx, id.UserID(uuid.New()), d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})

	s.Run("tenant lists tenancy deposits filtered by status", func() {
		d := s.deposit(models.StatusPaid)
		s.mockTenancy.EXPECT().LookupParties(gomock.Any(), s.parties.TenancyID).Return(&s.parties, nil)
		s.mockStore.EXPECT().ListByTenancy(gomock.Any(), s.parties.TenancyID, models.StatusPaid).
			Return([]*models.Deposit{d}, nil)

		list, err := s.service.ListDepositsForTenancy(s.ctx, s.parties.TenantID, s.parties.TenancyID, models.StatusPaid)
		s.Require().NoError(err)
		s.Len(list, 1)
	})

	s.Run("unknown status filter", func() {
		_, err := s.service.ListDepositsForTenancy(s.ctx, s.parties.TenantID, s.parties.TenancyID, "refunded")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("outsider cannot list", func() {
		s.mockTenancy.EXPECT().LookupParties(gomock.Any(), s.parties.TenancyID).Return(&s.parties, nil)
		_, err := s.service.ListDepositsForTenancy(s.ctx, id.UserID(uuid.New()), s.parties.TenancyID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotAuthorized))
	})
}
