package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"rentwise/internal/deposit/models"
	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
	"rentwise/pkg/platform/audit"
	"rentwise/pkg/requestcontext"
)

// party names who may perform a transition.
type party int

const (
	landlordOnly party = iota
	tenantOnly
)

// transition describes one lifecycle step for the shared transition runner.
type transition struct {
	operation string
	actor     party
	event     audit.AuditEvent
	apply     func(d *models.Deposit, now time.Time) error
	details   func(d *models.Deposit) map[string]string
}

// RequestDeposit opens a deposit on an active tenancy. Landlord only.
func (s *Service) RequestDeposit(ctx context.Context, caller id.UserID, tenancyID id.TenancyID, amount decimal.Decimal, currencyCode string) (d *models.Deposit, err error) {
	const operation = "request"
	start := time.Now()
	ctx, span := startSpan(ctx, "deposit.Request", attribute.String("tenancy.id", tenancyID.String()))
	defer func() {
		s.finish(operation, start, err)
		endSpan(span, err)
	}()

	if err = requireCaller(caller); err != nil {
		return nil, err
	}
	cur, err := id.ParseCurrency(currencyCode)
	if err != nil {
		err = dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		return nil, err
	}
	parties, err := s.tenancies.LookupParties(ctx, tenancyID)
	if err != nil {
		return nil, err
	}
	if parties.LandlordID != caller {
		err = dErrors.New(dErrors.CodeNotAuthorized, "only the landlord of this tenancy can request a deposit")
		return nil, err
	}
	if !parties.Active {
		err = dErrors.New(dErrors.CodeInvalidStateTransition, "deposits can only be requested on an active tenancy")
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		created, err := models.NewDeposit(id.NewDepositID(), *parties, amount, cur, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.deposits.Create(txCtx, created); err != nil {
			return wrapDepositErr(err, "create deposit")
		}
		if err := s.auditEmitter.emit(txCtx, caller, created, audit.EventDepositRequested, map[string]string{
			"amount":   created.Amount.String(),
			"currency": created.Currency.String(),
		}); err != nil {
			return err
		}
		d = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(string(d.Status))
	return d, nil
}

// MarkPaid records that the tenant has paid: requested -> paid. Landlord only.
func (s *Service) MarkPaid(ctx context.Context, caller id.UserID, depositID id.DepositID) (*models.Deposit, error) {
	return s.runTransition(ctx, caller, depositID, transition{
		operation: "mark_paid",
		actor:     landlordOnly,
		event:     audit.EventDepositPaid,
		apply: func(d *models.Deposit, now time.Time) error {
			return d.MarkPaid(now)
		},
	})
}

// ProposeReturn records how much the landlord intends to return: paid -> return_proposed.
func (s *Service) ProposeReturn(ctx context.Context, caller id.UserID, depositID id.DepositID, amount decimal.Decimal, reason string) (*models.Deposit, error) {
	return s.runTransition(ctx, caller, depositID, transition{
		operation: "propose_return",
		actor:     landlordOnly,
		event:     audit.EventDepositReturnProposed,
		apply: func(d *models.Deposit, now time.Time) error {
			return d.ProposeReturn(amount, reason, now)
		},
		details: func(d *models.Deposit) map[string]string {
			return map[string]string{
				"proposed_return_amount": d.ProposedReturnAmount.String(),
				"amount":                 d.Amount.String(),
				"currency":               d.Currency.String(),
			}
		},
	})
}

// RespondToReturn records the tenant's accept or dispute.
func (s *Service) RespondToReturn(ctx context.Context, caller id.UserID, depositID id.DepositID, response models.Response) (*models.Deposit, error) {
	event := audit.EventDepositReturnAccepted
	if response == models.ResponseDispute {
		event = audit.EventDepositReturnDisputed
	}
	return s.runTransition(ctx, caller, depositID, transition{
		operation: "respond_to_return",
		actor:     tenantOnly,
		event:     event,
		apply: func(d *models.Deposit, now time.Time) error {
			return d.Respond(response, now)
		},
		details: func(d *models.Deposit) map[string]string {
			return map[string]string{"tenant_response": string(d.TenantResponse)}
		},
	})
}

// FinalizeReturn closes an accepted return: return_accepted -> returned. Landlord only.
func (s *Service) FinalizeReturn(ctx context.Context, caller id.UserID, depositID id.DepositID) (*models.Deposit, error) {
	return s.runTransition(ctx, caller, depositID, transition{
		operation: "finalize_return",
		actor:     landlordOnly,
		event:     audit.EventDepositReturned,
		apply: func(d *models.Deposit, now time.Time) error {
			return d.FinalizeReturn(now)
		},
	})
}

// GetDeposit returns a deposit to its landlord or tenant.
func (s *Service) GetDeposit(ctx context.Context, caller id.UserID, depositID id.DepositID) (*models.Deposit, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	d, err := s.deposits.FindByID(ctx, depositID)
	if err != nil {
		return nil, wrapDepositErr(err, "load deposit")
	}
	if !d.IsParty(caller) {
		return nil, dErrors.New(dErrors.CodeNotAuthorized, "caller is not a party to this deposit")
	}
	return d, nil
}

// ListDepositsForTenancy returns the tenancy's deposits, oldest first, to
// either party. statuses optionally narrows the result.
func (s *Service) ListDepositsForTenancy(ctx context.Context, caller id.UserID, tenancyID id.TenancyID, statuses ...models.Status) ([]*models.Deposit, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	for _, st := range statuses {
		if !st.IsValid() {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown deposit status "+string(st))
		}
	}
	parties, err := s.tenancies.LookupParties(ctx, tenancyID)
	if err != nil {
		return nil, err
	}
	if caller != parties.LandlordID && caller != parties.TenantID {
		return nil, dErrors.New(dErrors.CodeNotAuthorized, "caller is not a party to this tenancy")
	}
	deposits, err := s.deposits.ListByTenancy(ctx, tenancyID, statuses...)
	if err != nil {
		return nil, wrapDepositErr(err, "list deposits")
	}
	return deposits, nil
}

// runTransition loads, authorizes, applies and conditionally persists one
// transition. Authorization is checked before state.
func (s *Service) runTransition(ctx context.Context, caller id.UserID, depositID id.DepositID, t transition) (result *models.Deposit, err error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "deposit."+t.operation, attribute.String("deposit.id", depositID.String()))
	defer func() {
		s.finish(t.operation, start, err)
		endSpan(span, err)
	}()

	if err = requireCaller(caller); err != nil {
		return nil, err
	}
	if depositID.IsNil() {
		err = dErrors.New(dErrors.CodeBadRequest, "deposit ID required")
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		d, err := s.deposits.FindByID(txCtx, depositID)
		if err != nil {
			return wrapDepositErr(err, "load deposit")
		}
		if err := authorize(d, caller, t.actor); err != nil {
			return err
		}

		expected := d.Status
		if err := t.apply(d, requestcontext.Now(txCtx)); err != nil {
			return err
		}
		if err := s.deposits.UpdateIfStatus(txCtx, d, expected); err != nil {
			return wrapDepositErr(err, t.operation)
		}

		var details map[string]string
		if t.details != nil {
			details = t.details(d)
		}
		if err := s.auditEmitter.emit(txCtx, caller, d, t.event, details); err != nil {
			return err
		}
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(result.Status))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "deposit transitioned",
			"deposit_id", result.ID,
			"user_id", caller,
			"status", result.Status,
		)
	}
	return result, nil
}

func authorize(d *models.Deposit, caller id.UserID, actor party) error {
	switch actor {
	case landlordOnly:
		if !d.IsLandlord(caller) {
			return dErrors.New(dErrors.CodeNotAuthorized, "only the landlord of record can perform this action")
		}
	case tenantOnly:
		if !d.IsTenant(caller) {
			return dErrors.New(dErrors.CodeNotAuthorized, "only the tenant of record can perform this action")
		}
	}
	return nil
}

func (s *Service) finish(operation string, start time.Time, err error) {
	s.metrics.ObserveOperation(operation, start)
	if err != nil {
		s.metrics.IncRejected(operation, string(dErrors.CodeOf(err)))
	}
}
