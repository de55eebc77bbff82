package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
)

// Status is a deposit's position in its lifecycle.
//
//	requested -> paid -> return_proposed -> return_accepted -> returned
//	                                     \-> return_disputed
//
// returned and return_disputed accept no further automated transitions.
type Status string

const (
	StatusRequested      Status = "requested"
	StatusPaid           Status = "paid"
	StatusReturnProposed Status = "return_proposed"
	StatusReturnAccepted Status = "return_accepted"
	StatusReturnDisputed Status = "return_disputed"
	StatusReturned       Status = "returned"
)

var allowedTransitions = map[Status][]Status{
	StatusRequested:      {StatusPaid},
	StatusPaid:           {StatusReturnProposed},
	StatusReturnProposed: {StatusReturnAccepted, StatusReturnDisputed},
	StatusReturnAccepted: {StatusReturned},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusPaid, StatusReturnProposed,
		StatusReturnAccepted, StatusReturnDisputed, StatusReturned:
		return true
	}
	return false
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no automated transition leaves s.
func (s Status) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// Response is the tenant's answer to a proposed return.
type Response string

const (
	ResponseAccept  Response = "accept"
	ResponseDispute Response = "dispute"
)

func ParseResponse(s string) (Response, error) {
	switch Response(strings.ToLower(strings.TrimSpace(s))) {
	case ResponseAccept:
		return ResponseAccept, nil
	case ResponseDispute:
		return ResponseDispute, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "response must be accept or dispute")
}

const maxReasonLength = 1000

// Amounts must fit NUMERIC(16,4): twelve integer digits. The exponent bound
// keeps rescaling cheap for inputs like "1e20000000".
const (
	minAmountExponent = -18
	maxAmountExponent = 12
)

var maxAmount = decimal.New(1, maxAmountExponent)

// CheckAmountBounds rejects amounts whose exponent or magnitude the store
// cannot hold. It never rescales amount.
func CheckAmountBounds(amount decimal.Decimal) error {
	exp := amount.Exponent()
	if exp < minAmountExponent || exp > maxAmountExponent {
		return dErrors.New(dErrors.CodeValidation, "amount is not a valid money value")
	}
	if amount.Abs().Cmp(maxAmount) >= 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be less than "+maxAmount.String())
	}
	return nil
}

// Deposit is one security-deposit obligation tied to a tenancy.
//
// Invariants:
//   - Amount is positive and fits the currency's minor units
//   - ProposedReturnAmount, when set, lies in [0, Amount]
//   - ReturnProposedAt, ProposedReturnAmount and ReturnReason are set together
//   - TenantResponse is only recorded from return_proposed
//   - Status moves forward only along the lifecycle graph
type Deposit struct {
	ID                   id.DepositID     `json:"id"`
	TenancyID            id.TenancyID     `json:"tenancy_id"`
	LandlordID           id.UserID        `json:"landlord_id"`
	TenantID             id.UserID        `json:"tenant_id"`
	Amount               decimal.Decimal  `json:"amount"`
	Currency             id.Currency      `json:"currency"`
	Status               Status           `json:"status"`
	RequestedAt          time.Time        `json:"requested_at"`
	PaidAt               *time.Time       `json:"paid_at,omitempty"`
	ReturnProposedAt     *time.Time       `json:"return_proposed_at,omitempty"`
	ProposedReturnAmount *decimal.Decimal `json:"proposed_return_amount,omitempty"`
	ReturnReason         string           `json:"return_reason,omitempty"`
	TenantResponse       Response         `json:"tenant_response,omitempty"`
	TenantRespondedAt    *time.Time       `json:"tenant_responded_at,omitempty"`
	ReturnedAt           *time.Time       `json:"returned_at,omitempty"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// Parties identifies who may act on a deposit, copied from its tenancy.
type Parties struct {
	TenancyID  id.TenancyID
	LandlordID id.UserID
	TenantID   id.UserID
	Active     bool
}

// NewDeposit opens a deposit in requested.
func NewDeposit(depositID id.DepositID, parties Parties, amount decimal.Decimal, cur id.Currency, now time.Time) (*Deposit, error) {
	if err := CheckAmountBounds(amount); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be greater than zero")
	}
	if !amount.Equal(amount.Round(cur.Scale())) {
		return nil, dErrors.New(dErrors.CodeValidation, "amount has more decimal places than "+cur.String()+" allows")
	}
	if parties.LandlordID.IsNil() || parties.TenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "deposit requires landlord and tenant")
	}
	return &Deposit{
		ID:          depositID,
		TenancyID:   parties.TenancyID,
		LandlordID:  parties.LandlordID,
		TenantID:    parties.TenantID,
		Amount:      amount,
		Currency:    cur,
		Status:      StatusRequested,
		RequestedAt: now,
		UpdatedAt:   now,
	}, nil
}

func (d *Deposit) IsLandlord(userID id.UserID) bool {
	return !userID.IsNil() && d.LandlordID == userID
}

func (d *Deposit) IsTenant(userID id.UserID) bool {
	return !userID.IsNil() && d.TenantID == userID
}

func (d *Deposit) IsParty(userID id.UserID) bool {
	return d.IsLandlord(userID) || d.IsTenant(userID)
}

func (d *Deposit) requireTransition(next Status) error {
	if !d.Status.CanTransitionTo(next) {
		return dErrors.New(dErrors.CodeInvalidStateTransition,
			"deposit cannot move from "+string(d.Status)+" to "+string(next))
	}
	return nil
}

// MarkPaid records payment. Only valid from requested.
func (d *Deposit) MarkPaid(now time.Time) error {
	if err := d.requireTransition(StatusPaid); err != nil {
		return err
	}
	d.Status = StatusPaid
	d.PaidAt = &now
	d.UpdatedAt = now
	return nil
}

// ProposeReturn records the landlord's proposal. State is checked before amount.
func (d *Deposit) ProposeReturn(amount decimal.Decimal, reason string, now time.Time) error {
	if err := d.requireTransition(StatusReturnProposed); err != nil {
		return err
	}
	if exp := amount.Exponent(); exp < minAmountExponent || exp > maxAmountExponent {
		return dErrors.New(dErrors.CodeValidation, "amount is not a valid money value")
	}
	if amount.IsNegative() || amount.GreaterThan(d.Amount) {
		return dErrors.New(dErrors.CodeAmountOutOfRange,
			"proposed return must be between 0 and "+d.Amount.String())
	}
	if !amount.Equal(amount.Round(d.Currency.Scale())) {
		return dErrors.New(dErrors.CodeValidation, "amount has more decimal places than "+d.Currency.String()+" allows")
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > maxReasonLength {
		return dErrors.New(dErrors.CodeValidation, "reason must be 1000 characters or less")
	}
	d.Status = StatusReturnProposed
	d.ProposedReturnAmount = &amount
	d.ReturnReason = reason
	d.ReturnProposedAt = &now
	d.UpdatedAt = now
	return nil
}

// Respond records the tenant's answer to the proposal.
func (d *Deposit) Respond(response Response, now time.Time) error {
	next := StatusReturnAccepted
	if response == ResponseDispute {
		next = StatusReturnDisputed
	} else if response != ResponseAccept {
		return dErrors.New(dErrors.CodeValidation, "response must be accept or dispute")
	}
	if err := d.requireTransition(next); err != nil {
		return err
	}
	d.Status = next
	d.TenantResponse = response
	d.TenantRespondedAt = &now
	d.UpdatedAt = now
	return nil
}

// FinalizeReturn closes an accepted return. Disputed deposits stay put.
func (d *Deposit) FinalizeReturn(now time.Time) error {
	if err := d.requireTransition(StatusReturned); err != nil {
		return err
	}
	d.Status = StatusReturned
	d.ReturnedAt = &now
	d.UpdatedAt = now
	return nil
}

// Clone returns a deep copy.
func (d *Deposit) Clone() *Deposit {
	c := *d
	c.PaidAt = cloneTime(d.PaidAt)
	c.ReturnProposedAt = cloneTime(d.ReturnProposedAt)
	c.TenantRespondedAt = cloneTime(d.TenantRespondedAt)
	c.ReturnedAt = cloneTime(d.ReturnedAt)
	if d.ProposedReturnAmount != nil {
		amount := *d.ProposedReturnAmount
		c.ProposedReturnAmount = &amount
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
