package models

import (
	"strings"
	"time"

	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
)

// Status is the lifecycle state of a tenancy.
type Status string

const (
	StatusPendingInvite Status = "pending_invite"
	StatusActive        Status = "active"
	StatusEnded         Status = "ended"
)

var transitions = map[Status]Status{
	StatusPendingInvite: StatusActive,
	StatusActive:        StatusEnded,
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingInvite, StatusActive, StatusEnded:
		return true
	}
	return false
}

// CanTransitionTo reports whether next directly follows s.
func (s Status) CanTransitionTo(next Status) bool {
	return transitions[s] == next
}

const maxPropertyLabelLength = 200

// Tenancy binds one landlord, one tenant and one property.
//
// Invariants:
//   - TenantID is nil until the invitation is accepted
//   - TenantID never equals LandlordID
//   - Status only moves pending_invite -> active -> ended
//   - InviteTokenHash is cleared once the invitation is used
type Tenancy struct {
	ID              id.TenancyID  `json:"id"`
	LandlordID      id.UserID     `json:"landlord_id"`
	TenantID        id.UserID     `json:"tenant_id"`
	PropertyID      id.PropertyID `json:"property_id"`
	PropertyLabel   string        `json:"property_label"`
	Status          Status        `json:"status"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         *time.Time    `json:"end_date,omitempty"`
	InviteTokenHash string        `json:"-"`
	InviteExpiresAt *time.Time    `json:"invite_expires_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	ActivatedAt     *time.Time    `json:"activated_at,omitempty"`
	EndedAt         *time.Time    `json:"ended_at,omitempty"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// CreateParams carries the landlord-supplied fields of a new tenancy.
type CreateParams struct {
	PropertyID    id.PropertyID
	PropertyLabel string
	StartDate     time.Time
	EndDate       *time.Time
}

// NewTenancy builds a tenancy awaiting its tenant.
func NewTenancy(tenancyID id.TenancyID, landlord id.UserID, params CreateParams, inviteHash string, inviteExpiresAt, now time.Time) (*Tenancy, error) {
	if landlord.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "landlord is required")
	}
	if params.PropertyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "property_id is required")
	}
	label := strings.TrimSpace(params.PropertyLabel)
	if len(label) > maxPropertyLabelLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "property_label must be 200 characters or less")
	}
	if params.StartDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "start_date is required")
	}
	if params.EndDate != nil && !params.EndDate.After(params.StartDate) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "end_date must be after start_date")
	}
	if inviteHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invitation hash is required")
	}
	return &Tenancy{
		ID:              tenancyID,
		LandlordID:      landlord,
		PropertyID:      params.PropertyID,
		PropertyLabel:   label,
		Status:          StatusPendingInvite,
		StartDate:       params.StartDate,
		EndDate:         params.EndDate,
		InviteTokenHash: inviteHash,
		InviteExpiresAt: &inviteExpiresAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (t *Tenancy) IsActive() bool {
	return t.Status == StatusActive
}

func (t *Tenancy) IsLandlord(userID id.UserID) bool {
	return !userID.IsNil() && t.LandlordID == userID
}

func (t *Tenancy) IsTenant(userID id.UserID) bool {
	return !userID.IsNil() && t.TenantID == userID
}

// IsParty reports whether userID is the landlord or tenant of record.
func (t *Tenancy) IsParty(userID id.UserID) bool {
	return t.IsLandlord(userID) || t.IsTenant(userID)
}

// CanAccept checks that tenant may take up the invitation at now.
// The token itself is verified by the caller against InviteTokenHash.
func (t *Tenancy) CanAccept(tenant id.UserID, now time.Time) error {
	if !t.Status.CanTransitionTo(StatusActive) {
		return dErrors.New(dErrors.CodeInvalidStateTransition, "tenancy invitation is no longer open")
	}
	if t.IsLandlord(tenant) {
		return dErrors.New(dErrors.CodeValidation, "landlord cannot accept their own invitation")
	}
	if t.InviteExpiresAt == nil || !now.Before(*t.InviteExpiresAt) {
		return dErrors.New(dErrors.CodeValidation, "invitation has expired")
	}
	return nil
}

// ApplyAcceptance binds the tenant and activates the tenancy.
// Call CanAccept first.
func (t *Tenancy) ApplyAcceptance(tenant id.UserID, now time.Time) {
	t.TenantID = tenant
	t.Status = StatusActive
	t.InviteTokenHash = ""
	t.InviteExpiresAt = nil
	t.ActivatedAt = &now
	t.UpdatedAt = now
}

func (t *Tenancy) CanEnd() error {
	if !t.Status.CanTransitionTo(StatusEnded) {
		return dErrors.New(dErrors.CodeInvalidStateTransition, "only an active tenancy can be ended")
	}
	return nil
}

func (t *Tenancy) ApplyEnd(now time.Time) {
	t.Status = StatusEnded
	t.EndedAt = &now
	t.UpdatedAt = now
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (t *Tenancy) Clone() *Tenancy {
	c := *t
	c.EndDate = cloneTime(t.EndDate)
	c.InviteExpiresAt = cloneTime(t.InviteExpiresAt)
	c.ActivatedAt = cloneTime(t.ActivatedAt)
	c.EndedAt = cloneTime(t.EndedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
