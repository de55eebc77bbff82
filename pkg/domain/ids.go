// Package domain holds the primitive value types shared across modules:
// typed identifiers and currency codes.
//
// Typed IDs wrap uuid.UUID so that a DepositID can never be passed where a
// TenancyID is expected. Construct them with the Parse* functions at trust
// boundaries; direct conversion from uuid.UUID is for trusted code paths
// (stores, generators, tests).
package domain

import (
	"github.com/google/uuid"

	dErrors "rentwise/pkg/domain-errors"
)

const maxIDLength = 64

type (
	UserID     uuid.UUID
	TenancyID  uuid.UUID
	PropertyID uuid.UUID
	DepositID  uuid.UUID
	AttemptID  uuid.UUID
)

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id TenancyID) String() string  { return uuid.UUID(id).String() }
func (id PropertyID) String() string { return uuid.UUID(id).String() }
func (id DepositID) String() string  { return uuid.UUID(id).String() }
func (id AttemptID) String() string  { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TenancyID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id PropertyID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DepositID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id AttemptID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func NewTenancyID() TenancyID { return TenancyID(uuid.New()) }
func NewDepositID() DepositID { return DepositID(uuid.New()) }
func NewAttemptID() AttemptID { return AttemptID(uuid.New()) }

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

func ParseTenancyID(s string) (TenancyID, error) {
	u, err := parseUUID(s, "tenancy id")
	return TenancyID(u), err
}

func ParsePropertyID(s string) (PropertyID, error) {
	u, err := parseUUID(s, "property id")
	return PropertyID(u), err
}

func ParseDepositID(s string) (DepositID, error) {
	u, err := parseUUID(s, "deposit id")
	return DepositID(u), err
}

func ParseAttemptID(s string) (AttemptID, error) {
	u, err := parseUUID(s, "verification attempt id")
	return AttemptID(u), err
}

// parseUUID rejects empty, oversized, malformed and nil UUIDs.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	if len(s) > maxIDLength {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is too long")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	return u, nil
}
