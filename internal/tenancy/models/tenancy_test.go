package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "rentwise/pkg/domain"
	dErrors "rentwise/pkg/domain-errors"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newPending(t *testing.T) *Tenancy {
	t.Helper()
	tenancy, err := NewTenancy(id.NewTenancyID(), id.UserID(uuid.New()), CreateParams{
		PropertyID:    id.PropertyID(uuid.New()),
		PropertyLabel: "  Flat 2, 14 Mill Lane  ",
		StartDate:     now.AddDate(0, 0, 14),
	}, "hash", now.Add(7*24*time.Hour), now)
	require.NoError(t, err)
	return tenancy
}

func TestNewTenancy(t *testing.T) {
	t.Run("starts pending with trimmed label", func(t *testing.T) {
		tenancy := newPending(t)
		assert.Equal(t, StatusPendingInvite, tenancy.Status)
		assert.Equal(t, "Flat 2, 14 Mill Lane", tenancy.PropertyLabel)
		assert.True(t, tenancy.TenantID.IsNil())
		assert.Equal(t, now, tenancy.CreatedAt)
	})

	t.Run("rejects end date before start date", func(t *testing.T) {
		end := now.AddDate(0, 0, -1)
		_, err := NewTenancy(id.NewTenancyID(), id.UserID(uuid.New()), CreateParams{
			PropertyID: id.PropertyID(uuid.New()),
			StartDate:  now,
			EndDate:    &end,
		}, "hash", now, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("requires property", func(t *testing.T) {
		_, err := NewTenancy(id.NewTenancyID(), id.UserID(uuid.New()), CreateParams{StartDate: now}, "hash", now, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestAcceptance(t *testing.T) {
	tenant := id.UserID(uuid.New())

	t.Run("binds tenant and activates", func(t *testing.T) {
		tenancy := newPending(t)
		require.NoError(t, tenancy.CanAccept(tenant, now.Add(time.Hour)))
		tenancy.ApplyAcceptance(tenant, now.Add(time.Hour))

		assert.Equal(t, StatusActive, tenancy.Status)
		assert.Equal(t, tenant, tenancy.TenantID)
		assert.Empty(t, tenancy.InviteTokenHash)
		assert.Nil(t, tenancy.InviteExpiresAt)
		require.NotNil(t, tenancy.ActivatedAt)
		assert.True(t, tenancy.IsParty(tenant))
	})

	t.Run("landlord cannot accept", func(t *testing.T) {
		tenancy := newPending(t)
		err := tenancy.CanAccept(tenancy.LandlordID, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("expired invitation", func(t *testing.T) {
		tenancy := newPending(t)
		err := tenancy.CanAccept(tenant, now.Add(7*24*time.Hour))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("already active", func(t *testing.T) {
		tenancy := newPending(t)
		tenancy.ApplyAcceptance(tenant, now)
		err := tenancy.CanAccept(id.UserID(uuid.New()), now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidStateTransition))
	})
}

func TestEnd(t *testing.T) {
	tenancy := newPending(t)
	assert.True(t, dErrors.HasCode(tenancy.CanEnd(), dErrors.CodeInvalidStateTransition), "pending tenancy cannot end")

	tenancy.ApplyAcceptance(id.UserID(uuid.New()), now)
	require.NoError(t, tenancy.CanEnd())
	tenancy.ApplyEnd(now.Add(time.Hour))
	assert.Equal(t, StatusEnded, tenancy.Status)
	assert.False(t, tenancy.IsActive())

	assert.True(t, dErrors.HasCode(tenancy.CanEnd(), dErrors.CodeInvalidStateTransition), "ended is terminal")
}

func TestClone(t *testing.T) {
	tenancy := newPending(t)
	c := tenancy.Clone()
	*c.InviteExpiresAt = now.Add(-time.Hour)
	assert.NotEqual(t, *tenancy.InviteExpiresAt, *c.InviteExpiresAt)
}
