//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"rentwise/internal/tenancy/models"
	"rentwise/internal/tenancy/store"
	id "rentwise/pkg/domain"
	"rentwise/pkg/platform/sentinel"
	"rentwise/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "deposits", "tenancies"))
}

func newTenancy() *models.Tenancy {
	now := time.Now().UTC().Truncate(time.Microsecond)
	expires := now.Add(7 * 24 * time.Hour)
	return &models.Tenancy{
		ID:              id.NewTenancyID(),
		LandlordID:      id.UserID(uuid.New()),
		PropertyID:      id.PropertyID(uuid.New()),
		PropertyLabel:   "Flat 2, 14 Mill Lane",
		Status:          models.StatusPendingInvite,
		StartDate:       time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		InviteTokenHash: "$2a$10$hash",
		InviteExpiresAt: &expires,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	t := newTenancy()
	s.Require().NoError(s.store.Create(ctx, t))

	found, err := s.store.FindByID(ctx, t.ID)
	s.Require().NoError(err)
	s.Equal(t.LandlordID, found.LandlordID)
	s.True(found.TenantID.IsNil())
	s.Equal(t.PropertyLabel, found.PropertyLabel)
	s.Equal(t.InviteTokenHash, found.InviteTokenHash)
	s.Require().NotNil(found.InviteExpiresAt)
	s.True(t.InviteExpiresAt.Equal(*found.InviteExpiresAt))
	s.Nil(found.EndDate)

	s.ErrorIs(s.store.Create(ctx, t), sentinel.ErrConflict)

	_, err = s.store.FindByID(ctx, id.NewTenancyID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdateIfStatus() {
	ctx := context.Background()

	s.Run("accept then end", func() {
		t := newTenancy()
		s.Require().NoError(s.store.Create(ctx, t))

		tenant := id.UserID(uuid.New())
		t.ApplyAcceptance(tenant, time.Now().UTC())
		s.Require().NoError(s.store.UpdateIfStatus(ctx, t, models.StatusPendingInvite))

		t.ApplyEnd(time.Now().UTC())
		s.Require().NoError(s.store.UpdateIfStatus(ctx, t, models.StatusActive))

		found, err := s.store.FindByID(ctx, t.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusEnded, found.Status)
		s.Equal(tenant, found.TenantID)
		s.Empty(found.InviteTokenHash)
		s.NotNil(found.ActivatedAt)
		s.NotNil(found.EndedAt)
	})

	s.Run("stale status", func() {
		t := newTenancy()
		s.Require().NoError(s.store.Create(ctx, t))
		t.ApplyEnd(time.Now().UTC())
		s.ErrorIs(s.store.UpdateIfStatus(ctx, t, models.StatusActive), sentinel.ErrInvalidState)
	})

	s.Run("missing row", func() {
		s.ErrorIs(s.store.UpdateIfStatus(ctx, newTenancy(), models.StatusPendingInvite), sentinel.ErrNotFound)
	})

	s.Run("concurrent accepts: exactly one wins", func() {
		t := newTenancy()
		s.Require().NoError(s.store.Create(ctx, t))

		var wins atomic.Int32
		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c := t.Clone()
				c.ApplyAcceptance(id.UserID(uuid.New()), time.Now().UTC())
				if s.store.UpdateIfStatus(ctx, c, models.StatusPendingInvite) == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		s.Equal(int32(1), wins.Load())
	})
}
