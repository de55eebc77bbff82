// Package store persists deposits. UpdateIfStatus is the concurrency
// enforcement point: a transition only lands if the stored status still
// matches the one the caller read.
package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"rentwise/internal/deposit/models"
	id "rentwise/pkg/domain"
	"rentwise/pkg/platform/sentinel"
)

type InMemory struct {
	mu       sync.RWMutex
	deposits map[id.DepositID]*models.Deposit
}

func NewInMemory() *InMemory {
	return &InMemory{deposits: make(map[id.DepositID]*models.Deposit)}
}

func (s *InMemory) Create(_ context.Context, d *models.Deposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.deposits[d.ID]; exists {
		return sentinel.ErrConflict
	}
	s.deposits[d.ID] = d.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, depositID id.DepositID) (*models.Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deposits[depositID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return d.Clone(), nil
}

// ListByTenancy returns the tenancy's deposits oldest first, optionally
// restricted to statuses.
func (s *InMemory) ListByTenancy(_ context.Context, tenancyID id.TenancyID, statuses ...models.Status) ([]*models.Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Deposit, 0)
	for _, d := range s.deposits {
		if d.TenancyID != tenancyID {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, d.Status) {
			continue
		}
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RequestedAt.Before(out[j].RequestedAt)
	})
	return out, nil
}

func (s *InMemory) UpdateIfStatus(_ context.Context, d *models.Deposit, expected models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.deposits[d.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != expected {
		return sentinel.ErrInvalidState
	}
	s.deposits[d.ID] = d.Clone()
	return nil
}
