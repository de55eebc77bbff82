// Package store persists tenancies in memory or PostgreSQL.
//
// Both implementations enforce state changes with UpdateIfStatus: the write
// only lands if the stored status still equals the caller's expectation.
package store

import (
	"context"
	"sync"

	"rentwise/internal/tenancy/models"
	id "rentwise/pkg/domain"
	"rentwise/pkg/platform/sentinel"
)

type InMemory struct {
	mu        sync.RWMutex
	tenancies map[id.TenancyID]*models.Tenancy
}

func NewInMemory() *InMemory {
	return &InMemory{tenancies: make(map[id.TenancyID]*models.Tenancy)}
}

func (s *InMemory) Create(_ context.Context, t *models.Tenancy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tenancies[t.ID]; exists {
		return sentinel.ErrConflict
	}
	s.tenancies[t.ID] = t.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenancyID id.TenancyID) (*models.Tenancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenancies[tenancyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return t.Clone(), nil
}

// UpdateIfStatus replaces the stored tenancy only if its status is expected.
func (s *InMemory) UpdateIfStatus(_ context.Context, t *models.Tenancy, expected models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tenancies[t.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != expected {
		return sentinel.ErrInvalidState
	}
	s.tenancies[t.ID] = t.Clone()
	return nil
}
