// Package store persists verification attempts. Attempts are append-only.
package store

import (
	"context"
	"sort"
	"sync"

	"rentwise/internal/verification/models"
	id "rentwise/pkg/domain"
	"rentwise/pkg/platform/sentinel"
)

type InMemory struct {
	mu       sync.RWMutex
	attempts map[id.AttemptID]*models.Attempt
}

func NewInMemory() *InMemory {
	return &InMemory{attempts: make(map[id.AttemptID]*models.Attempt)}
}

func (s *InMemory) Create(_ context.Context, a *models.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.attempts[a.ID]; exists {
		return sentinel.ErrConflict
	}
	s.attempts[a.ID] = a.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, attemptID id.AttemptID) (*models.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attempts[attemptID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return a.Clone(), nil
}

// ListByUser returns the user's attempts newest first.
func (s *InMemory) ListByUser(_ context.Context, userID id.UserID) ([]*models.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Attempt, 0)
	for _, a := range s.attempts {
		if a.UserID == userID {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// FindLatestByUser returns sentinel.ErrNotFound when the user has no attempts.
func (s *InMemory) FindLatestByUser(ctx context.Context, userID id.UserID) (*models.Attempt, error) {
	attempts, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return attempts[0], nil
}
