package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "rentwise/pkg/domain"
)

func TestNewResult(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limit := Limit{Requests: 3, Window: time.Minute}

	t.Run("allowed with no prior requests resets a window from now", func(t *testing.T) {
		res := NewResult(limit, true, 1, time.Time{}, now)
		assert.True(t, res.Allowed)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, 2, res.Remaining)
		assert.Equal(t, now.Add(time.Minute), res.ResetAt)
		assert.Zero(t, res.RetryAfter)
	})

	t.Run("denied retries when the oldest request leaves the window", func(t *testing.T) {
		oldest := now.Add(-50 * time.Second)
		res := NewResult(limit, false, 3, oldest, now)
		assert.False(t, res.Allowed)
		assert.Zero(t, res.Remaining)
		assert.Equal(t, oldest.Add(time.Minute), res.ResetAt)
		assert.Equal(t, 10, res.RetryAfter)
	})

	t.Run("retry after is at least one second", func(t *testing.T) {
		res := NewResult(limit, false, 3, now.Add(-time.Minute+time.Millisecond), now)
		assert.Equal(t, 1, res.RetryAfter)
	})
}

func TestUserKey(t *testing.T) {
	u := id.UserID(uuid.MustParse("7d3c1a52-4a7e-4e0b-9a35-5f3f7a0c2b11"))
	assert.Equal(t, "ratelimit:verification_submit:user:7d3c1a52-4a7e-4e0b-9a35-5f3f7a0c2b11",
		UserKey(ClassVerificationSubmit, u))
}

func TestLimitIsZero(t *testing.T) {
	assert.True(t, Limit{}.IsZero())
	assert.True(t, Limit{Requests: 5}.IsZero())
	assert.False(t, Limit{Requests: 5, Window: time.Second}.IsZero())
}
