// Package models holds rate limit value types shared by stores and middleware.
package models

import (
	"fmt"
	"math"
	"time"

	id "rentwise/pkg/domain"
)

// EndpointClass groups routes that share one per-user budget.
type EndpointClass string

const (
	// ClassVerificationSubmit covers POST /verifications, which fans out to
	// the paid vision provider.
	ClassVerificationSubmit EndpointClass = "verification_submit"
	// ClassWrite covers every other state-changing request.
	ClassWrite EndpointClass = "write"
)

// Limit is a sliding-window budget.
type Limit struct {
	Requests int
	Window   time.Duration
}

func (l Limit) IsZero() bool { return l.Requests <= 0 || l.Window <= 0 }

// Result is the outcome of one Allow call.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, set when denied
}

// NewResult builds a Result from the window state after the decision.
// oldest is the earliest request still inside the window; zero means none.
func NewResult(limit Limit, allowed bool, count int, oldest, now time.Time) *Result {
	resetAt := now.Add(limit.Window)
	if !oldest.IsZero() {
		resetAt = oldest.Add(limit.Window)
	}
	res := &Result{
		Allowed:   allowed,
		Limit:     limit.Requests,
		Remaining: max(limit.Requests-count, 0),
		ResetAt:   resetAt,
	}
	if !allowed {
		res.RetryAfter = max(int(math.Ceil(resetAt.Sub(now).Seconds())), 1)
	}
	return res
}

// UserKey is the bucket key for one user and class.
func UserKey(class EndpointClass, userID id.UserID) string {
	return fmt.Sprintf("ratelimit:%s:user:%s", class, userID)
}
