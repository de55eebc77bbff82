package audit

import (
	"context"
	"time"

	id "rentwise/pkg/domain"
)

// EventCategory classifies audit events by their retention and routing needs.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: money held on
	// behalf of a tenant and identity decisions. Fail-closed, long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. It is
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID            string
	Category      EventCategory
	Timestamp     time.Time
	UserID        id.UserID // actor who performed the action
	AggregateType string
	AggregateID   string
	Action        string
	Decision      string // resulting status, when the action changes one
	Reason        string
	RequestID     string
	Details       map[string]string
}

type AuditEvent string

const (
	EventTenancyCreated  AuditEvent = "tenancy_created"
	EventTenancyAccepted AuditEvent = "tenancy_invite_accepted"
	EventTenancyEnded    AuditEvent = "tenancy_ended"

	EventDepositRequested      AuditEvent = "deposit_requested"
	EventDepositPaid           AuditEvent = "deposit_paid"
	EventDepositReturnProposed AuditEvent = "deposit_return_proposed"
	EventDepositReturnAccepted AuditEvent = "deposit_return_accepted"
	EventDepositReturnDisputed AuditEvent = "deposit_return_disputed"
	EventDepositReturned       AuditEvent = "deposit_returned"

	EventVerificationDecided AuditEvent = "verification_decided"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventTenancyCreated:        CategoryCompliance,
	EventTenancyAccepted:       CategoryCompliance,
	EventTenancyEnded:          CategoryCompliance,
	EventDepositRequested:      CategoryCompliance,
	EventDepositPaid:           CategoryCompliance,
	EventDepositReturnProposed: CategoryCompliance,
	EventDepositReturnAccepted: CategoryCompliance,
	EventDepositReturnDisputed: CategoryCompliance,
	EventDepositReturned:       CategoryCompliance,
	EventVerificationDecided:   CategoryCompliance,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// ComplianceEvent is the input to the fail-closed compliance publisher.
type ComplianceEvent struct {
	Timestamp     time.Time // set automatically if zero
	UserID        id.UserID // actor (required)
	AggregateType string    // "deposit", "tenancy", "verification_attempt"
	AggregateID   string
	Action        AuditEvent
	Decision      string
	Reason        string
	RequestID     string
	Details       map[string]string
}

func (e ComplianceEvent) ToEvent() Event {
	return Event{
		Category:      CategoryCompliance,
		Timestamp:     e.Timestamp,
		UserID:        e.UserID,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Action:        string(e.Action),
		Decision:      e.Decision,
		Reason:        e.Reason,
		RequestID:     e.RequestID,
		Details:       e.Details,
	}
}

// Store persists audit events. The Postgres implementation writes to the
// outbox inside the caller's transaction.
type Store interface {
	Append(ctx context.Context, event Event) error
}
