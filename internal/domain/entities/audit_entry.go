package entities

import "time"

// AuditEntityType identifies the entity an audit entry refers to.
type AuditEntityType string

const (
	AuditEntityBooking AuditEntityType = "booking"
	AuditEntityRefund  AuditEntityType = "refund"
)

// AuditEntry is an immutable record of a state transition or money movement.
// Entries are append-only: they are never mutated or deleted and are retained
// far beyond the entity's own lifecycle (compliance requirement).
//
// Failed transition attempts are recorded too, with PreviousState == NewState
// and the denial reason, so failure is traceable rather than invisible.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (entity_id-index): entity_id
type AuditEntry struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	EntityType AuditEntityType `json:"entity_type"`
	EntityID   string          `json:"entity_id"`

	ActorID   string `json:"actor_id"`
	ActorType string `json:"actor_type"`

	Action        string `json:"action"`
	PreviousState string `json:"previous_state"`
	NewState      string `json:"new_state"`

	AmountCents int64 `json:"amount_cents,omitempty"`

	Reason        string `json:"reason,omitempty"`
	CorrelationID string `json:"correlation_id"`
}
