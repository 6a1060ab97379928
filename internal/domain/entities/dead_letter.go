package entities

import (
	"encoding/json"
	"time"
)

// DeadLetterRecord parks an outbound event whose publication failed
// irrecoverably. Publication is fire-and-forget relative to the state change
// that already committed, so the record is the only trace of the event until
// it is reprocessed.
//
// Reprocessing bumps AttemptCount and LastFailedAt but leaves the record in
// place until an explicit remove; records older than the retention window are
// purged.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (event_type-index): event_type, for operational triage
type DeadLetterRecord struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`

	ErrorDetail string `json:"error_detail"`

	AttemptCount  int       `json:"attempt_count"`
	FirstFailedAt time.Time `json:"first_failed_at"`
	LastFailedAt  time.Time `json:"last_failed_at"`

	CorrelationID string `json:"correlation_id"`
	SourceService string `json:"source_service"`
}
