package response

import (
	"encoding/json"
	"time"

	"tripmarket/internal/domain/entities"
)

type DeadLetterResponse struct {
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

func FromDeadLetter(rec entities.DeadLetterRecord) DeadLetterResponse {
	return DeadLetterResponse{
		ID:            rec.ID,
		EventType:     rec.EventType,
		Payload:       rec.Payload,
		ErrorDetail:   rec.ErrorDetail,
		AttemptCount:  rec.AttemptCount,
		FirstFailedAt: rec.FirstFailedAt,
		LastFailedAt:  rec.LastFailedAt,
		CorrelationID: rec.CorrelationID,
		SourceService: rec.SourceService,
	}
}

func FromDeadLetters(recs []entities.DeadLetterRecord) []DeadLetterResponse {
	out := make([]DeadLetterResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, FromDeadLetter(rec))
	}
	return out
}
