package usecase

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"tripmarket/internal/circuitbreaker"
	"tripmarket/internal/domain/entities"
	"tripmarket/internal/usecase/interfaces"

	"github.com/google/uuid"
)

const sourceService = "booking-financial-core"

// EventEmitter publishes domain events best-effort. A publish failure, a
// breaker rejection or a marshal failure never reaches the caller: the event
// is parked in the dead letter store instead. Event publication is
// fire-and-forget relative to the state change that already committed.
type EventEmitter struct {
	publisher   interfaces.IEventPublisher
	deadLetters interfaces.IDeadLetterRepository
	breaker     *circuitbreaker.Breaker
}

func NewEventEmitter(publisher interfaces.IEventPublisher, deadLetters interfaces.IDeadLetterRepository, breaker *circuitbreaker.Breaker) *EventEmitter {
	return &EventEmitter{publisher: publisher, deadLetters: deadLetters, breaker: breaker}
}

// Emit marshals payload and publishes it through the event-bus breaker.
func (e *EventEmitter) Emit(ctx context.Context, eventType string, payload any, correlationID string) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[events][emitter] marshal failed type=%s correlation_id=%s err=%v", eventType, correlationID, err)
		return
	}

	if e.publisher == nil {
		e.park(ctx, eventType, body, correlationID, "event publisher not configured")
		return
	}

	publish := func() error { return e.publisher.Publish(ctx, eventType, body, correlationID) }
	if e.breaker != nil {
		err = e.breaker.Execute(publish)
	} else {
		err = publish()
	}
	if err != nil {
		log.Printf("[events][emitter] publish failed type=%s correlation_id=%s err=%v", eventType, correlationID, err)
		e.park(ctx, eventType, body, correlationID, err.Error())
		return
	}
	log.Printf("[events][emitter] published type=%s correlation_id=%s", eventType, correlationID)
}

func (e *EventEmitter) park(ctx context.Context, eventType string, body []byte, correlationID, cause string) {
	if e.deadLetters == nil {
		log.Printf("[events][emitter] dead letter store not configured, dropping type=%s correlation_id=%s", eventType, correlationID)
		return
	}
	now := time.Now().UTC()
	rec := entities.DeadLetterRecord{
		ID:            uuid.NewString(),
		EventType:     eventType,
		Payload:       body,
		ErrorDetail:   cause,
		AttemptCount:  1,
		FirstFailedAt: now,
		LastFailedAt:  now,
		CorrelationID: correlationID,
		SourceService: sourceService,
	}
	if _, err := e.deadLetters.Save(ctx, rec); err != nil {
		// Last resort: the event is lost, leave a loud trace.
		log.Printf("[events][emitter] dead letter save failed type=%s correlation_id=%s err=%v", eventType, correlationID, err)
		return
	}
	log.Printf("[events][emitter] parked dead letter id=%s type=%s correlation_id=%s", rec.ID, eventType, correlationID)
}
