package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"tripmarket/internal/domain/entities"
	"tripmarket/internal/usecase/interfaces"

	"github.com/google/uuid"
)

var (
	ErrDeadLetterNotFound  = errors.New("dead letter record not found")
	ErrInvalidDeadLetterID = errors.New("invalid dead letter id")
)

// DefaultDeadLetterRetention bounds how long parked events are kept before
// purge removes them.
const DefaultDeadLetterRetention = 30 * 24 * time.Hour

// IDeadLetterUseCase exposes the dead letter store operations: enqueue when a
// publish fails irrecoverably, triage listing grouped by event type, requeue
// and purge.
type IDeadLetterUseCase interface {
	Enqueue(ctx context.Context, eventType string, payload json.RawMessage, cause, correlationID string) (entities.DeadLetterRecord, error)
	GetByID(ctx context.Context, id string) (entities.DeadLetterRecord, error)
	List(ctx context.Context, eventType string) ([]entities.DeadLetterRecord, error)
	Requeue(ctx context.Context, id string) (entities.DeadLetterRecord, error)
	Remove(ctx context.Context, id string) error
	PurgeOld(ctx context.Context) (int, error)
}

type DeadLetterUseCase struct {
	repo      interfaces.IDeadLetterRepository
	publisher interfaces.IEventPublisher
	retention time.Duration
}

var _ IDeadLetterUseCase = (*DeadLetterUseCase)(nil)

func NewDeadLetterUseCase(repo interfaces.IDeadLetterRepository, publisher interfaces.IEventPublisher) *DeadLetterUseCase {
	return &DeadLetterUseCase{repo: repo, publisher: publisher, retention: retentionFromEnv()}
}

func retentionFromEnv() time.Duration {
	if v := os.Getenv("DEAD_LETTER_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	return DefaultDeadLetterRetention
}

// Enqueue parks a failed event for later replay.
func (u *DeadLetterUseCase) Enqueue(ctx context.Context, eventType string, payload json.RawMessage, cause, correlationID string) (entities.DeadLetterRecord, error) {
	now := time.Now().UTC()
	rec := entities.DeadLetterRecord{
		ID:            uuid.NewString(),
		EventType:     eventType,
		Payload:       payload,
		ErrorDetail:   cause,
		AttemptCount:  1,
		FirstFailedAt: now,
		LastFailedAt:  now,
		CorrelationID: correlationID,
		SourceService: sourceService,
	}
	saved, err := u.repo.Save(ctx, rec)
	if err != nil {
		log.Printf("[deadletter][usecase] enqueue failed type=%s err=%v", eventType, err)
		return entities.DeadLetterRecord{}, err
	}
	log.Printf("[deadletter][usecase] enqueued id=%s type=%s correlation_id=%s", saved.ID, eventType, correlationID)
	return saved, nil
}

func (u *DeadLetterUseCase) GetByID(ctx context.Context, id string) (entities.DeadLetterRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.DeadLetterRecord{}, ErrInvalidDeadLetterID
	}
	rec, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.DeadLetterRecord{}, err
	}
	if rec.ID == "" {
		return entities.DeadLetterRecord{}, ErrDeadLetterNotFound
	}
	return rec, nil
}

func (u *DeadLetterUseCase) List(ctx context.Context, eventType string) ([]entities.DeadLetterRecord, error) {
	return u.repo.List(ctx, strings.TrimSpace(eventType))
}

// Requeue re-publishes a parked event. On publish success the record is
// removed; on failure the attempt counter and LastFailedAt are updated and the
// record stays in place until an explicit Remove.
func (u *DeadLetterUseCase) Requeue(ctx context.Context, id string) (entities.DeadLetterRecord, error) {
	rec, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.DeadLetterRecord{}, err
	}
	if u.publisher == nil {
		return entities.DeadLetterRecord{}, errors.New("event publisher not configured")
	}

	pubErr := u.publisher.Publish(ctx, rec.EventType, rec.Payload, rec.CorrelationID)
	if pubErr == nil {
		if err := u.repo.Remove(ctx, rec.ID); err != nil {
			log.Printf("[deadletter][usecase] remove after requeue failed id=%s err=%v", rec.ID, err)
			return entities.DeadLetterRecord{}, err
		}
		log.Printf("[deadletter][usecase] requeued and removed id=%s type=%s", rec.ID, rec.EventType)
		return rec, nil
	}

	rec.AttemptCount++
	rec.LastFailedAt = time.Now().UTC()
	rec.ErrorDetail = pubErr.Error()
	if _, err := u.repo.Update(ctx, rec); err != nil {
		log.Printf("[deadletter][usecase] attempt update failed id=%s err=%v", rec.ID, err)
		return entities.DeadLetterRecord{}, err
	}
	log.Printf("[deadletter][usecase] requeue failed id=%s type=%s attempts=%d err=%v", rec.ID, rec.EventType, rec.AttemptCount, pubErr)
	return rec, pubErr
}

func (u *DeadLetterUseCase) Remove(ctx context.Context, id string) error {
	rec, err := u.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return u.repo.Remove(ctx, rec.ID)
}

// PurgeOld removes records older than the retention window.
func (u *DeadLetterUseCase) PurgeOld(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-u.retention)
	n, err := u.repo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("[deadletter][usecase] purge failed err=%v", err)
		return 0, err
	}
	log.Printf("[deadletter][usecase] purged %d records older than %s", n, cutoff.Format(time.RFC3339))
	return n, nil
}
