package interfaces

import (
	"context"
	"time"

	"tripmarket/internal/domain/entities"
)

//go:generate mockgen -source=dead_letter_repository_interface.go -destination=mocks/mock_dead_letter_repository.go -package=mock_interfaces

// IDeadLetterRepository abstracts DynamoDB persistence for parked events.
type IDeadLetterRepository interface {
	Save(ctx context.Context, rec entities.DeadLetterRecord) (entities.DeadLetterRecord, error)
	GetByID(ctx context.Context, id string) (entities.DeadLetterRecord, error)
	// List returns records, optionally filtered by event type when eventType is
	// non-empty.
	List(ctx context.Context, eventType string) ([]entities.DeadLetterRecord, error)
	// Update overwrites the attempt bookkeeping of an existing record.
	Update(ctx context.Context, rec entities.DeadLetterRecord) (entities.DeadLetterRecord, error)
	Remove(ctx context.Context, id string) error
	// PurgeOlderThan deletes records whose last failure predates cutoff and
	// returns how many were removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
