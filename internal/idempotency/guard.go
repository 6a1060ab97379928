package idempotency

import (
	"context"
	"errors"
	"log"
	"time"
)

var (
	// ErrConflict: the key is being reused for a different request payload.
	ErrConflict = errors.New("idempotency key reused with different payload")
	// ErrInProgress: a concurrent attempt with the same key and payload is
	// already running. The caller must retry later, not assume failure.
	ErrInProgress = errors.New("duplicate request in progress")
)

// Operation produces the response to cache under the idempotency key.
type Operation func(ctx context.Context) ([]byte, error)

// Result is the guarded outcome. Replayed is true when the response was served
// from the cache of a previously completed attempt.
type Result struct {
	Response []byte
	Replayed bool
}

// Guard wraps mutating operations with at-most-one-execution semantics within
// the record TTL.
type Guard struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewGuard(store Store) *Guard {
	return &Guard{store: store, ttl: DefaultTTL, now: time.Now}
}

// Execute runs op at most once for (key, fingerprint).
//
// First sight of a key claims a processing record, runs op, caches the
// response on success and releases the record on failure so the caller may
// legitimately retry. An existing record with a different fingerprint is a
// caller error (ErrConflict); same fingerprint still processing is
// ErrInProgress; same fingerprint completed replays the cached response
// verbatim.
//
// A context cancellation observed from op does NOT release the record: the
// underlying operation may still have succeeded upstream, and releasing would
// open a duplicate-charge race. The record stays processing until it falls out
// via TTL.
func (g *Guard) Execute(ctx context.Context, key, fingerprint string, op Operation) (Result, error) {
	rec := Record{
		Key:         key,
		Fingerprint: fingerprint,
		Status:      StatusProcessing,
		CreatedAt:   g.now().UTC(),
	}

	existing, created, err := g.store.Claim(ctx, rec, g.ttl)
	if err != nil {
		return Result{}, err
	}

	if !created {
		if existing.Fingerprint != fingerprint {
			log.Printf("[idempotency][guard] key reuse with different payload key=%s", key)
			return Result{}, ErrConflict
		}
		switch existing.Status {
		case StatusCompleted:
			log.Printf("[idempotency][guard] replaying cached response key=%s", key)
			return Result{Response: existing.Response, Replayed: true}, nil
		default:
			log.Printf("[idempotency][guard] duplicate in progress key=%s", key)
			return Result{}, ErrInProgress
		}
	}

	response, opErr := op(ctx)
	if opErr != nil {
		if errors.Is(opErr, context.Canceled) || errors.Is(opErr, context.DeadlineExceeded) {
			log.Printf("[idempotency][guard] operation interrupted, keeping processing record key=%s err=%v", key, opErr)
			return Result{}, opErr
		}
		if relErr := g.store.Release(ctx, key); relErr != nil {
			log.Printf("[idempotency][guard] release failed key=%s err=%v", key, relErr)
		}
		return Result{}, opErr
	}

	if err := g.store.Complete(ctx, key, response); err != nil {
		// The side effect happened; a failed cache write must not look like an
		// operation failure to the caller.
		log.Printf("[idempotency][guard] complete failed key=%s err=%v", key, err)
	}
	return Result{Response: response}, nil
}
