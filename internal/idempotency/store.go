package idempotency

import (
	"context"
	"sync"
	"time"
)

// Store is the durable shared key/value abstraction behind the Guard.
// Implementations must serialize access per key while allowing full
// concurrency across keys, and must expire records after their TTL.
type Store interface {
	// Claim atomically writes rec if no live record exists for rec.Key.
	// When a record already exists it is returned with created=false and the
	// store is left untouched.
	Claim(ctx context.Context, rec Record, ttl time.Duration) (existing Record, created bool, err error)
	// Complete marks the record for key as completed and caches the response,
	// preserving the remaining TTL.
	Complete(ctx context.Context, key string, response []byte) error
	// Release deletes the record for key so the caller may retry.
	Release(ctx context.Context, key string) error
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

// MemoryStore is an in-process Store used by tests and local mode. Production
// substitutes the Redis-backed store without touching call sites.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Claim(_ context.Context, rec Record, ttl time.Duration) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[rec.Key]; ok && s.now().Before(e.expiresAt) {
		return e.rec, false, nil
	}
	s.entries[rec.Key] = memoryEntry{rec: rec, expiresAt: s.now().Add(ttl)}
	return Record{}, true, nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, response []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil
	}
	e.rec.Status = StatusCompleted
	e.rec.Response = response
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
