package repository

import (
	"context"
	"testing"
	"time"

	"tripmarket/internal/idempotency"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedisStore(t *testing.T) (*RedisIdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisIdempotencyStore(client), mr
}

func TestRedisIdempotencyStoreClaim(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	rec := idempotency.Record{Key: "key-1", Fingerprint: "fp-1", Status: idempotency.StatusProcessing, CreatedAt: time.Now().UTC()}

	_, created, err := store.Claim(ctx, rec, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatalf("expected first claim to create the record")
	}

	existing, created, err := store.Claim(ctx, idempotency.Record{Key: "key-1", Fingerprint: "fp-other"}, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatalf("expected second claim to find the existing record")
	}
	if existing.Fingerprint != "fp-1" || existing.Status != idempotency.StatusProcessing {
		t.Fatalf("unexpected existing record: %+v", existing)
	}
}

func TestRedisIdempotencyStoreComplete(t *testing.T) {
	t.Run("keeps the remaining expiry window", func(t *testing.T) {
		store, mr := setupRedisStore(t)
		ctx := context.Background()

		rec := idempotency.Record{Key: "key-1", Fingerprint: "fp-1", Status: idempotency.StatusProcessing, CreatedAt: time.Now().UTC()}
		if _, _, err := store.Claim(ctx, rec, time.Hour); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mr.FastForward(30 * time.Minute)

		if err := store.Complete(ctx, "key-1", []byte(`{"id":"bk-1"}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ttl := mr.TTL("idem:key-1")
		if ttl <= 0 {
			t.Fatalf("expected completed record to keep a TTL, got %v", ttl)
		}
		if ttl > 30*time.Minute {
			t.Fatalf("expected TTL at most the remaining window, got %v", ttl)
		}

		existing, created, err := store.Claim(ctx, idempotency.Record{Key: "key-1"}, time.Hour)
		if err != nil || created {
			t.Fatalf("expected replay of completed record, created=%v err=%v", created, err)
		}
		if existing.Status != idempotency.StatusCompleted || string(existing.Response) != `{"id":"bk-1"}` {
			t.Fatalf("unexpected completed record: %+v", existing)
		}
	})

	t.Run("does not resurrect an expired record", func(t *testing.T) {
		store, mr := setupRedisStore(t)
		ctx := context.Background()

		rec := idempotency.Record{Key: "key-1", Fingerprint: "fp-1", Status: idempotency.StatusProcessing, CreatedAt: time.Now().UTC()}
		if _, _, err := store.Claim(ctx, rec, time.Minute); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mr.FastForward(2 * time.Minute)

		if err := store.Complete(ctx, "key-1", []byte(`{}`)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if mr.Exists("idem:key-1") {
			t.Fatalf("expected expired record to stay gone after Complete")
		}
	})
}

func TestRedisIdempotencyStoreRelease(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	rec := idempotency.Record{Key: "key-1", Fingerprint: "fp-1", Status: idempotency.StatusProcessing, CreatedAt: time.Now().UTC()}
	if _, _, err := store.Claim(ctx, rec, time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Release(ctx, "key-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mr.Exists("idem:key-1") {
		t.Fatalf("expected released record to be deleted")
	}
}
