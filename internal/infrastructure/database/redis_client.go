package database

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis creates a Redis client from environment variables.
//
// Supported env vars:
//   - REDIS_ADDR (default: localhost:6379)
//   - REDIS_PASSWORD (optional)
//   - REDIS_DB (default: 0)
//
// Returns nil when the server is unreachable; callers fall back to the
// in-memory idempotency store, which keeps single-instance deployments and
// local runs working without Redis.
func ConnectRedis() *redis.Client {
	addr := getenvDefault("REDIS_ADDR", "localhost:6379")

	db := 0
	if v := getenvDefault("REDIS_DB", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: getenvDefault("REDIS_PASSWORD", ""),
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("[database][redis] ping failed addr=%s err=%v", addr, err)
		return nil
	}
	log.Printf("[database][redis] connected addr=%s db=%d", addr, db)
	return client
}
