// Package idempotency guarantees exactly-once effect for retried mutating
// requests. Every payment-processor-creating call goes through the Guard; the
// same key is forwarded to the processor, giving two layers of duplicate-charge
// protection.
package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Status of an idempotency record.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// DefaultTTL bounds record storage. Expiry is deliberate: the guard is not an
// at-most-once guarantee beyond the window.
const DefaultTTL = 24 * time.Hour

// Record is the durable trace of one idempotent operation.
type Record struct {
	Key         string    `json:"key"`
	Fingerprint string    `json:"fingerprint"`
	Status      Status    `json:"status"`
	Response    []byte    `json:"response,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Fingerprint hashes a request payload so key reuse with different content can
// be detected.
func Fingerprint(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
