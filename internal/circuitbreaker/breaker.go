// Package circuitbreaker guards calls to unreliable remote dependencies
// (payment processor, event bus) with per-dependency fast-fail.
package circuitbreaker

import (
	"fmt"
	"sync"
	"time"
)

// State of a breaker.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// OpenError is returned when the breaker rejects a call without executing it.
// RetryAfter is the remaining cooldown; callers must surface it as a retryable
// failure, never swallow it.
type OpenError struct {
	Name       string
	RetryAfter time.Duration
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit breaker %q is open, retry after %s", e.Name, e.RetryAfter)
}

// Config tunes a breaker. Zero fields fall back to DefaultConfig values.
type Config struct {
	// FailureThreshold failures within Window open the breaker.
	FailureThreshold int
	Window           time.Duration
	// ResetTimeout is the open-state cooldown before probing resumes.
	ResetTimeout time.Duration
	// SuccessThreshold consecutive half-open probe successes close the breaker.
	SuccessThreshold int
	// MaxProbes bounds concurrent half-open probe calls.
	MaxProbes int
}

func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		Window:           time.Minute,
		ResetTimeout:     30 * time.Second,
		SuccessThreshold: 2,
		MaxProbes:        1,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = def.FailureThreshold
	}
	if c.Window <= 0 {
		c.Window = def.Window
	}
	if c.ResetTimeout <= 0 {
		c.ResetTimeout = def.ResetTimeout
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = def.SuccessThreshold
	}
	if c.MaxProbes <= 0 {
		c.MaxProbes = def.MaxProbes
	}
	return c
}

// Breaker is a single named circuit breaker. State is transient and in-memory:
// it is a protective heuristic, rebuilt from zero on restart, not a source of
// truth. All methods are safe for concurrent use; updates to one breaker are
// serialized while distinct breakers proceed fully concurrently.
//
// The open -> half-open transition is evaluated lazily on the next call or
// state check; there is no background timer.
type Breaker struct {
	name string
	cfg  Config
	now  func() time.Time

	mu             sync.Mutex
	state          State
	failures       []time.Time
	successes      int
	probesInFlight int
	openedAt       time.Time
}

func New(name string, cfg Config) *Breaker {
	return &Breaker{
		name:  name,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
		state: StateClosed,
	}
}

// Execute runs fn unless the breaker rejects the call, records the outcome and
// returns fn's original error on failure.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.acquire(); err != nil {
		return err
	}
	err := fn()
	b.record(err == nil)
	return err
}

// Allow reports whether a call would currently pass through, without
// executing anything or consuming a probe slot.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshLocked()
	if b.state == StateOpen {
		return false
	}
	if b.state == StateHalfOpen && b.probesInFlight >= b.cfg.MaxProbes {
		return false
	}
	return true
}

// State returns the current mode, applying the lazy open -> half-open check.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshLocked()
	return b.state
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshLocked()

	switch b.state {
	case StateOpen:
		return &OpenError{Name: b.name, RetryAfter: b.remainingCooldownLocked()}
	case StateHalfOpen:
		if b.probesInFlight >= b.cfg.MaxProbes {
			return &OpenError{Name: b.name, RetryAfter: b.remainingCooldownLocked()}
		}
		b.probesInFlight++
	}
	return nil
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		if b.probesInFlight > 0 {
			b.probesInFlight--
		}
		if !success {
			b.openLocked()
			return
		}
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.closeLocked()
		}

	case StateClosed:
		if success {
			return
		}
		now := b.now()
		b.failures = append(b.failures, now)
		b.pruneLocked(now)
		if len(b.failures) >= b.cfg.FailureThreshold {
			b.openLocked()
		}

	case StateOpen:
		// A call admitted before the breaker opened; its outcome no longer
		// changes the decision.
	}
}

// refreshLocked applies the lazy open -> half-open transition.
func (b *Breaker) refreshLocked() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cfg.ResetTimeout {
		b.state = StateHalfOpen
		b.successes = 0
		b.probesInFlight = 0
	}
}

func (b *Breaker) openLocked() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.failures = nil
	b.successes = 0
	b.probesInFlight = 0
}

func (b *Breaker) closeLocked() {
	b.state = StateClosed
	b.failures = nil
	b.successes = 0
	b.probesInFlight = 0
}

func (b *Breaker) remainingCooldownLocked() time.Duration {
	if b.state != StateOpen {
		return 0
	}
	remaining := b.cfg.ResetTimeout - b.now().Sub(b.openedAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

func (b *Breaker) pruneLocked(now time.Time) {
	cutoff := now.Add(-b.cfg.Window)
	kept := b.failures[:0]
	for _, ts := range b.failures {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	b.failures = kept
}
