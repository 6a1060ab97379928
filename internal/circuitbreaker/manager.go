package circuitbreaker

import (
	"log"
	"sync"
)

// Manager keeps one breaker per named dependency. Distinct dependencies are
// fully independent; GetOrCreate is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
}

func NewManager() *Manager {
	return &Manager{breakers: make(map[string]*Breaker)}
}

// GetOrCreate returns the breaker for name, creating it with cfg on first use.
// The config of an existing breaker is not changed.
func (m *Manager) GetOrCreate(name string, cfg Config) *Breaker {
	m.mu.RLock()
	b, ok := m.breakers[name]
	m.mu.RUnlock()
	if ok {
		return b
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok = m.breakers[name]; ok {
		return b
	}
	b = New(name, cfg)
	m.breakers[name] = b
	log.Printf("[circuitbreaker][manager] created breaker name=%s", name)
	return b
}

// Execute runs fn through the breaker for name, creating it with defaults if
// needed.
func (m *Manager) Execute(name string, fn func() error) error {
	return m.GetOrCreate(name, DefaultConfig()).Execute(fn)
}

// States snapshots the current mode of every registered breaker, for health
// reporting.
func (m *Manager) States() map[string]State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]State, len(m.breakers))
	for name, b := range m.breakers {
		out[name] = b.State()
	}
	return out
}
