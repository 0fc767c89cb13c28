package session

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/wincounter/internal/jsonmerge"
)

// memoryTier is the process-local tier: session ID to record, each with its
// own expiry. Expired entries are invisible to get but stay in the map until
// evictExpired runs.
type memoryTier struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	clock   clockwork.Clock
}

type memoryEntry struct {
	state     jsonmerge.Value
	expiresAt time.Time
}

func newMemoryTier(clock clockwork.Clock) *memoryTier {
	return &memoryTier{
		entries: make(map[string]*memoryEntry),
		clock:   clock,
	}
}

func (m *memoryTier) get(sessionID string) (jsonmerge.Value, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[sessionID]
	if !ok {
		return jsonmerge.Value{}, false
	}
	if m.clock.Now().After(entry.expiresAt) {
		return jsonmerge.Value{}, false
	}
	return entry.state, true
}

func (m *memoryTier) set(sessionID string, state jsonmerge.Value, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[sessionID] = &memoryEntry{
		state:     state,
		expiresAt: m.clock.Now().Add(ttl),
	}
}

func (m *memoryTier) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// evictExpired removes all expired entries and returns how many were removed.
func (m *memoryTier) evictExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	evicted := 0
	for id, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, id)
			evicted++
		}
	}
	return evicted
}
