package cache

import (
	"context"
	"sync"
	"time"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store used when no Redis address is configured
// and as the test substitute. Entries expire lazily on read.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	// Now is overridable in tests to simulate TTL expiry.
	Now func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		Now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", nil
	}
	if !entry.expiresAt.IsZero() && entry.expiresAt.Before(m.Now()) {
		delete(m.entries, key)
		return "", nil
	}
	return entry.value, nil
}

func (m *Memory) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = m.Now().Add(ttl)
	}
	m.entries[key] = entry
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
