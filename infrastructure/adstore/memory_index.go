package adstore

import (
	"context"
	"sync"
	"time"
)

// MemoryAdIndex keeps the ad id → page URL index in process memory.
// Data is lost on restart; lookups then fall back to a store scan.
type MemoryAdIndex struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryIndexEntry
}

type memoryIndexEntry struct {
	pageURL  string
	expireAt time.Time
}

// NewMemoryAdIndex creates an index whose entries expire after ttl (0 = never).
func NewMemoryAdIndex(ttl time.Duration) *MemoryAdIndex {
	return &MemoryAdIndex{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryIndexEntry),
	}
}

func (m *MemoryAdIndex) Put(ctx context.Context, pageURL string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expireAt time.Time
	if m.ttl > 0 {
		expireAt = m.now().Add(m.ttl)
	}
	for _, id := range ids {
		m.entries[id] = memoryIndexEntry{pageURL: pageURL, expireAt: expireAt}
	}
	m.pruneLocked()
	return nil
}

func (m *MemoryAdIndex) Lookup(ctx context.Context, id string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[id]
	if !ok || m.expired(e) {
		return "", false, nil
	}
	return e.pageURL, true, nil
}

func (m *MemoryAdIndex) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryAdIndex) expired(e memoryIndexEntry) bool {
	return !e.expireAt.IsZero() && !m.now().Before(e.expireAt)
}

func (m *MemoryAdIndex) pruneLocked() {
	for id, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, id)
		}
	}
}
