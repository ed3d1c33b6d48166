package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store with lazy expiry and a background
// cleanup loop.
type Memory struct {
	items     map[string]memoryEntry
	mu        sync.RWMutex
	stopClean chan struct{}
}

type memoryEntry struct {
	Data      []byte
	ExpiresAt time.Time
}

// NewMemory returns a running store. Call Shutdown to stop the
// cleanup goroutine.
func NewMemory() *Memory {
	m := &Memory{
		items:     make(map[string]memoryEntry),
		stopClean: make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

func (m *Memory) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopClean:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *Memory) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for k, v := range m.items {
		if !v.ExpiresAt.IsZero() && now.After(v.ExpiresAt) {
			delete(m.items, k)
		}
	}
}

// Shutdown stops the cleanup goroutine.
func (m *Memory) Shutdown() error {
	close(m.stopClean)
	return nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, found := m.items[key]
	m.mu.RUnlock()

	if !found {
		return nil, nil
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		// Expired, lazy delete.
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return nil, nil
	}
	return entry.Data, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{Data: value}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.items[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}
