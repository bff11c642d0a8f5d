package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MockCache is an in-memory CacheInterface for testing
type MockCache struct {
	mu     sync.Mutex
	values map[string][]byte
	Hits   int
	Misses int
}

// NewMockCache creates an empty mock cache
func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string][]byte)}
}

// SetAsMockForTesting sets this mock as the global cache instance for testing
func (m *MockCache) SetAsMockForTesting() {
	SetCache(m)
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.values[key]
	if !ok || json.Unmarshal(data, dest) != nil {
		m.Misses++
		return false
	}
	m.Hits++
	return true
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.values[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MockCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.values, k)
	}
	m.mu.Unlock()
	return nil
}

// Has reports whether key is cached
func (m *MockCache) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}
