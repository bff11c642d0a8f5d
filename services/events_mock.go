package services

import (
	"context"
	"sync"
)

// MockEventPublisher records published events for testing
type MockEventPublisher struct {
	mu     sync.Mutex
	events []OrderEvent
	Err    error
}

// NewMockEventPublisher creates an empty recorder
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// SetAsMockForTesting sets this mock as the global publisher for testing
func (m *MockEventPublisher) SetAsMockForTesting() {
	SetEventPublisher(m)
}

func (m *MockEventPublisher) Publish(ctx context.Context, event OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.Err
}

func (m *MockEventPublisher) Close() error { return nil }

// Events returns a copy of the recorded events
func (m *MockEventPublisher) Events() []OrderEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]OrderEvent, len(m.events))
	copy(out, m.events)
	return out
}
