package services

import (
	"context"
	"fmt"
	"sync"
)

// MockStorage is an in-memory StorageInterface for testing
type MockStorage struct {
	files map[string][]byte
	mu    sync.RWMutex
	Err   error
}

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{files: make(map[string][]byte)}
}

// SetAsMockForTesting sets this mock as the global storage instance for testing
func (m *MockStorage) SetAsMockForTesting() {
	SetStorage(m)
}

// Save records content under name
func (m *MockStorage) Save(ctx context.Context, name, contentType string, content []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	m.files[name] = content
	m.mu.Unlock()
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/uploads/%s", name), nil
}

// GetUploadedFiles returns all stored files (for testing assertions)
func (m *MockStorage) GetUploadedFiles() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make(map[string][]byte, len(m.files))
	for k, v := range m.files {
		files[k] = v
	}
	return files
}

// FileExists checks if a file exists in mock storage
func (m *MockStorage) FileExists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[name]
	return exists
}
