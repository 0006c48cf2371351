package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MockStorage implements Storage in memory for testing. Behavior can be
// overridden per call through the function fields.
type MockStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte

	PutFunc    func(ctx context.Context, key string, r io.Reader) error
	OpenFunc   func(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteFunc func(ctx context.Context, key string) error
	URLFunc    func(key string) string

	// DeleteCalls records every key passed to Delete
	DeleteCalls []string
}

// NewMockStorage creates an empty in-memory storage backend.
func NewMockStorage() *MockStorage {
	return &MockStorage{blobs: map[string][]byte{}}
}

func (m *MockStorage) Put(ctx context.Context, key string, r io.Reader) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
	return nil
}

func (m *MockStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, key)
	m.mu.Unlock()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *MockStorage) URL(key string) string {
	if m.URLFunc != nil {
		return m.URLFunc(key)
	}
	return "http://localhost:8080/api/fitness/files/" + key
}

// Has reports whether a blob exists for key.
func (m *MockStorage) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[key]
	return ok
}

var _ Storage = (*MockStorage)(nil)
