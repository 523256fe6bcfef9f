package repo

import (
	"context"
	"sync"
)

// Repository persists named collections as opaque byte payloads.
// Each collection is read and written as a unit; there is no
// record-level access at this layer.
type Repository interface {
	// Get returns the stored payload for a collection, or nil if the
	// collection has never been written.
	Get(ctx context.Context, collection string) ([]byte, error)

	// Set replaces the payload for a collection.
	Set(ctx context.Context, collection string, data []byte) error

	// Delete removes a collection entirely.
	Delete(ctx context.Context, collection string) error

	Close() error
}

// Memory is an in-memory Repository for tests.
type Memory struct {
	mu   sync.Mutex
	data map[string][]byte

	// GetErr and SetErr, when set, are returned by the corresponding
	// operations to simulate storage failures.
	GetErr error
	SetErr error
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, collection string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	data, ok := m.data[collection]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *Memory) Set(ctx context.Context, collection string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[collection] = cp
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	delete(m.data, collection)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
