// Package kvstore is the world-scoped blob store the schedule persists into.
package kvstore

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("kvstore: closed")

// MemStore keeps blobs in memory for the lifetime of the process.
type MemStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	closed bool
}

func NewMemStore() *MemStore {
	return &MemStore{data: map[string][]byte{}}
}

func (m *MemStore) GetData(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	b, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), b...), nil
}

func (m *MemStore) StoreData(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data[key] = append([]byte{}, data...)
	return nil
}

func (m *MemStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
