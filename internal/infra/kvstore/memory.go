// Package kvstore implements port.KeyValueStore on process memory, Redis
// and an embedded SQLite database.
package kvstore

import (
	"context"
	"slices"
	"sync"
)

// Memory keeps namespaces in maps. Values are copied on the way in and out.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[namespace][key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (m *Memory) Set(_ context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		m.data[namespace] = ns
	}
	ns[key] = slices.Clone(value)
	return nil
}

func (m *Memory) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[namespace], key)
	if len(m.data[namespace]) == 0 {
		delete(m.data, namespace)
	}
	return nil
}

// Keys lists the namespace's keys in sorted order.
func (m *Memory) Keys(_ context.Context, namespace string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data[namespace]))
	for k := range m.data[namespace] {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
