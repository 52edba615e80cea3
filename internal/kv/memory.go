// ABOUTME: In-memory implementation of the kv.Store interface.
// ABOUTME: Used in tests and as a fallback when no durable path is configured.
package kv

import (
	"context"
	"sync"
)

// Memory is a mutex-guarded map implementing Store. Subscriptions are
// delivered asynchronously, matching Badger's delivery: a subscriber that
// re-enters the store (or a structure holding its own lock around Set) must
// not deadlock the writer.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
	subs map[string][]func()
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string][]byte),
		subs: make(map[string][]func()),
	}
}

// Get returns the value for key, or ErrNotFound.
func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores value under key and notifies subscribers.
func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	subs := append([]func(){}, m.subs[key]...)
	m.mu.Unlock()

	if len(subs) > 0 {
		go func() {
			for _, fn := range subs {
				fn()
			}
		}()
	}
	return nil
}

// Delete removes key.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Subscribe registers fn to run after every Set of key.
func (m *Memory) Subscribe(_ context.Context, key string, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[key] = append(m.subs[key], fn)
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}
