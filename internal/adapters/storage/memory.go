package storage

import (
	"context"
	"maps"
	"sync"
)

// Memory is an in-memory key-value store. Its contents live as long as the
// process, which is the lifetime of session state.
type Memory struct {
	name string

	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty store. name identifies it in health checks.
func NewMemory(name string) *Memory {
	return &Memory{name: name, data: make(map[string]string)}
}

// Get implements ports.KeyValueStore.
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]

	return v, ok, nil
}

// Set implements ports.KeyValueStore.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value

	return nil
}

// Snapshot returns a copy of every entry.
func (m *Memory) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return maps.Clone(m.data)
}

// Name implements ports.HealthChecker.
func (m *Memory) Name() string {
	return m.name
}

// Check implements ports.HealthChecker.
func (m *Memory) Check(ctx context.Context) error {
	return ctx.Err()
}

// Close implements io.Closer.
func (m *Memory) Close() error {
	return nil
}
