package app

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memKV is a minimal ports.KeyValueStore for tests.
type memKV struct {
	mu     sync.Mutex
	data   map[string]string
	setErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[key]

	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.setErr != nil {
		return m.setErr
	}

	m.data[key] = value

	return nil
}

func (m *memKV) failWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setErr = err
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(ms int64) *testClock {
	return &testClock{t: time.UnixMilli(ms)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *testClock) Set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = time.UnixMilli(ms)
}

func newTestStore(t *testing.T, kv *memKV, clock *testClock) *Store {
	t.Helper()

	return NewStore(StoreConfig{
		KV:     kv,
		Now:    clock.Now,
		Rand:   rand.New(rand.NewPCG(1, 2)),
		Logger: discardLogger(),
	})
}

func quoteWithID(id, ts int64, text, category string) domain.Quote {
	return domain.Quote{ID: domain.Int64Ptr(id), Text: text, Category: category, Timestamp: ts}
}
