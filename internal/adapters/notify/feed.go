// Package notify provides ports.Notifier adapters: a transient feed read over
// HTTP and a logger-backed notifier for the command line.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification is one transient message.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FeedConfig configures a Feed.
type FeedConfig struct {
	// TTL is how long a notification stays visible.
	TTL time.Duration

	// Capacity bounds the number of retained notifications. The oldest is
	// evicted first.
	Capacity int

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// Feed keeps recent notifications until they expire.
type Feed struct {
	ttl      time.Duration
	capacity int
	now      func() time.Time
	logger   *slog.Logger

	mu    sync.Mutex
	items []Notification
}

// NewFeed creates a feed. Non-positive TTL or capacity fall back to 3s and 50.
func NewFeed(cfg FeedConfig) *Feed {
	if cfg.TTL <= 0 {
		cfg.TTL = 3 * time.Second
	}

	if cfg.Capacity <= 0 {
		cfg.Capacity = 50
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Feed{
		ttl:      cfg.TTL,
		capacity: cfg.Capacity,
		now:      cfg.Now,
		logger:   logger.With(slog.String("component", "notify.Feed")),
	}
}

// Notify implements ports.Notifier.
func (f *Feed) Notify(ctx context.Context, message string) {
	now := f.now()
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(f.ttl),
	}

	f.mu.Lock()
	f.items = append(f.prune(now), n)
	if over := len(f.items) - f.capacity; over > 0 {
		f.items = f.items[over:]
	}
	f.mu.Unlock()

	f.logger.InfoContext(ctx, "notification", slog.String("message", message))
}

// Active returns the notifications that have not expired, oldest first.
func (f *Feed) Active() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = f.prune(f.now())

	out := make([]Notification, len(f.items))
	copy(out, f.items)

	return out
}

// prune drops expired entries. Callers hold mu.
func (f *Feed) prune(now time.Time) []Notification {
	kept := f.items[:0]

	for _, n := range f.items {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}

	return kept
}
