package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// DefaultQuotes seed an empty store.
var DefaultQuotes = []struct{ Text, Category string }{
	{"Life is what happens while you're busy making other plans.", "Life"},
	{"The only way to do great work is to love what you do.", "Work"},
	{"Innovation distinguishes between a leader and a follower.", "Leadership"},
	{"Stay hungry, stay foolish.", "Motivation"},
}

// StoreConfig contains dependencies for the quote store.
type StoreConfig struct {
	// KV is the persistent key-value store holding the serialized collection.
	KV ports.KeyValueStore

	// SeedDefaults appends DefaultQuotes when nothing has been persisted yet.
	SeedDefaults bool

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// Rand picks random quotes. Defaults to a randomly seeded source.
	Rand *rand.Rand

	Logger *slog.Logger
}

// Store owns the ordered quote collection and bridges it to persistent storage.
// Quotes are de-duplicated by identity whenever records are appended in bulk.
type Store struct {
	kv     ports.KeyValueStore
	seed   bool
	now    func() time.Time
	logger *slog.Logger

	// writeMu serializes changes with their persistence.
	writeMu sync.Mutex

	mu     sync.RWMutex
	quotes []domain.Quote
	rng    *rand.Rand
}

// NewStore creates an empty store. Panics if KV is nil.
func NewStore(cfg StoreConfig) *Store {
	if cfg.KV == nil {
		panic("Store: KV is required")
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		kv:     cfg.KV,
		seed:   cfg.SeedDefaults,
		now:    cfg.Now,
		rng:    cfg.Rand,
		logger: logger.With(slog.String("component", "app.Store")),
	}
}

// Load appends the persisted collection to memory and returns how many
// records were added. Records already present are not added twice and
// invalid records are skipped. An empty store is seeded when configured.
func (s *Store) Load(ctx context.Context) (int, error) {
	raw, ok, err := s.kv.Get(ctx, ports.KeyQuotes)
	if err != nil {
		return 0, fmt.Errorf("reading persisted quotes: %w", err)
	}

	if !ok {
		return s.seedDefaults(ctx)
	}

	quotes, err := DecodeQuotes([]byte(raw), "persisted quotes")
	if err != nil {
		return 0, err
	}

	valid := make([]domain.Quote, 0, len(quotes))

	for i := range quotes {
		if err := quotes[i].Validate(); err != nil {
			s.logger.WarnContext(ctx, "skipping invalid persisted quote",
				slog.Int("index", i),
				slog.Any("error", err),
			)

			continue
		}

		valid = append(valid, quotes[i])
	}

	s.writeMu.Lock()
	s.mu.Lock()
	var added int
	s.quotes, added = appendUnique(s.quotes, valid)
	s.mu.Unlock()
	s.writeMu.Unlock()

	s.logger.DebugContext(ctx, "quotes loaded",
		slog.Int("persisted", len(quotes)),
		slog.Int("added", added),
	)

	return added, nil
}

func (s *Store) seedDefaults(ctx context.Context) (int, error) {
	if !s.seed {
		return 0, nil
	}

	now := s.now()
	seeded := make([]domain.Quote, 0, len(DefaultQuotes))

	for _, d := range DefaultQuotes {
		q, err := domain.NewQuote(d.Text, d.Category, now)
		if err != nil {
			return 0, err
		}

		seeded = append(seeded, q)
	}

	err := s.apply(ctx, func(quotes []domain.Quote) ([]domain.Quote, bool) {
		return append(quotes, seeded...), true
	})
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "seeded default quotes", slog.Int("count", len(seeded)))

	return len(seeded), nil
}

// Save writes the full collection under the quotes key.
func (s *Store) Save(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.save(ctx)
}

func (s *Store) save(ctx context.Context) error {
	s.mu.RLock()
	data, err := json.Marshal(s.quotes)
	n := len(s.quotes)
	s.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("encoding quotes: %w", err)
	}

	if data == nil || string(data) == "null" {
		data = []byte("[]")
	}

	if err := s.kv.Set(ctx, ports.KeyQuotes, string(data)); err != nil {
		return fmt.Errorf("persisting quotes: %w", err)
	}

	s.logger.Log(ctx, logging.LevelTrace, "quotes saved", slog.Int("count", n))

	return nil
}

// apply runs fn with exclusive access to the collection and persists the
// result when fn reports a change. A failed save restores the collection
// as it was before fn ran.
func (s *Store) apply(ctx context.Context, fn func(quotes []domain.Quote) ([]domain.Quote, bool)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	prev := cloneQuotes(s.quotes)
	updated, changed := fn(s.quotes)
	if changed {
		s.quotes = updated
	}
	s.mu.Unlock()

	if !changed {
		return nil
	}

	if err := s.save(ctx); err != nil {
		s.mu.Lock()
		s.quotes = prev
		s.mu.Unlock()

		s.logger.WarnContext(ctx, "change rolled back", slog.Any("error", err))

		return err
	}

	return nil
}

// Add validates and appends a new quote stamped with the current time,
// then persists the collection. Nothing is changed when validation or
// persistence fails.
func (s *Store) Add(ctx context.Context, text, category string) (domain.Quote, error) {
	q, err := domain.NewQuote(text, category, s.now())
	if err != nil {
		return domain.Quote{}, err
	}

	err = s.apply(ctx, func(quotes []domain.Quote) ([]domain.Quote, bool) {
		return append(quotes, q), true
	})
	if err != nil {
		return domain.Quote{}, err
	}

	return q.Clone(), nil
}

// Remove deletes the first quote carrying id. It reports whether one was removed.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	removed := false

	err := s.apply(ctx, func(quotes []domain.Quote) ([]domain.Quote, bool) {
		idx := domain.IndexByID(quotes, id)
		if idx < 0 {
			return quotes, false
		}

		removed = true

		return slices.Delete(quotes, idx, idx+1), true
	})
	if err != nil {
		return false, err
	}

	return removed, nil
}

// Append adds quotes not already present, by identity, and persists.
// It returns the number added. Callers validate beforehand.
func (s *Store) Append(ctx context.Context, quotes []domain.Quote) (int, error) {
	added := 0

	err := s.apply(ctx, func(current []domain.Quote) ([]domain.Quote, bool) {
		var updated []domain.Quote
		updated, added = appendUnique(current, quotes)

		return updated, added > 0
	})
	if err != nil {
		return 0, err
	}

	return added, nil
}

// appendUnique appends to dst the quotes whose identity dst lacks.
func appendUnique(dst, quotes []domain.Quote) ([]domain.Quote, int) {
	added := 0

	for i := range quotes {
		if slices.ContainsFunc(dst, func(existing domain.Quote) bool {
			return existing.SameIdentity(&quotes[i])
		}) {
			continue
		}

		dst = append(dst, quotes[i].Clone())
		added++
	}

	return dst, added
}

// Mutate runs fn with exclusive access to the collection and persists the
// result. fn returns whether it changed anything. The collection is left
// untouched when persisting fails.
func (s *Store) Mutate(ctx context.Context, fn func(quotes []domain.Quote) ([]domain.Quote, bool)) error {
	return s.apply(ctx, fn)
}

func cloneQuotes(quotes []domain.Quote) []domain.Quote {
	out := make([]domain.Quote, len(quotes))
	for i := range quotes {
		out[i] = quotes[i].Clone()
	}

	return out
}

// Snapshot returns a deep copy of the collection in order.
func (s *Store) Snapshot() []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneQuotes(s.quotes)
}

// Len returns the number of stored quotes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}

// Categories returns the sorted set of categories.
func (s *Store) Categories() []string {
	s.mu.RLock()
	cats := make([]string, 0, len(s.quotes))
	for i := range s.quotes {
		cats = append(cats, s.quotes[i].Category)
	}
	s.mu.RUnlock()

	slices.Sort(cats)

	return slices.Compact(cats)
}

// Filter returns the quotes in category, compared case-insensitively.
// An empty category returns every quote.
func (s *Store) Filter(category string) []domain.Quote {
	category = strings.TrimSpace(category)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Quote, 0, len(s.quotes))

	for i := range s.quotes {
		if category == "" || strings.EqualFold(s.quotes[i].Category, category) {
			out = append(out, s.quotes[i].Clone())
		}
	}

	return out
}

// Random picks one quote from category, or from all quotes when category is empty.
func (s *Store) Random(category string) (domain.Quote, error) {
	candidates := s.Filter(category)
	if len(candidates) == 0 {
		return domain.Quote{}, domain.NewNotFoundError("quote in category", category)
	}

	s.mu.Lock()
	idx := s.rng.IntN(len(candidates))
	s.mu.Unlock()

	return candidates[idx], nil
}

// DecodeQuotes parses a JSON list of quotes. Anything else is a FormatError.
func DecodeQuotes(data []byte, source string) ([]domain.Quote, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, domain.NewFormatError(source, "expected a JSON list")
	}

	var quotes []domain.Quote
	if err := json.Unmarshal([]byte(trimmed), &quotes); err != nil {
		return nil, domain.NewFormatError(source, err.Error())
	}

	return quotes, nil
}
