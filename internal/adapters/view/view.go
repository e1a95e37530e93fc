// Package view provides ports.Renderer and ports.ConflictPrompter adapters.
package view

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// Snapshot is what a client would currently show.
type Snapshot struct {
	Quote      *domain.Quote `json:"quote,omitempty"`
	Categories []string      `json:"categories"`
	UpdatedAt  time.Time     `json:"updatedAt"`

	// PendingBatch is the ID of the last batch presented for a decision.
	PendingBatch string `json:"pendingBatch,omitempty"`
}

// State records the last displayed quote and category list so HTTP clients
// can render them.
type State struct {
	now func() time.Time

	mu      sync.RWMutex
	quote   *domain.Quote
	cats    []string
	at      time.Time
	pending string
}

// NewState creates an empty view. A nil now uses time.Now.
func NewState(now func() time.Time) *State {
	if now == nil {
		now = time.Now
	}

	return &State{now: now, cats: []string{}}
}

// Display implements ports.Renderer.
func (s *State) Display(_ context.Context, quote domain.Quote) {
	q := quote.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.quote = &q
	s.at = s.now()
}

// ListCategories implements ports.Renderer.
func (s *State) ListCategories(_ context.Context, categories []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cats = slices.Clone(categories)
	s.at = s.now()
}

// Present implements ports.ConflictPrompter. The batch ID is shown until a
// later batch replaces it; the decision itself arrives through the sync API.
func (s *State) Present(_ context.Context, batch *domain.SyncBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = batch.ID
	s.at = s.now()
}

// Snapshot returns a copy of the current view.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Categories: slices.Clone(s.cats), UpdatedAt: s.at, PendingBatch: s.pending}

	if s.quote != nil {
		q := s.quote.Clone()
		snap.Quote = &q
	}

	return snap
}

// Writer prints displayed quotes as text. The command line uses it.
type Writer struct {
	w io.Writer
}

// NewWriter creates a renderer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Display implements ports.Renderer.
func (r *Writer) Display(_ context.Context, quote domain.Quote) {
	_, _ = fmt.Fprintf(r.w, "%q (%s)\n", quote.Text, quote.Category)
}

// ListCategories implements ports.Renderer. Only quotes are printed.
func (r *Writer) ListCategories(context.Context, []string) {}

// Present implements ports.ConflictPrompter by printing the batch summary.
func (r *Writer) Present(_ context.Context, batch *domain.SyncBatch) {
	_, _ = fmt.Fprintf(r.w, "%d new or updated quote(s) from server (batch %s)\n", len(batch.Items), batch.ID)

	for _, item := range batch.Items {
		kind := "updated"
		if item.Update.IsNew() {
			kind = "new"
		}

		_, _ = fmt.Fprintf(r.w, "  [%s] %s %q (%s)\n",
			kind, item.Update.Remote.IDString(), item.Update.Remote.Text, item.Update.Remote.Category)
	}
}
