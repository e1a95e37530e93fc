// Package app contains application services that orchestrate use cases.
// It coordinates the quote store, the remote collection and the user-facing
// ports; HTTP specifics live in the adapters.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// AllCategories is the selection covering every category. Quote categories
// are never blank, so it cannot name a real category.
const AllCategories = ""

// User-facing quote messages.
const (
	MsgQuoteAdded     = "Quote added successfully!"
	MsgNoQuotesFound  = "No quotes found in this category"
	MsgPostFailed     = "Failed to post quote to server"
	MsgQuotesImported = "Quotes imported successfully!"
)

// QuoteService orchestrates the interactive quote use cases.
type QuoteService struct {
	store     *Store
	prefs     ports.KeyValueStore
	session   ports.KeyValueStore
	renderer  ports.Renderer
	notifier  ports.Notifier
	remote    ports.RemoteQuoteClient
	pushOnAdd bool
	logger    *slog.Logger
}

// QuoteServiceConfig contains dependencies for the quote service.
type QuoteServiceConfig struct {
	Store *Store

	// Prefs is the persistent store holding the selected category.
	Prefs ports.KeyValueStore

	// Session holds the last viewed quote.
	Session ports.KeyValueStore

	Renderer ports.Renderer
	Notifier ports.Notifier

	// Remote receives newly added quotes when PushOnAdd is set.
	Remote    ports.RemoteQuoteClient
	PushOnAdd bool

	Logger *slog.Logger
}

// NewQuoteService creates a new quote service. Panics if a required dependency is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	switch {
	case cfg.Store == nil:
		panic("QuoteService: Store is required")
	case cfg.Prefs == nil:
		panic("QuoteService: Prefs is required")
	case cfg.Session == nil:
		panic("QuoteService: Session is required")
	case cfg.Renderer == nil:
		panic("QuoteService: Renderer is required")
	case cfg.Notifier == nil:
		panic("QuoteService: Notifier is required")
	case cfg.PushOnAdd && cfg.Remote == nil:
		panic("QuoteService: Remote is required when PushOnAdd is set")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteService{
		store:     cfg.Store,
		prefs:     cfg.Prefs,
		session:   cfg.Session,
		renderer:  cfg.Renderer,
		notifier:  cfg.Notifier,
		remote:    cfg.Remote,
		pushOnAdd: cfg.PushOnAdd,
		logger:    logger.With(slog.String("component", "app.QuoteService")),
	}
}

// Add stores a new quote, shows it and announces it. With push enabled the
// quote is also posted to the remote; a failed post is only reported.
func (s *QuoteService) Add(ctx context.Context, text, category string) (domain.Quote, error) {
	q, err := s.store.Add(ctx, text, category)
	if err != nil {
		s.logger.WarnContext(ctx, "quote rejected", slog.Any("error", err))

		return domain.Quote{}, err
	}

	s.renderer.ListCategories(ctx, s.store.Categories())
	s.show(ctx, q)
	s.notifier.Notify(ctx, MsgQuoteAdded)

	s.logger.InfoContext(ctx, "quote added", slog.String("category", q.Category))

	if s.pushOnAdd {
		s.push(ctx, q)
	}

	return q, nil
}

func (s *QuoteService) push(ctx context.Context, q domain.Quote) {
	echo, err := s.remote.PostQuote(ctx, q)
	if err != nil {
		s.logger.WarnContext(ctx, "posting quote failed", slog.Any("error", err))
		s.notifier.Notify(ctx, MsgPostFailed)

		return
	}

	s.logger.DebugContext(ctx, "quote posted", slog.String("remote_id", echo.IDString()))
}

// Remove deletes the first quote with id. It reports whether one was removed.
func (s *QuoteService) Remove(ctx context.Context, id int64) (bool, error) {
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return false, err
	}

	if removed {
		s.renderer.ListCategories(ctx, s.store.Categories())
	}

	return removed, nil
}

// List returns the quotes in category, or all quotes for AllCategories.
func (s *QuoteService) List(category string) []domain.Quote {
	return s.store.Filter(normalizeCategory(category))
}

// Categories returns the sorted category set.
func (s *QuoteService) Categories() []string {
	return s.store.Categories()
}

// Random picks a quote and displays it. An empty category falls back to the
// selected category. An empty selection is reported to the user as NotFound.
func (s *QuoteService) Random(ctx context.Context, category string) (domain.Quote, error) {
	if strings.TrimSpace(category) == "" {
		selected, err := s.SelectedCategory(ctx)
		if err != nil {
			return domain.Quote{}, err
		}

		category = selected
	}

	q, err := s.store.Random(normalizeCategory(category))
	if err != nil {
		if domain.IsNotFound(err) {
			s.notifier.Notify(ctx, MsgNoQuotesFound)
		}

		return domain.Quote{}, err
	}

	s.show(ctx, q)

	return q, nil
}

func (s *QuoteService) show(ctx context.Context, q domain.Quote) {
	s.renderer.Display(ctx, q)

	data, err := json.Marshal(q)
	if err != nil {
		s.logger.WarnContext(ctx, "encoding last viewed quote", slog.Any("error", err))

		return
	}

	if err := s.session.Set(ctx, ports.KeyLastViewedQuote, string(data)); err != nil {
		s.logger.WarnContext(ctx, "saving last viewed quote", slog.Any("error", err))
	}
}

// LastViewed returns the quote most recently displayed in this session.
func (s *QuoteService) LastViewed(ctx context.Context) (domain.Quote, error) {
	raw, ok, err := s.session.Get(ctx, ports.KeyLastViewedQuote)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("reading last viewed quote: %w", err)
	}

	if !ok {
		return domain.Quote{}, domain.NewNotFoundError("last viewed quote", "")
	}

	var q domain.Quote
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return domain.Quote{}, domain.NewFormatError("last viewed quote", err.Error())
	}

	return q, nil
}

// SelectedCategory returns the persisted filter, or AllCategories when unset.
func (s *QuoteService) SelectedCategory(ctx context.Context) (string, error) {
	v, ok, err := s.prefs.Get(ctx, ports.KeySelectedCategory)
	if err != nil {
		return "", fmt.Errorf("reading selected category: %w", err)
	}

	if !ok {
		return AllCategories, nil
	}

	return strings.TrimSpace(v), nil
}

// SelectCategory persists the filter and shows a quote from it.
func (s *QuoteService) SelectCategory(ctx context.Context, category string) (string, error) {
	category = strings.TrimSpace(category)

	if err := s.prefs.Set(ctx, ports.KeySelectedCategory, category); err != nil {
		return "", fmt.Errorf("saving selected category: %w", err)
	}

	if _, err := s.Random(ctx, category); err != nil && !domain.IsNotFound(err) {
		return category, err
	}

	return category, nil
}

// RefreshView redraws the category list and shows a quote from the selected
// category. It implements ViewRefresher.
func (s *QuoteService) RefreshView(ctx context.Context) {
	s.renderer.ListCategories(ctx, s.store.Categories())

	selected, err := s.SelectedCategory(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "refreshing view", slog.Any("error", err))

		return
	}

	q, err := s.store.Random(normalizeCategory(selected))
	if errors.Is(err, domain.ErrNotFound) {
		q, err = s.store.Random("")
	}

	if err != nil {
		return
	}

	s.show(ctx, q)
}

func normalizeCategory(category string) string {
	return strings.TrimSpace(category)
}
