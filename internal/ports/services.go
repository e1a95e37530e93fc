// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// Well-known keys in the persistent and session key-value stores.
const (
	// KeyQuotes holds the serialized quote collection.
	KeyQuotes = "quotes"

	// KeySelectedCategory holds the last selected category filter.
	KeySelectedCategory = "selectedCategory"

	// KeyLastSyncTime holds the completion time of the last reconciliation cycle.
	KeyLastSyncTime = "lastSyncTime"

	// KeyLastViewedQuote holds the last displayed quote (session scope).
	KeyLastViewedQuote = "lastViewedQuote"
)

// KeyValueStore is a string key-value store.
// The same contract backs persistent storage and session storage.
type KeyValueStore interface {
	// Get returns the value for key. The boolean is false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// RemoteQuoteClient talks to the remote quote collection.
//
// Key considerations:
//   - Handle timeouts via context deadline
//   - Map transport failures and non-success statuses to domain.ErrUnavailable
//   - Transform external DTOs to domain types
type RemoteQuoteClient interface {
	// FetchQuotes retrieves the remote collection mapped to domain quotes.
	FetchQuotes(ctx context.Context) ([]domain.Quote, error)

	// PostQuote sends one quote and returns the server's echo.
	PostQuote(ctx context.Context, quote domain.Quote) (*domain.Quote, error)
}

// Renderer displays quotes and the category list to the user.
type Renderer interface {
	// Display shows a single quote.
	Display(ctx context.Context, quote domain.Quote)

	// ListCategories refreshes the set of categories offered for filtering.
	ListCategories(ctx context.Context, categories []string)
}

// Notifier shows short, transient messages to the user.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// ConflictPrompter hands a batch of new-or-updated remote quotes to the user.
// Present must not block on the user's decision; the decision arrives later
// through the sync service.
type ConflictPrompter interface {
	Present(ctx context.Context, batch *domain.SyncBatch)
}
