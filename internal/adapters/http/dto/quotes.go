package dto

import (
	"time"

	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// QuoteResponse is the HTTP representation of a quote.
type QuoteResponse struct {
	ID        *int64 `json:"id,omitempty"`
	Text      string `json:"text"`
	Category  string `json:"category"`
	Timestamp int64  `json:"timestamp"`
	Synced    *bool  `json:"synced,omitempty"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	q = q.Clone()

	return QuoteResponse{
		ID:        q.ID,
		Text:      q.Text,
		Category:  q.Category,
		Timestamp: q.Timestamp,
		Synced:    q.Synced,
	}
}

// NewQuoteResponses converts a list of domain quotes.
func NewQuoteResponses(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, len(quotes))
	for i := range quotes {
		out[i] = NewQuoteResponse(quotes[i])
	}

	return out
}

// CreateQuoteRequest is the body of POST /api/v1/quotes.
type CreateQuoteRequest struct {
	Text     string `json:"text" validate:"required,notblank,max=1000"`
	Category string `json:"category" validate:"required,notblank,max=100"`
}

// ListQuotesQuery filters and pages GET /api/v1/quotes.
type ListQuotesQuery struct {
	Category string `form:"category" validate:"max=100"`
	PageRequest
}

// CategoryQuery selects a category for GET /api/v1/quotes/random.
type CategoryQuery struct {
	Category string `form:"category" validate:"max=100"`
}

// QuoteIDParam is the :id path parameter.
type QuoteIDParam struct {
	ID int64 `uri:"id" validate:"gt=0"`
}

// CategoryRequest is the body of PUT /api/v1/preferences/category.
type CategoryRequest struct {
	Category string `json:"category" validate:"required,notblank,max=100"`
}

// CategoryResponse reports the selected category filter.
type CategoryResponse struct {
	Category string `json:"category"`
}

// CategoriesResponse lists the known categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// ImportResponse summarizes POST /api/v1/quotes/import.
type ImportResponse struct {
	Received   int `json:"received"`
	Added      int `json:"added"`
	Duplicates int `json:"duplicates"`
}

// ViewResponse is what a client should currently display.
type ViewResponse struct {
	Quote            *QuoteResponse `json:"quote,omitempty"`
	Categories       []string       `json:"categories"`
	SelectedCategory string         `json:"selectedCategory"`
	PendingBatch     string         `json:"pendingBatch,omitempty"`
	UpdatedAt        *time.Time     `json:"updatedAt,omitempty"`
}

// NotificationResponse is one transient message.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NotificationsResponse lists the unexpired messages, oldest first.
type NotificationsResponse struct {
	Items []NotificationResponse `json:"items"`
}
