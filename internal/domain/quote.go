// Package domain contains core business entities and rules.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultCategory is assigned to remote quotes whose body carries no category line.
const DefaultCategory = "Uncategorized"

// Quote is a short text record filed under a category.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// ID is present only for server-originated or previously synced quotes.
	ID *int64

	// Text is the quotation itself. Never empty once validated.
	Text string

	// Category groups quotes for filtering. Never empty once validated.
	Category string

	// Timestamp is the creation or last-sync time in epoch milliseconds.
	Timestamp int64

	// Synced is set when a reviewed remote quote has been accepted locally.
	Synced *bool

	// Extra holds fields this service does not model. They survive
	// persistence and are kept by the field-level merge.
	Extra map[string]json.RawMessage
}

// NewQuote validates the inputs and creates a user-authored quote stamped with now.
func NewQuote(text, category string, now time.Time) (Quote, error) {
	q := Quote{
		Text:      strings.TrimSpace(text),
		Category:  strings.TrimSpace(category),
		Timestamp: now.UnixMilli(),
	}

	if err := q.Validate(); err != nil {
		return Quote{}, err
	}

	return q, nil
}

// Validate checks that text and category are non-empty after trimming.
// Every failing field is reported; use ValidationFields to list them.
func (q *Quote) Validate() error {
	var errs []error

	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, NewValidationError("text", "quote text is required"))
	}

	if strings.TrimSpace(q.Category) == "" {
		errs = append(errs, NewValidationError("category", "quote category is required"))
	}

	return errors.Join(errs...)
}

// HasID reports whether the quote carries a remote identifier.
func (q *Quote) HasID() bool {
	return q.ID != nil
}

// IDString returns the identifier as a string, or "" when absent.
func (q *Quote) IDString() string {
	if q.ID == nil {
		return ""
	}

	return fmt.Sprintf("%d", *q.ID)
}

// Clone returns a deep copy so callers can mutate without aliasing store state.
func (q Quote) Clone() Quote {
	if q.ID != nil {
		id := *q.ID
		q.ID = &id
	}

	if q.Synced != nil {
		synced := *q.Synced
		q.Synced = &synced
	}

	if q.Extra != nil {
		extra := make(map[string]json.RawMessage, len(q.Extra))
		for k, v := range q.Extra {
			extra[k] = v
		}
		q.Extra = extra
	}

	return q
}

// SameIdentity reports whether two quotes denote the same record.
// Quotes with IDs compare by ID; quotes without compare by text, category and timestamp.
func (q *Quote) SameIdentity(other *Quote) bool {
	if q.ID != nil || other.ID != nil {
		return q.ID != nil && other.ID != nil && *q.ID == *other.ID
	}

	return q.Text == other.Text &&
		q.Category == other.Category &&
		q.Timestamp == other.Timestamp
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 {
	return &v
}

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool {
	return &v
}

var knownQuoteFields = []string{"id", "text", "category", "timestamp", "synced"}

// MarshalJSON writes the modelled fields over any preserved extra fields.
func (q Quote) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(q.Extra)+len(knownQuoteFields))
	for k, v := range q.Extra {
		out[k] = v
	}

	if q.ID != nil {
		out["id"] = *q.ID
	}

	out["text"] = q.Text
	out["category"] = q.Category
	out["timestamp"] = q.Timestamp

	if q.Synced != nil {
		out["synced"] = *q.Synced
	}

	return json.Marshal(out)
}

// UnmarshalJSON reads the modelled fields and keeps the rest in Extra.
func (q *Quote) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var decoded Quote

	if v, ok := raw["id"]; ok && string(v) != "null" {
		var id int64
		if err := json.Unmarshal(v, &id); err != nil {
			return fmt.Errorf("decoding id: %w", err)
		}
		decoded.ID = &id
	}

	if v, ok := raw["text"]; ok {
		if err := json.Unmarshal(v, &decoded.Text); err != nil {
			return fmt.Errorf("decoding text: %w", err)
		}
	}

	if v, ok := raw["category"]; ok {
		if err := json.Unmarshal(v, &decoded.Category); err != nil {
			return fmt.Errorf("decoding category: %w", err)
		}
	}

	if v, ok := raw["timestamp"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &decoded.Timestamp); err != nil {
			return fmt.Errorf("decoding timestamp: %w", err)
		}
	}

	if v, ok := raw["synced"]; ok && string(v) != "null" {
		var synced bool
		if err := json.Unmarshal(v, &synced); err != nil {
			return fmt.Errorf("decoding synced: %w", err)
		}
		decoded.Synced = &synced
	}

	for _, k := range knownQuoteFields {
		delete(raw, k)
	}

	if len(raw) > 0 {
		decoded.Extra = raw
	}

	*q = decoded

	return nil
}
