package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// DefaultLimit is the page size used when none is requested.
const DefaultLimit = 20

// MaxLimit is the largest page size served.
const MaxLimit = 100

// ErrInvalidCursor is returned when a cursor cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

// PageRequest holds the paging query parameters. The collection keeps
// insertion order, so a cursor is the position of the next quote.
type PageRequest struct {
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the limit with defaults applied.
func (p *PageRequest) GetLimit() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	default:
		return p.Limit
	}
}

// Offset decodes the cursor. An empty cursor starts at zero.
func (p *PageRequest) Offset() (int, error) {
	if p.Cursor == "" {
		return 0, nil
	}

	return DecodeCursor(p.Cursor)
}

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T    `json:"items"`
	Total      int    `json:"total"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// Paginate cuts the page starting at offset out of items.
func Paginate[T any](items []T, offset, limit int) *Page[T] {
	total := len(items)
	offset = min(max(offset, 0), total)
	end := min(offset+limit, total)

	page := &Page[T]{
		Items:   items[offset:end],
		Total:   total,
		HasMore: end < total,
	}

	if page.HasMore {
		page.NextCursor = EncodeCursor(end)
	}

	return page
}

type cursorData struct {
	Offset int `json:"o"`
}

// EncodeCursor encodes a position as an opaque cursor.
func EncodeCursor(offset int) string {
	data, err := json.Marshal(cursorData{Offset: offset})
	if err != nil {
		return ""
	}

	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor returns the position an opaque cursor points at.
func DecodeCursor(encoded string) (int, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return 0, ErrInvalidCursor
	}

	var data cursorData
	if err := json.Unmarshal(raw, &data); err != nil || data.Offset < 0 {
		return 0, ErrInvalidCursor
	}

	return data.Offset, nil
}
