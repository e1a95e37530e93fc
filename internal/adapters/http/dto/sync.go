package dto

import (
	"time"

	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/domain"
)

// Update kinds.
const (
	UpdateKindNew     = "new"
	UpdateKindUpdated = "updated"
)

// BatchParam is the :batchID path parameter.
type BatchParam struct {
	BatchID string `uri:"batchID" validate:"required,max=64"`
}

// BatchItemParam addresses one item of a batch.
type BatchItemParam struct {
	BatchID string `uri:"batchID" validate:"required,max=64"`
	QuoteID int64  `uri:"quoteID"`
}

// BatchItemResponse is one new or updated remote quote.
type BatchItemResponse struct {
	Kind   string         `json:"kind"`
	State  string         `json:"state"`
	Remote QuoteResponse  `json:"remote"`
	Local  *QuoteResponse `json:"local,omitempty"`
}

// BatchResponse is a set of remote changes awaiting or holding a decision.
type BatchResponse struct {
	ID        string              `json:"id"`
	State     string              `json:"state"`
	CreatedAt time.Time           `json:"createdAt"`
	Pending   int                 `json:"pending"`
	Items     []BatchItemResponse `json:"items"`
}

// NewBatchResponse converts a sync batch.
func NewBatchResponse(b *domain.SyncBatch) *BatchResponse {
	if b == nil {
		return nil
	}

	resp := &BatchResponse{
		ID:        b.ID,
		State:     string(b.State),
		CreatedAt: b.CreatedAt,
		Pending:   b.Pending(),
		Items:     make([]BatchItemResponse, len(b.Items)),
	}

	for i, item := range b.Items {
		out := BatchItemResponse{
			Kind:   UpdateKindUpdated,
			State:  string(item.State),
			Remote: NewQuoteResponse(item.Update.Remote),
		}

		if item.Update.IsNew() {
			out.Kind = UpdateKindNew
		} else {
			local := NewQuoteResponse(*item.Update.Local)
			out.Local = &local
		}

		resp.Items[i] = out
	}

	return resp
}

// CycleResponse reports a manually triggered sync cycle.
type CycleResponse struct {
	Outcome     string         `json:"outcome"`
	Fetched     int            `json:"fetched"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	Batch       *BatchResponse `json:"batch,omitempty"`
}

// NewCycleResponse converts a cycle result.
func NewCycleResponse(r *app.CycleResult) CycleResponse {
	return CycleResponse{
		Outcome:     r.Outcome,
		Fetched:     r.Fetched,
		CompletedAt: optionalTime(r.CompletedAt),
		Batch:       NewBatchResponse(r.Batch),
	}
}

// SyncStatusResponse is the body of GET /api/v1/sync/status.
type SyncStatusResponse struct {
	State       string          `json:"state"`
	InFlight    int             `json:"inFlight"`
	LastSync    *time.Time      `json:"lastSync,omitempty"`
	LastOutcome string          `json:"lastOutcome,omitempty"`
	LastError   string          `json:"lastError,omitempty"`
	Pending     []BatchResponse `json:"pending"`
}

// NewSyncStatusResponse converts a sync status.
func NewSyncStatusResponse(s app.SyncStatus) SyncStatusResponse {
	resp := SyncStatusResponse{
		State:       string(s.State),
		InFlight:    s.InFlight,
		LastSync:    optionalTime(s.LastSync),
		LastOutcome: s.LastOutcome,
		LastError:   s.LastError,
		Pending:     make([]BatchResponse, 0, len(s.Pending)),
	}

	for _, b := range s.Pending {
		resp.Pending = append(resp.Pending, *NewBatchResponse(b))
	}

	return resp
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
