package domain

import (
	"strconv"
	"time"
)

// BatchState tracks the user's decision on a set of new-or-updated remote quotes.
type BatchState string

const (
	// BatchAwaitingChoice means no choice has been made yet.
	BatchAwaitingChoice BatchState = "awaiting_choice"

	// BatchReviewing means items are being accepted or rejected one by one.
	BatchReviewing BatchState = "reviewing"

	// BatchAccepted means every item was accepted at once.
	BatchAccepted BatchState = "accepted"

	// BatchIgnored means the batch was discarded without mutation.
	BatchIgnored BatchState = "ignored"

	// BatchReviewed means every item was individually resolved.
	BatchReviewed BatchState = "reviewed"
)

// ItemState tracks the per-item review decision.
type ItemState string

const (
	ItemPending  ItemState = "pending"
	ItemAccepted ItemState = "accepted"
	ItemRejected ItemState = "rejected"
)

// SyncBatch is the set of updates surfaced by one reconciliation cycle.
type SyncBatch struct {
	ID        string
	CreatedAt time.Time
	State     BatchState
	Items     []BatchItem
}

// BatchItem is one update within a batch.
type BatchItem struct {
	Update Update
	State  ItemState
}

// NewSyncBatch wraps updates in a batch awaiting the user's choice.
func NewSyncBatch(id string, createdAt time.Time, updates []Update) *SyncBatch {
	items := make([]BatchItem, len(updates))
	for i, u := range updates {
		items[i] = BatchItem{Update: u, State: ItemPending}
	}

	return &SyncBatch{
		ID:        id,
		CreatedAt: createdAt,
		State:     BatchAwaitingChoice,
		Items:     items,
	}
}

// Open reports whether the batch still accepts decisions.
func (b *SyncBatch) Open() bool {
	return b.State == BatchAwaitingChoice || b.State == BatchReviewing
}

// Item finds the item whose remote quote carries quoteID.
func (b *SyncBatch) Item(quoteID int64) (*BatchItem, error) {
	for i := range b.Items {
		id := b.Items[i].Update.Remote.ID
		if id != nil && *id == quoteID {
			return &b.Items[i], nil
		}
	}

	return nil, NewNotFoundError("sync item", strconv.FormatInt(quoteID, 10))
}

// Pending returns the number of items still awaiting a decision.
func (b *SyncBatch) Pending() int {
	n := 0
	for i := range b.Items {
		if b.Items[i].State == ItemPending {
			n++
		}
	}

	return n
}

// Clone returns a deep copy safe to hand outside the owning service.
func (b *SyncBatch) Clone() *SyncBatch {
	out := *b
	out.Items = make([]BatchItem, len(b.Items))

	for i, item := range b.Items {
		u := Update{Remote: item.Update.Remote.Clone()}
		if item.Update.Local != nil {
			local := item.Update.Local.Clone()
			u.Local = &local
		}

		out.Items[i] = BatchItem{Update: u, State: item.State}
	}

	return &out
}
