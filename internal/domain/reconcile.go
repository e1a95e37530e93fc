package domain

import "encoding/json"

// Update is a remote quote classified as new or updated against the local collection.
type Update struct {
	// Remote is the quote as mapped from the remote collection.
	Remote Quote

	// Local is a copy of the matching local quote at classification time,
	// or nil when the remote quote is new.
	Local *Quote
}

// IsNew reports whether no local quote shared the remote quote's ID.
func (u *Update) IsNew() bool {
	return u.Local == nil
}

// IndexByID returns the position of the first quote carrying id, or -1.
func IndexByID(quotes []Quote, id int64) int {
	for i := range quotes {
		if quotes[i].ID != nil && *quotes[i].ID == id {
			return i
		}
	}

	return -1
}

// NewOrUpdated compares the remote collection against the local one.
//
// A remote quote is new-or-updated when no local quote has the same ID, or when
// its timestamp is strictly greater than the first local match. Equal timestamps
// keep the local copy. Remote quotes without an ID are always new.
func NewOrUpdated(local, remote []Quote) []Update {
	updates := make([]Update, 0)

	for _, r := range remote {
		idx := -1
		if r.ID != nil {
			idx = IndexByID(local, *r.ID)
		}

		if idx < 0 {
			updates = append(updates, Update{Remote: r.Clone()})
			continue
		}

		if r.Timestamp > local[idx].Timestamp {
			match := local[idx].Clone()
			updates = append(updates, Update{Remote: r.Clone(), Local: &match})
		}
	}

	return updates
}

// Merge overlays remote onto local field by field.
// Remote values win on conflict; fields only the local copy carries are kept.
func Merge(local, remote Quote) Quote {
	merged := local.Clone()
	r := remote.Clone()

	if r.ID != nil {
		merged.ID = r.ID
	}

	if r.Text != "" {
		merged.Text = r.Text
	}

	if r.Category != "" {
		merged.Category = r.Category
	}

	merged.Timestamp = r.Timestamp

	if r.Synced != nil {
		merged.Synced = r.Synced
	}

	if len(r.Extra) > 0 {
		if merged.Extra == nil {
			merged.Extra = make(map[string]json.RawMessage, len(r.Extra))
		}

		for k, v := range r.Extra {
			merged.Extra[k] = v
		}
	}

	return merged
}
