package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/mocks"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

func TestNewStore_PanicsWithoutKV(t *testing.T) {
	assert.Panics(t, func() {
		NewStore(StoreConfig{})
	})
}

func TestStore_Add(t *testing.T) {
	kv := newMemKV()
	clock := newTestClock(1_000)
	s := newTestStore(t, kv, clock)

	q, err := s.Add(context.Background(), "  Stay hungry, stay foolish.  ", " Motivation ")
	require.NoError(t, err)

	assert.Equal(t, "Stay hungry, stay foolish.", q.Text)
	assert.Equal(t, "Motivation", q.Category)
	assert.Equal(t, int64(1_000), q.Timestamp)
	assert.Nil(t, q.ID)

	persisted, ok, _ := kv.Get(context.Background(), ports.KeyQuotes)
	require.True(t, ok)
	assert.JSONEq(t, `[{"text":"Stay hungry, stay foolish.","category":"Motivation","timestamp":1000}]`, persisted)
}

func TestStore_Add_Validation(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category string
		fields   []string
	}{
		{name: "empty text", text: "  ", category: "Life", fields: []string{"text"}},
		{name: "empty category", text: "Hi", category: "", fields: []string{"category"}},
		{name: "both empty", text: "", category: "\t", fields: []string{"text", "category"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMemKV()
			s := newTestStore(t, kv, newTestClock(1))

			_, err := s.Add(context.Background(), tt.text, tt.category)

			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))

			fields := domain.ValidationFields(err)
			for _, f := range tt.fields {
				assert.Contains(t, fields, f)
			}

			assert.Zero(t, s.Len())
			_, ok, _ := kv.Get(context.Background(), ports.KeyQuotes)
			assert.False(t, ok, "nothing should be persisted")
		})
	}
}

func TestStore_Add_PersistFailure(t *testing.T) {
	kv := mocks.NewMockKeyValueStore(t)
	kv.EXPECT().Set(mock.Anything, ports.KeyQuotes, mock.Anything).Return(errors.New("disk full"))

	s := NewStore(StoreConfig{KV: kv, Logger: discardLogger()})

	_, err := s.Add(context.Background(), "a", "b")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Zero(t, s.Len(), "failed add is not kept in memory")
}

func TestStore_FailedSaveRollsBack(t *testing.T) {
	tests := []struct {
		name  string
		write func(ctx context.Context, s *Store) error
	}{
		{
			name: "add",
			write: func(ctx context.Context, s *Store) error {
				_, err := s.Add(ctx, "new", "x")
				return err
			},
		},
		{
			name: "remove",
			write: func(ctx context.Context, s *Store) error {
				_, err := s.Remove(ctx, 2)
				return err
			},
		},
		{
			name: "append",
			write: func(ctx context.Context, s *Store) error {
				_, err := s.Append(ctx, []domain.Quote{quoteWithID(9, 1, "z", "z")})
				return err
			},
		},
		{
			name: "mutate in place",
			write: func(ctx context.Context, s *Store) error {
				return s.Mutate(ctx, func(q []domain.Quote) ([]domain.Quote, bool) {
					q[0].Text = "edited"
					return q[:1], true
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := newMemKV()
			s := newTestStore(t, kv, newTestClock(1))

			_, err := s.Append(ctx, []domain.Quote{
				quoteWithID(1, 1, "a", "x"),
				quoteWithID(2, 1, "b", "y"),
			})
			require.NoError(t, err)

			before := s.Snapshot()
			kv.failWrites(errors.New("disk full"))

			err = tt.write(ctx, s)
			require.ErrorContains(t, err, "disk full")
			assert.Equal(t, before, s.Snapshot())

			kv.failWrites(nil)
			require.NoError(t, s.Save(ctx))

			want, err := json.Marshal(before)
			require.NoError(t, err)

			raw, _, _ := kv.Get(ctx, ports.KeyQuotes)
			assert.JSONEq(t, string(want), raw, "rolled back change is never persisted")
		})
	}
}

func TestStore_Load_SeedFailureLeavesStoreEmpty(t *testing.T) {
	kv := newMemKV()
	kv.failWrites(errors.New("read-only"))
	s := NewStore(StoreConfig{KV: kv, SeedDefaults: true, Logger: discardLogger()})

	_, err := s.Load(context.Background())

	require.ErrorContains(t, err, "read-only")
	assert.Zero(t, s.Len())
}

func TestStore_Load_SeedsDefaultsWhenEmpty(t *testing.T) {
	kv := newMemKV()
	s := NewStore(StoreConfig{KV: kv, SeedDefaults: true, Now: newTestClock(5).Now, Logger: discardLogger()})

	added, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(DefaultQuotes), added)
	assert.Equal(t, []string{"Leadership", "Life", "Motivation", "Work"}, s.Categories())

	_, ok, _ := kv.Get(context.Background(), ports.KeyQuotes)
	assert.True(t, ok, "seeded collection is persisted")
}

func TestStore_Load_NoSeedWhenDisabled(t *testing.T) {
	s := newTestStore(t, newMemKV(), newTestClock(1))

	added, err := s.Load(context.Background())

	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Zero(t, s.Len())
}

func TestStore_Load_SkipsInvalidRecords(t *testing.T) {
	kv := newMemKV()
	_ = kv.Set(context.Background(), ports.KeyQuotes,
		`[{"text":"ok","category":"Life","timestamp":1},{"text":"","category":"Life"},{"id":3,"text":"x","category":"y","timestamp":2,"author":"kept"}]`)

	s := newTestStore(t, kv, newTestClock(1))

	added, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	quotes := s.Snapshot()
	require.Len(t, quotes, 2)
	assert.JSONEq(t, `"kept"`, string(quotes[1].Extra["author"]))
}

func TestStore_Load_NotAList(t *testing.T) {
	kv := newMemKV()
	_ = kv.Set(context.Background(), ports.KeyQuotes, `{"text":"a"}`)

	s := newTestStore(t, kv, newTestClock(1))

	_, err := s.Load(context.Background())

	require.Error(t, err)
	assert.True(t, domain.IsFormat(err))
}

// Loading twice must not duplicate the persisted collection.
func TestStore_Load_CalledTwiceDoesNotDuplicate(t *testing.T) {
	kv := newMemKV()
	_ = kv.Set(context.Background(), ports.KeyQuotes,
		`[{"text":"a","category":"b","timestamp":1},{"id":7,"text":"c","category":"d","timestamp":2}]`)

	s := newTestStore(t, kv, newTestClock(1))

	first, err := s.Load(context.Background())
	require.NoError(t, err)

	second, err := s.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, first)
	assert.Zero(t, second)
	assert.Equal(t, 2, s.Len())
}

func TestStore_Load_ReadError(t *testing.T) {
	kv := mocks.NewMockKeyValueStore(t)
	kv.EXPECT().Get(mock.Anything, ports.KeyQuotes).Return("", false, errors.New("io"))

	s := NewStore(StoreConfig{KV: kv, Logger: discardLogger()})

	_, err := s.Load(context.Background())
	assert.Error(t, err)
}

func TestStore_Save_EmptyCollection(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(t, kv, newTestClock(1))

	require.NoError(t, s.Save(context.Background()))

	v, _, _ := kv.Get(context.Background(), ports.KeyQuotes)
	assert.Equal(t, "[]", v)
}

func TestStore_Remove(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(t, kv, newTestClock(1))

	_, err := s.Append(context.Background(), []domain.Quote{
		quoteWithID(1, 1, "a", "x"),
		quoteWithID(2, 1, "b", "x"),
		quoteWithID(3, 1, "c", "y"),
	})
	require.NoError(t, err)

	removed, err := s.Remove(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, removed)

	quotes := s.Snapshot()
	require.Len(t, quotes, 2)
	assert.Equal(t, int64(1), *quotes[0].ID)
	assert.Equal(t, int64(3), *quotes[1].ID)

	removed, err = s.Remove(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 2, s.Len())
}

func TestStore_Append_DeduplicatesByIdentity(t *testing.T) {
	s := newTestStore(t, newMemKV(), newTestClock(1))

	added, err := s.Append(context.Background(), []domain.Quote{
		quoteWithID(1, 1, "a", "x"),
		quoteWithID(1, 5, "changed", "x"),
		{Text: "b", Category: "y", Timestamp: 2},
		{Text: "b", Category: "y", Timestamp: 2},
		{Text: "b", Category: "y", Timestamp: 3},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, added)
}

func TestStore_FilterAndCategories(t *testing.T) {
	s := newTestStore(t, newMemKV(), newTestClock(1))

	_, err := s.Append(context.Background(), []domain.Quote{
		{Text: "a", Category: "Life", Timestamp: 1},
		{Text: "b", Category: "Work", Timestamp: 2},
		{Text: "c", Category: "life", Timestamp: 3},
	})
	require.NoError(t, err)

	assert.Len(t, s.Filter("LIFE"), 2)
	assert.Len(t, s.Filter(""), 3)
	assert.Empty(t, s.Filter("Nope"))
	assert.Equal(t, []string{"Life", "Work", "life"}, s.Categories())
}

func TestStore_Random(t *testing.T) {
	s := newTestStore(t, newMemKV(), newTestClock(1))

	_, err := s.Random("")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	_, err = s.Append(context.Background(), []domain.Quote{
		{Text: "a", Category: "Life", Timestamp: 1},
		{Text: "b", Category: "Work", Timestamp: 2},
	})
	require.NoError(t, err)

	for range 10 {
		q, err := s.Random("work")
		require.NoError(t, err)
		assert.Equal(t, "b", q.Text)
	}

	_, err = s.Random("Missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestStore_SnapshotIsDeepCopy(t *testing.T) {
	s := newTestStore(t, newMemKV(), newTestClock(1))
	_, err := s.Append(context.Background(), []domain.Quote{quoteWithID(1, 1, "a", "x")})
	require.NoError(t, err)

	snap := s.Snapshot()
	*snap[0].ID = 42
	snap[0].Text = "mutated"

	again := s.Snapshot()
	assert.Equal(t, int64(1), *again[0].ID)
	assert.Equal(t, "a", again[0].Text)
}

func TestStore_Mutate(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(t, kv, newTestClock(1))

	err := s.Mutate(context.Background(), func(q []domain.Quote) ([]domain.Quote, bool) {
		return q, false
	})
	require.NoError(t, err)

	_, ok, _ := kv.Get(context.Background(), ports.KeyQuotes)
	assert.False(t, ok, "unchanged collection is not saved")

	err = s.Mutate(context.Background(), func(q []domain.Quote) ([]domain.Quote, bool) {
		return append(q, domain.Quote{Text: "a", Category: "b"}), true
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestDecodeQuotes(t *testing.T) {
	quotes, err := DecodeQuotes([]byte(` [{"text":"a","category":"b","timestamp":1}] `), "import")
	require.NoError(t, err)
	require.Len(t, quotes, 1)

	for _, doc := range []string{`{}`, `"text"`, `[{"text":1}]`, `[`, ``} {
		_, err := DecodeQuotes([]byte(doc), "import")
		assert.True(t, domain.IsFormat(err), "document %q", doc)
	}
}

func TestStore_SaveRoundTripsExtraFields(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(t, kv, newTestClock(1))

	q := quoteWithID(1, 1, "a", "b")
	q.Synced = domain.BoolPtr(true)
	q.Extra = map[string]json.RawMessage{"source": json.RawMessage(`"remote"`)}

	_, err := s.Append(context.Background(), []domain.Quote{q})
	require.NoError(t, err)

	fresh := newTestStore(t, kv, newTestClock(1))
	_, err = fresh.Load(context.Background())
	require.NoError(t, err)

	loaded := fresh.Snapshot()[0]
	assert.True(t, *loaded.Synced)
	assert.JSONEq(t, `"remote"`, string(loaded.Extra["source"]))
}
