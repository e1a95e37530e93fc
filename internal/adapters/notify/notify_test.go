package notify

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestFeed_ExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	feed := NewFeed(FeedConfig{TTL: 3 * time.Second, Capacity: 10, Now: clock.Now})

	feed.Notify(context.Background(), "Quote added successfully!")

	active := feed.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Quote added successfully!", active[0].Message)
	assert.Equal(t, clock.t.Add(3*time.Second), active[0].ExpiresAt)
	assert.NotEmpty(t, active[0].ID)

	clock.Advance(2 * time.Second)
	assert.Len(t, feed.Active(), 1)

	clock.Advance(time.Second)
	assert.Empty(t, feed.Active())
}

func TestFeed_EvictsOldestOverCapacity(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	feed := NewFeed(FeedConfig{TTL: time.Minute, Capacity: 2, Now: clock.Now})

	for i := range 3 {
		feed.Notify(context.Background(), fmt.Sprintf("message %d", i))
	}

	active := feed.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "message 1", active[0].Message)
	assert.Equal(t, "message 2", active[1].Message)
}

func TestFeed_ActiveReturnsCopy(t *testing.T) {
	feed := NewFeed(FeedConfig{})
	feed.Notify(context.Background(), "hello")

	active := feed.Active()
	active[0].Message = "changed"

	assert.Equal(t, "hello", feed.Active()[0].Message)
}

func TestNewFeed_Defaults(t *testing.T) {
	feed := NewFeed(FeedConfig{})

	assert.Equal(t, 3*time.Second, feed.ttl)
	assert.Equal(t, 50, feed.capacity)
}

func TestWriter_Notify(t *testing.T) {
	var buf bytes.Buffer

	NewWriter(&buf, nil).Notify(context.Background(), "No quotes found in this category")

	assert.Equal(t, "No quotes found in this category\n", buf.String())
}
