package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	assert.NoError(t, p.Shutdown(context.Background()))
	assert.NotNil(t, Tracer())
}

func TestNewResource_Attributes(t *testing.T) {
	res, err := newResource(&Config{
		ServiceName: "quote-sync",
		Version:     "1.2.3",
		Environment: "test",
		Attributes:  map[string]string{"quotes.storage.driver": "bolt"},
	})
	require.NoError(t, err)

	got := map[string]string{}
	for _, kv := range res.Attributes() {
		got[string(kv.Key)] = kv.Value.Emit()
	}

	assert.Equal(t, "quote-sync", got["service.name"])
	assert.Equal(t, "1.2.3", got["service.version"])
	assert.Equal(t, "bolt", got["quotes.storage.driver"])
}

func TestSyncMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSyncMetrics(reg)

	m.ObserveCycle(OutcomeUpdates, 20*time.Millisecond)
	m.ObserveCycle(OutcomeSkipped, time.Millisecond)
	m.ObserveCycle(OutcomeSkipped, time.Millisecond)
	m.AddUpdates(2, 1)
	m.ObserveResolution("accept_all")
	m.SetPending(1)
	m.SetStoredQuotes(7)

	assert.InDelta(t, 1, testutil.ToFloat64(m.cycles.WithLabelValues(OutcomeUpdates)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.cycles.WithLabelValues(OutcomeSkipped)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.updates.WithLabelValues("new")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.updates.WithLabelValues("updated")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.resolutions.WithLabelValues("accept_all")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.pending), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(m.quotes), 0)

	expected := `
# HELP quote_sync_pending_batches Sync batches awaiting a decision.
# TYPE quote_sync_pending_batches gauge
quote_sync_pending_batches 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "quote_sync_pending_batches"))
}

func TestSyncMetrics_NilIsNoop(t *testing.T) {
	var m *SyncMetrics

	assert.NotPanics(t, func() {
		m.ObserveCycle(OutcomeNoChanges, time.Second)
		m.AddUpdates(1, 1)
		m.ObserveResolution("ignore")
		m.SetPending(0)
		m.SetStoredQuotes(0)
	})
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(Middleware("quote-sync")...)
	engine.GET("/api/v1/quotes", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quotes", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
}
