package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-sync/internal/adapters/notify"
	"github.com/jsamuelsen/quote-sync/internal/adapters/storage"
	"github.com/jsamuelsen/quote-sync/internal/adapters/view"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServerConfig(maxRequestSize int64) *config.ServerConfig {
	return &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 2 * time.Second,
		MaxRequestSize:  maxRequestSize,
	}
}

// newRouterConfig wires the quote, transfer and view handlers over an
// in-memory store. Sync is left out.
func newRouterConfig(t *testing.T) RouterConfig {
	t.Helper()

	logger := discardLogger()
	kv := storage.NewMemory("storage-memory")
	feed := notify.NewFeed(notify.FeedConfig{TTL: time.Hour, Logger: logger})
	state := view.NewState(nil)

	store := app.NewStore(app.StoreConfig{KV: kv, Logger: logger})

	quotes := app.NewQuoteService(app.QuoteServiceConfig{
		Store:    store,
		Prefs:    kv,
		Session:  storage.NewMemory("session"),
		Renderer: state,
		Notifier: feed,
		Logger:   logger,
	})

	transfer := app.NewTransferService(app.TransferServiceConfig{
		Store:    store,
		Notifier: feed,
		Views:    quotes,
		Logger:   logger,
	})

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(kv))

	return RouterConfig{
		ServiceName: "quote-sync-test",
		Timeout:     time.Second,
		Health:      handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "abc123", "now")),
		Quotes:      handlers.NewQuoteHandler(quotes),
		Transfer:    handlers.NewTransferHandler(transfer),
		View:        handlers.NewViewHandler(state, feed, quotes, nil),
	}
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	return w
}

func TestNew(t *testing.T) {
	srv := New(testServerConfig(1<<20), discardLogger())

	require.NotNil(t, srv.Engine())
	assert.Equal(t, "127.0.0.1:0", srv.Addr())
}

func TestServer_StartShutdown(t *testing.T) {
	srv := New(testServerConfig(1<<20), discardLogger())

	errCh := srv.Start()

	time.Sleep(50 * time.Millisecond)

	select {
	case err := <-errCh:
		require.NoError(t, err)
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))

	_, ok := <-errCh
	assert.False(t, ok, "error channel should be closed")
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	srv := New(testServerConfig(1<<20), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestServer_RunReportsListenFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })

	cfg := testServerConfig(1 << 20)
	cfg.Port = busy.Addr().(*net.TCPAddr).Port

	err = New(cfg, discardLogger()).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server error")
}

func TestMaxBodySize(t *testing.T) {
	srv := New(testServerConfig(16), discardLogger())
	srv.Engine().POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)

			return
		}

		c.String(http.StatusOK, "%d", len(body))
	})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "under limit", body: "short", status: http.StatusOK},
		{name: "over limit", body: strings.Repeat("x", 64), status: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(tt.body))

			assert.Equal(t, tt.status, serve(srv.Engine(), req).Code)
		})
	}
}

func TestSetupRouter_Routes(t *testing.T) {
	engine := gin.New()
	SetupRouter(engine, newRouterConfig(t))

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{method: http.MethodGet, path: "/-/live", status: http.StatusOK},
		{method: http.MethodGet, path: "/-/ready", status: http.StatusOK},
		{method: http.MethodGet, path: "/-/build", status: http.StatusOK},
		{method: http.MethodGet, path: "/-/metrics", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/quotes", status: http.StatusOK},
		{method: http.MethodPost, path: "/api/v1/quotes", body: `{"text":"Keep going","category":"life"}`, status: http.StatusCreated},
		{method: http.MethodGet, path: "/api/v1/quotes/export", status: http.StatusOK},
		{method: http.MethodPost, path: "/api/v1/quotes/import", body: `[]`, status: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/categories", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/view", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/v1/notifications", status: http.StatusOK},
		{method: http.MethodPost, path: "/api/v1/sync", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = bytes.NewBufferString(tt.body)
			}

			req := httptest.NewRequest(tt.method, tt.path, body)
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}

			assert.Equal(t, tt.status, serve(engine, req).Code)
		})
	}
}

func TestSetupRouter_PropagatesIDs(t *testing.T) {
	engine := gin.New()
	SetupRouter(engine, newRouterConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/-/live", nil)
	req.Header.Set(middleware.HeaderCorrelationID, "corr-1")

	w := serve(engine, req)

	assert.Equal(t, "corr-1", w.Header().Get(middleware.HeaderCorrelationID))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestSetupRouter_RecoversPanics(t *testing.T) {
	engine := gin.New()
	SetupRouter(engine, RouterConfig{ServiceName: "quote-sync-test"})
	engine.GET("/boom", func(*gin.Context) { panic("boom") })

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeInternal, resp.Error.Code)
}

func TestSetupRouter_NilHandlers(t *testing.T) {
	engine := gin.New()
	SetupRouter(engine, RouterConfig{})

	assert.Equal(t, http.StatusNotFound, serve(engine, httptest.NewRequest(http.MethodGet, "/-/live", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)).Code)
}
