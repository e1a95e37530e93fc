//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	httpadapter "github.com/jsamuelsen/quote-sync/internal/adapters/http"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-sync/internal/adapters/notify"
	"github.com/jsamuelsen/quote-sync/internal/adapters/view"
	"github.com/jsamuelsen/quote-sync/internal/bootstrap"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
)

// fakeRemote serves the remote collection as a list of posts.
type fakeRemote struct {
	mu     sync.Mutex
	posts  []map[string]any
	status int
}

func (f *fakeRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, `{"message":"remote unavailable"}`)

		return
	}

	if r.Method == http.MethodPost {
		var post map[string]any
		_ = json.NewDecoder(r.Body).Decode(&post)
		post["id"] = len(f.posts) + 1000
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(post)

		return
	}

	_ = json.NewEncoder(w).Encode(f.posts)
}

// testContext holds state shared across step definitions within a scenario.
type testContext struct {
	dir        string
	remote     *fakeRemote
	remoteSrv  *httptest.Server
	api        *httptest.Server
	components *bootstrap.Components

	client       *http.Client
	response     *http.Response
	responseBody []byte
	batchID      string
}

func newTestContext() *testContext {
	return &testContext{client: &http.Client{Timeout: 10 * time.Second}}
}

// start assembles the service over a temporary store and a fake remote.
// STORAGE_DRIVER selects the backend; sqlite is the default.
func (tc *testContext) start() error {
	dir, err := os.MkdirTemp("", "quote-sync-features-*")
	if err != nil {
		return err
	}

	tc.dir = dir
	tc.remote = &fakeRemote{}
	tc.remoteSrv = httptest.NewServer(tc.remote)

	cfg, err := config.LoadFrom(dir, "")
	if err != nil {
		return err
	}

	cfg.Storage.Driver = os.Getenv("STORAGE_DRIVER")
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = config.StorageDriverSQLite
	}

	cfg.Storage.Path = filepath.Join(dir, "quotes.db")
	cfg.Services.Remote.BaseURL = tc.remoteSrv.URL
	cfg.Store.SeedDefaults = false
	cfg.Sync.Resolution = config.ResolutionPrompt

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	state := view.NewState(nil)
	feed := notify.NewFeed(notify.FeedConfig{TTL: time.Minute, Logger: logger})

	tc.components, err = bootstrap.Build(context.Background(), bootstrap.Options{
		Config:     cfg,
		Logger:     logger,
		Renderer:   state,
		Prompter:   state,
		Notifier:   feed,
		Registerer: prometheus.NewRegistry(),
	})
	if err != nil {
		return err
	}

	gin.SetMode(gin.TestMode)

	engine := gin.New()
	httpadapter.SetupRouter(engine, httpadapter.RouterConfig{
		ServiceName: "quote-sync-features",
		Timeout:     httpadapter.DefaultRequestTimeout,
		Health:      handlers.NewHealthHandler(tc.components.Health, handlers.NewBuildInfo("test", "features", "now")),
		Quotes:      handlers.NewQuoteHandler(tc.components.Quotes),
		Transfer:    handlers.NewTransferHandler(tc.components.Transfer),
		Sync:        handlers.NewSyncHandler(tc.components.Sync),
		View:        handlers.NewViewHandler(state, feed, tc.components.Quotes, tc.components.Sync),
	})

	tc.api = httptest.NewServer(engine)

	return nil
}

func (tc *testContext) stop() {
	if tc.response != nil && tc.response.Body != nil {
		tc.response.Body.Close()
	}

	if tc.api != nil {
		tc.api.Close()
	}

	if tc.remoteSrv != nil {
		tc.remoteSrv.Close()
	}

	if tc.components != nil {
		_ = tc.components.Close()
	}

	if tc.dir != "" {
		_ = os.RemoveAll(tc.dir)
	}

	*tc = *newTestContext()
}

// InitializeScenario registers step definitions for each scenario.
func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := newTestContext()

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, tc.start()
	})

	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		tc.stop()

		return ctx, nil
	})

	ctx.Step(`^the service is running$`, tc.theServiceIsRunning)
	ctx.Step(`^the remote collection contains:$`, tc.theRemoteCollectionContains)
	ctx.Step(`^the remote collection is unavailable$`, tc.theRemoteCollectionIsUnavailable)
	ctx.Step(`^I request (GET|POST|PUT|DELETE) "([^"]*)"$`, tc.iRequest)
	ctx.Step(`^I send (POST|PUT) "([^"]*)" with body:$`, tc.iSendWithBody)
	ctx.Step(`^I add the quote "([^"]*)" in category "([^"]*)"$`, tc.iAddTheQuote)
	ctx.Step(`^I trigger a sync$`, tc.iTriggerASync)
	ctx.Step(`^I (accept-all|ignore|review) the pending batch$`, tc.iDecideThePendingBatch)
	ctx.Step(`^I (accept|reject) quote (\d+) from the pending batch$`, tc.iDecideQuote)
	ctx.Step(`^the response status should be (\d+)$`, tc.theResponseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.theResponseShouldContain)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, tc.theResponseFieldShouldBe)
	ctx.Step(`^the collection should contain (\d+) quotes?$`, tc.theCollectionShouldContain)
	ctx.Step(`^the category "([^"]*)" should (not )?contain "([^"]*)"$`, tc.theCategoryShouldContain)
}

// theServiceIsRunning verifies the service is reachable.
func (tc *testContext) theServiceIsRunning() error {
	if err := tc.iRequest(http.MethodGet, "/-/live"); err != nil {
		return err
	}

	return tc.theResponseStatusShouldBe(http.StatusOK)
}

func (tc *testContext) theRemoteCollectionContains(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return fmt.Errorf("table needs a header and at least one row")
	}

	header := table.Rows[0].Cells
	posts := make([]map[string]any, 0, len(table.Rows)-1)

	for _, row := range table.Rows[1:] {
		post := map[string]any{}

		for i, cell := range row.Cells {
			name := header[i].Value

			switch name {
			case "id", "timestamp":
				n, err := strconv.ParseInt(cell.Value, 10, 64)
				if err != nil {
					return fmt.Errorf("column %s: %w", name, err)
				}

				post[name] = n
			default:
				post[name] = cell.Value
			}
		}

		posts = append(posts, post)
	}

	tc.remote.mu.Lock()
	tc.remote.posts = posts
	tc.remote.status = 0
	tc.remote.mu.Unlock()

	return nil
}

func (tc *testContext) theRemoteCollectionIsUnavailable() error {
	tc.remote.mu.Lock()
	tc.remote.status = http.StatusServiceUnavailable
	tc.remote.mu.Unlock()

	return nil
}

func (tc *testContext) do(method, path string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, tc.api.URL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if tc.response != nil && tc.response.Body != nil {
		tc.response.Body.Close()
	}

	tc.response, err = tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	tc.responseBody, err = io.ReadAll(tc.response.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return nil
}

func (tc *testContext) iRequest(method, path string) error {
	return tc.do(method, path, nil)
}

func (tc *testContext) iSendWithBody(method, path string, body *godog.DocString) error {
	return tc.do(method, path, []byte(body.Content))
}

func (tc *testContext) iAddTheQuote(text, category string) error {
	body, err := json.Marshal(map[string]string{"text": text, "category": category})
	if err != nil {
		return err
	}

	if err := tc.do(http.MethodPost, "/api/v1/quotes", body); err != nil {
		return err
	}

	return tc.theResponseStatusShouldBe(http.StatusCreated)
}

func (tc *testContext) iTriggerASync() error {
	if err := tc.do(http.MethodPost, "/api/v1/sync", nil); err != nil {
		return err
	}

	var cycle struct {
		Batch *struct {
			ID string `json:"id"`
		} `json:"batch"`
	}

	if tc.response.StatusCode == http.StatusOK {
		if err := json.Unmarshal(tc.responseBody, &cycle); err != nil {
			return fmt.Errorf("decoding cycle: %w", err)
		}

		if cycle.Batch != nil {
			tc.batchID = cycle.Batch.ID
		}
	}

	return nil
}

func (tc *testContext) iDecideThePendingBatch(action string) error {
	if tc.batchID == "" {
		return fmt.Errorf("no pending batch")
	}

	return tc.do(http.MethodPost, "/api/v1/sync/batches/"+tc.batchID+"/"+action, nil)
}

func (tc *testContext) iDecideQuote(action string, quoteID int) error {
	if tc.batchID == "" {
		return fmt.Errorf("no pending batch")
	}

	return tc.do(http.MethodPost, fmt.Sprintf("/api/v1/sync/batches/%s/items/%d/%s", tc.batchID, quoteID, action), nil)
}

// theResponseStatusShouldBe asserts the response status code.
func (tc *testContext) theResponseStatusShouldBe(expectedCode int) error {
	if tc.response == nil {
		return fmt.Errorf("no response received")
	}

	if tc.response.StatusCode != expectedCode {
		return fmt.Errorf("expected status %d, got %d. Body: %s",
			expectedCode, tc.response.StatusCode, string(tc.responseBody))
	}

	return nil
}

// theResponseShouldContain asserts the response body contains the given text.
func (tc *testContext) theResponseShouldContain(text string) error {
	if tc.responseBody == nil {
		return fmt.Errorf("no response body")
	}

	if !strings.Contains(string(tc.responseBody), text) {
		return fmt.Errorf("response body does not contain %q.\nBody: %s", text, tc.responseBody)
	}

	return nil
}

// theResponseFieldShouldBe compares a top-level JSON field in its text form.
func (tc *testContext) theResponseFieldShouldBe(field, expected string) error {
	var body map[string]any
	if err := json.Unmarshal(tc.responseBody, &body); err != nil {
		return fmt.Errorf("response is not a JSON object: %w", err)
	}

	value, ok := body[field]
	if !ok {
		return fmt.Errorf("response has no field %q.\nBody: %s", field, tc.responseBody)
	}

	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("field %q is %q, want %q", field, got, expected)
	}

	return nil
}

type quotePage struct {
	Items []struct {
		Text string `json:"text"`
	} `json:"items"`
	Total int `json:"total"`
}

func (tc *testContext) listQuotes(category string) (quotePage, error) {
	var page quotePage

	path := "/api/v1/quotes?limit=100"
	if category != "" {
		path += "&category=" + category
	}

	if err := tc.do(http.MethodGet, path, nil); err != nil {
		return page, err
	}

	if err := tc.theResponseStatusShouldBe(http.StatusOK); err != nil {
		return page, err
	}

	err := json.Unmarshal(tc.responseBody, &page)

	return page, err
}

func (tc *testContext) theCollectionShouldContain(n int) error {
	page, err := tc.listQuotes("")
	if err != nil {
		return err
	}

	if page.Total != n {
		return fmt.Errorf("expected %d quotes, got %d", n, page.Total)
	}

	return nil
}

func (tc *testContext) theCategoryShouldContain(category, not, text string) error {
	page, err := tc.listQuotes(category)
	if err != nil {
		return err
	}

	found := false
	for _, item := range page.Items {
		if item.Text == text {
			found = true
		}
	}

	if want := not == ""; found != want {
		return fmt.Errorf("category %q: contains %q is %v, want %v", category, text, found, want)
	}

	return nil
}

// TestFeatures runs the GoDog BDD test suite.
func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			TestingT: t,
			Tags:     os.Getenv("GODOG_TAGS"),
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
