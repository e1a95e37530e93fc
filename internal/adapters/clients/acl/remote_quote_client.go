package acl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jsamuelsen/quote-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
)

// DefaultRemotePath is the collection path on the remote server.
const DefaultRemotePath = "/posts"

// RemoteQuoteClientConfig contains configuration for the remote quote client.
type RemoteQuoteClientConfig struct {
	// Client is the instrumented HTTP client. Its BaseURL points at the remote server.
	Client *clients.Client

	// ServiceName names the remote in errors and health checks.
	ServiceName string

	// Path is the collection path. Defaults to DefaultRemotePath.
	Path string

	// Now supplies the fallback timestamp for items without one.
	Now func() time.Time

	Logger *slog.Logger
}

// RemoteQuoteClient implements ports.RemoteQuoteClient against a JSON
// collection of posts.
type RemoteQuoteClient struct {
	BaseAdapter

	path   string
	now    func() time.Time
	logger *slog.Logger
}

// NewRemoteQuoteClient creates the adapter. Panics if Client is nil.
func NewRemoteQuoteClient(cfg RemoteQuoteClientConfig) *RemoteQuoteClient {
	if cfg.Client == nil {
		panic("RemoteQuoteClient: Client is required")
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = "remote-quotes"
	}

	if cfg.Path == "" {
		cfg.Path = DefaultRemotePath
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RemoteQuoteClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, cfg.ServiceName),
		path:        cfg.Path,
		now:         cfg.Now,
		logger:      logger.With(slog.String("component", "acl.RemoteQuoteClient")),
	}
}

// remotePost is the remote collection's item shape.
type remotePost struct {
	ID        *int64 `json:"id,omitempty"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Timestamp *int64 `json:"timestamp,omitempty"`
	UserID    int    `json:"userId,omitempty"`
}

// FetchQuotes retrieves the remote collection mapped to domain quotes.
func (c *RemoteQuoteClient) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", c.path))

	body, err := c.Get(ctx, c.path, "fetch quotes")
	if err != nil {
		return nil, err
	}

	posts, err := DecodeResponse[[]remotePost](body)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	fetchedAt := c.now().UnixMilli()
	quotes := TranslateSlice(*posts, func(p *remotePost) (domain.Quote, bool) {
		return translatePost(p, fetchedAt)
	})

	c.logger.DebugContext(ctx, "fetched remote quotes",
		slog.Int("received", len(*posts)),
		slog.Int("usable", len(quotes)),
	)

	return quotes, nil
}

// PostQuote sends one quote and returns the server's echo.
func (c *RemoteQuoteClient) PostQuote(ctx context.Context, quote domain.Quote) (*domain.Quote, error) {
	payload := remotePost{
		ID:        quote.ID,
		Title:     quote.Text,
		Body:      quote.Category,
		Timestamp: &quote.Timestamp,
	}

	body, err := c.Post(ctx, c.path, payload, "post quote")
	if err != nil {
		return nil, err
	}

	echo, err := DecodeResponse[remotePost](body)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	q, ok := translatePost(echo, quote.Timestamp)
	if !ok {
		return nil, domain.NewUnavailableError(c.ServiceName(), "post quote: echo has no id or title")
	}

	c.logger.DebugContext(ctx, "posted quote", slog.String("quote_id", q.IDString()))

	return &q, nil
}

// translatePost maps a remote post to a quote. Posts without an id or with a
// blank title are dropped, since reconcile matches remote quotes by id.
func translatePost(p *remotePost, fallbackTimestamp int64) (domain.Quote, bool) {
	text := strings.TrimSpace(p.Title)
	if text == "" || p.ID == nil {
		return domain.Quote{}, false
	}

	q := domain.Quote{
		ID:        domain.Int64Ptr(*p.ID),
		Text:      text,
		Category:  categoryFromBody(p.Body),
		Timestamp: fallbackTimestamp,
	}

	if p.Timestamp != nil {
		q.Timestamp = *p.Timestamp
	}

	return q, true
}

// categoryFromBody returns the first line of body, or the default category
// when that line is blank.
func categoryFromBody(body string) string {
	first, _, _ := strings.Cut(body, "\n")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}

	return domain.DefaultCategory
}

// Name implements ports.HealthChecker.
func (c *RemoteQuoteClient) Name() string {
	return c.ServiceName()
}

// Check implements ports.HealthChecker. An open circuit is reported without
// touching the network.
func (c *RemoteQuoteClient) Check(ctx context.Context) error {
	if snap := c.Client().Snapshot(); snap.State == clients.StateOpen {
		return fmt.Errorf("circuit open until %s", snap.RetryAt.Format(time.RFC3339))
	}

	body, err := c.Get(ctx, c.path, "health check")
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	_, err = io.Copy(io.Discard, body)

	return err
}
