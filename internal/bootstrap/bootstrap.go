// Package bootstrap assembles the application services from configuration.
// The HTTP service and the command line share it and differ only in how
// quotes, batches and notifications reach the user.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-sync/internal/adapters/clients"
	"github.com/jsamuelsen/quote-sync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-sync/internal/adapters/storage"
	"github.com/jsamuelsen/quote-sync/internal/app"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
	"github.com/jsamuelsen/quote-sync/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// Options selects the user-facing adapters.
type Options struct {
	Config *config.Config
	Logger *slog.Logger

	Renderer ports.Renderer
	Prompter ports.ConflictPrompter
	Notifier ports.Notifier

	// Remote replaces the HTTP remote client when set.
	Remote ports.RemoteQuoteClient

	// Registerer receives the sync metrics. Nil uses the default registerer.
	Registerer prometheus.Registerer

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Components are the assembled services. Close releases the storage.
type Components struct {
	Store    *app.Store
	Quotes   *app.QuoteService
	Transfer *app.TransferService
	Sync     *app.SyncService
	Health   *ports.DefaultHealthRegistry
	Metrics  *telemetry.SyncMetrics

	closers []io.Closer
}

// Build opens storage, loads the collection and creates the services.
func Build(ctx context.Context, opts Options) (*Components, error) {
	cfg := opts.Config
	logger := opts.Logger

	if logger == nil {
		logger = slog.Default()
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	persistent, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	c := &Components{
		Health:  ports.NewHealthRegistry(),
		Metrics: telemetry.NewSyncMetrics(opts.Registerer),
		closers: []io.Closer{persistent},
	}

	if err := c.Health.Register(persistent); err != nil {
		return nil, errors.Join(err, c.Close())
	}

	remote := opts.Remote
	if remote == nil {
		remote, err = newRemote(cfg, opts.Now, logger)
		if err != nil {
			return nil, errors.Join(err, c.Close())
		}
	}

	if checker, ok := remote.(ports.HealthChecker); ok {
		if err := c.Health.Register(checker); err != nil {
			return nil, errors.Join(err, c.Close())
		}
	}

	c.Store = app.NewStore(app.StoreConfig{
		KV:           persistent,
		SeedDefaults: cfg.Store.SeedDefaults,
		Now:          opts.Now,
		Logger:       logger,
	})

	if _, err := c.Store.Load(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("loading quotes: %w", err), c.Close())
	}

	c.Quotes = app.NewQuoteService(app.QuoteServiceConfig{
		Store:     c.Store,
		Prefs:     persistent,
		Session:   storage.NewMemory("session"),
		Renderer:  opts.Renderer,
		Notifier:  opts.Notifier,
		Remote:    remote,
		PushOnAdd: cfg.Sync.PushOnAdd,
		Logger:    logger,
	})

	c.Transfer = app.NewTransferService(app.TransferServiceConfig{
		Store:    c.Store,
		Notifier: opts.Notifier,
		Views:    c.Quotes,
		Logger:   logger,
	})

	c.Sync = app.NewSyncService(app.SyncServiceConfig{
		Store:      c.Store,
		Remote:     remote,
		KV:         persistent,
		Prompter:   opts.Prompter,
		Notifier:   opts.Notifier,
		Views:      c.Quotes,
		Resolution: app.Resolution(cfg.Sync.Resolution),
		Metrics:    c.Metrics,
		Now:        opts.Now,
		Logger:     logger,
	})

	return c, nil
}

func newRemote(cfg *config.Config, now func() time.Time, logger *slog.Logger) (*acl.RemoteQuoteClient, error) {
	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Remote.BaseURL,
		ServiceName: cfg.Services.Remote.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}

	return acl.NewRemoteQuoteClient(acl.RemoteQuoteClientConfig{
		Client:      httpClient,
		ServiceName: cfg.Services.Remote.Name,
		Path:        cfg.Services.Remote.Path,
		Now:         now,
		Logger:      logger,
	}), nil
}

// Scheduler creates the periodic trigger for the sync service.
func (c *Components) Scheduler(cfg config.SyncConfig, logger *slog.Logger) *app.Scheduler {
	return app.NewScheduler(app.SchedulerConfig{
		Cycler:       c.Sync,
		Interval:     cfg.Interval,
		AllowOverlap: cfg.AllowOverlap,
		Metrics:      c.Metrics,
		Logger:       logger,
	})
}

// Close releases the storage.
func (c *Components) Close() error {
	var errs []error

	for _, closer := range c.closers {
		errs = append(errs, closer.Close())
	}

	return errors.Join(errs...)
}
