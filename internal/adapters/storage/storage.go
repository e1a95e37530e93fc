// Package storage provides key-value store adapters for persistent and
// session state.
//
// Three drivers implement ports.KeyValueStore:
//   - bolt: a single bbolt file (default)
//   - sqlite: a pure-Go SQLite database
//   - memory: a process-lifetime map, also used as session storage
package storage

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/jsamuelsen/quote-sync/internal/platform/config"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// Store is a key-value store that reports its health and owns resources.
type Store interface {
	ports.KeyValueStore
	ports.HealthChecker
	io.Closer
}

// Open creates the store selected by cfg.Driver.
func Open(cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "storage"), slog.String("driver", cfg.Driver))

	var (
		store Store
		err   error
	)

	switch cfg.Driver {
	case config.StorageDriverBolt:
		store, err = NewBolt(cfg.Path)
	case config.StorageDriverSQLite:
		store, err = NewSQLite(cfg.Path)
	case config.StorageDriverMemory, "":
		store = NewMemory("memory")
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Driver, err)
	}

	logger.Info("storage opened", slog.String("path", cfg.Path))

	return store, nil
}
