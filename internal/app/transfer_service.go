package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// ExportFilename is the suggested name of an exported collection.
const ExportFilename = "quotes.json"

// ImportResult summarizes an import.
type ImportResult struct {
	Received   int
	Added      int
	Duplicates int
}

// TransferServiceConfig contains dependencies for import and export.
type TransferServiceConfig struct {
	Store    *Store
	Notifier ports.Notifier

	// Views is refreshed after a successful import. Optional.
	Views ViewRefresher

	Logger *slog.Logger
}

// TransferService exports the collection as a JSON document and imports
// documents back into it.
type TransferService struct {
	store    *Store
	notifier ports.Notifier
	views    ViewRefresher
	exec     *Executor
	logger   *slog.Logger
}

// NewTransferService creates a transfer service. Panics if Store or Notifier is nil.
func NewTransferService(cfg TransferServiceConfig) *TransferService {
	if cfg.Store == nil {
		panic("TransferService: Store is required")
	}

	if cfg.Notifier == nil {
		panic("TransferService: Notifier is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "app.TransferService"))

	return &TransferService{
		store:    cfg.Store,
		notifier: cfg.Notifier,
		views:    cfg.Views,
		exec:     NewExecutor(logger),
		logger:   logger,
	}
}

// Export serializes the full collection as an indented JSON list.
func (s *TransferService) Export(ctx context.Context) ([]byte, error) {
	quotes := s.store.Snapshot()

	data, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}

	s.logger.InfoContext(ctx, "collection exported", slog.Int("count", len(quotes)))

	return data, nil
}

// Import appends the quotes of a JSON list document. The document must be a
// list and every record must be valid, otherwise nothing is appended.
// Records already in the collection are skipped.
func (s *TransferService) Import(ctx context.Context, document []byte) (ImportResult, error) {
	var added int

	op := Operation[[]byte, []domain.Quote, []domain.Quote, ImportResult]{
		Name: "import_quotes",
		Validate: func(_ context.Context, doc []byte) error {
			if len(doc) == 0 {
				return domain.NewFormatError("import", "document is empty")
			}

			return nil
		},
		Perform: func(_ context.Context, doc []byte) ([]domain.Quote, error) {
			return DecodeQuotes(doc, "import")
		},
		Verify: func(_ context.Context, _ []byte, quotes []domain.Quote) ([]domain.Quote, error) {
			var errs []error

			for i := range quotes {
				if err := quotes[i].Validate(); err != nil {
					errs = append(errs, fmt.Errorf("item %d: %w", i, err))
				}
			}

			if len(errs) > 0 {
				return nil, domain.NewFormatError("import", errors.Join(errs...).Error())
			}

			return quotes, nil
		},
		Archive: func(ctx context.Context, _ []byte, quotes []domain.Quote) error {
			n, err := s.store.Append(ctx, quotes)
			added = n

			return err
		},
		Respond: func(_ context.Context, _ []byte, quotes []domain.Quote) (ImportResult, error) {
			return ImportResult{
				Received:   len(quotes),
				Added:      added,
				Duplicates: len(quotes) - added,
			}, nil
		},
	}

	result, err := Execute(ctx, s.exec, op, document)
	if err != nil {
		return ImportResult{}, err
	}

	s.notifier.Notify(ctx, MsgQuotesImported)

	if s.views != nil {
		s.views.RefreshView(ctx)
	}

	return result, nil
}
