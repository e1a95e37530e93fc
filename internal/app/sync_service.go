package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jsamuelsen/quote-sync/internal/domain"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
	"github.com/jsamuelsen/quote-sync/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-sync/internal/ports"
)

// Resolution decides what happens to a batch of new or updated remote quotes.
type Resolution string

const (
	// ResolvePrompt hands the batch to the ConflictPrompter and waits for the user.
	ResolvePrompt Resolution = "prompt"

	// ResolveAcceptAll accepts every batch as soon as it is found.
	ResolveAcceptAll Resolution = "accept_all"

	// ResolveIgnore discards every batch as soon as it is found.
	ResolveIgnore Resolution = "ignore"
)

// SyncState is the state of the reconciliation cycle.
type SyncState string

const (
	SyncIdle     SyncState = "idle"
	SyncFetching SyncState = "fetching"
)

// User-facing sync messages.
const (
	MsgSyncFailed     = "Failed to sync with server"
	MsgUpdatesPending = "New quotes are available from the server"
)

// CycleResult describes one finished reconciliation cycle.
type CycleResult struct {
	Outcome     string
	Fetched     int
	Batch       *domain.SyncBatch
	CompletedAt time.Time
}

// SyncStatus is a point-in-time view of the sync service.
type SyncStatus struct {
	State       SyncState
	InFlight    int
	LastSync    time.Time
	LastOutcome string
	LastError   string
	Pending     []*domain.SyncBatch
}

// ViewRefresher redraws derived views after the collection changes.
type ViewRefresher interface {
	RefreshView(ctx context.Context)
}

// SyncServiceConfig contains dependencies for the sync service.
type SyncServiceConfig struct {
	Store    *Store
	Remote   ports.RemoteQuoteClient
	KV       ports.KeyValueStore
	Prompter ports.ConflictPrompter
	Notifier ports.Notifier

	// Views is refreshed after accepted changes. Optional.
	Views ViewRefresher

	// Resolution defaults to ResolvePrompt.
	Resolution Resolution

	// Metrics is optional.
	Metrics *telemetry.SyncMetrics

	Now   func() time.Time
	NewID func() string

	Logger *slog.Logger
}

// SyncService reconciles the local collection with the remote one and
// applies the user's decisions on the resulting batches.
//
// A cycle never waits for a decision. Batches stay registered until the
// user resolves them or a later cycle supersedes them.
type SyncService struct {
	store      *Store
	remote     ports.RemoteQuoteClient
	kv         ports.KeyValueStore
	prompter   ports.ConflictPrompter
	notifier   ports.Notifier
	views      ViewRefresher
	resolution Resolution
	metrics    *telemetry.SyncMetrics
	now        func() time.Time
	newID      func() string
	logger     *slog.Logger

	mu          sync.Mutex
	batches     []*domain.SyncBatch
	inFlight    int
	lastOutcome string
	lastError   string
	lastSync    time.Time
}

// NewSyncService creates a sync service. Panics if a required dependency is nil.
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	switch {
	case cfg.Store == nil:
		panic("SyncService: Store is required")
	case cfg.Remote == nil:
		panic("SyncService: Remote is required")
	case cfg.KV == nil:
		panic("SyncService: KV is required")
	case cfg.Notifier == nil:
		panic("SyncService: Notifier is required")
	case cfg.Prompter == nil && (cfg.Resolution == "" || cfg.Resolution == ResolvePrompt):
		panic("SyncService: Prompter is required for the prompt resolution")
	}

	if cfg.Resolution == "" {
		cfg.Resolution = ResolvePrompt
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SyncService{
		store:      cfg.Store,
		remote:     cfg.Remote,
		kv:         cfg.KV,
		prompter:   cfg.Prompter,
		notifier:   cfg.Notifier,
		views:      cfg.Views,
		resolution: cfg.Resolution,
		metrics:    cfg.Metrics,
		now:        cfg.Now,
		newID:      cfg.NewID,
		logger:     logger.With(slog.String("component", "app.SyncService")),
	}
}

// RunCycle fetches the remote collection, classifies new or updated quotes
// and hands any non-empty set to the configured resolution. A fetch failure
// skips the cycle without touching the collection.
func (s *SyncService) RunCycle(ctx context.Context) (*CycleResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "sync.cycle")
	defer span.End()

	start := time.Now()

	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	remote, err := s.remote.FetchQuotes(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "remote fetch failed, skipping cycle", slog.Any("error", err))
		s.notifier.Notify(ctx, MsgSyncFailed)
		s.finish(telemetry.OutcomeSkipped, err, time.Time{})
		s.metrics.ObserveCycle(telemetry.OutcomeSkipped, time.Since(start))

		span.SetStatus(codes.Error, err.Error())

		return &CycleResult{Outcome: telemetry.OutcomeSkipped}, err
	}

	updates := domain.NewOrUpdated(s.store.Snapshot(), remote)
	result := &CycleResult{Outcome: telemetry.OutcomeNoChanges, Fetched: len(remote)}

	newCount := 0
	for i := range updates {
		if updates[i].IsNew() {
			newCount++
		}
	}

	s.metrics.AddUpdates(newCount, len(updates)-newCount)
	s.logger.Log(ctx, logging.LevelTrace, "remote compared",
		slog.Int("fetched", len(remote)),
		slog.Int("new", newCount),
		slog.Int("updated", len(updates)-newCount),
	)

	if len(updates) > 0 {
		batch := domain.NewSyncBatch(s.newID(), s.now(), updates)
		result.Outcome = telemetry.OutcomeUpdates
		result.Batch = batch.Clone()

		s.register(batch)
		span.SetAttributes(attribute.String("sync.batch_id", batch.ID))

		if err := s.resolve(ctx, batch); err != nil {
			s.logger.ErrorContext(ctx, "automatic resolution failed", slog.Any("error", err))
		}
	}

	completedAt := s.now()
	result.CompletedAt = completedAt

	finishErr := errors.Join(
		s.kv.Set(ctx, ports.KeyLastSyncTime, strconv.FormatInt(completedAt.UnixMilli(), 10)),
		s.store.Save(ctx),
	)

	s.finish(result.Outcome, finishErr, completedAt)
	s.metrics.ObserveCycle(result.Outcome, time.Since(start))
	s.metrics.SetStoredQuotes(s.store.Len())

	span.SetAttributes(
		attribute.String("sync.outcome", result.Outcome),
		attribute.Int("sync.updates", len(updates)),
	)

	if finishErr != nil {
		span.SetStatus(codes.Error, finishErr.Error())

		return result, fmt.Errorf("finishing sync cycle: %w", finishErr)
	}

	s.logger.InfoContext(ctx, "sync cycle completed",
		slog.String("outcome", result.Outcome),
		slog.Int("updates", len(updates)),
	)

	return result, nil
}

func (s *SyncService) resolve(ctx context.Context, batch *domain.SyncBatch) error {
	switch s.resolution {
	case ResolveAcceptAll:
		_, err := s.AcceptAll(ctx, batch.ID)

		return err
	case ResolveIgnore:
		_, err := s.Ignore(ctx, batch.ID)

		return err
	default:
		s.notifier.Notify(ctx, MsgUpdatesPending)
		s.prompter.Present(ctx, batch.Clone())

		return nil
	}
}

// register adds batch and drops batches that are resolved or still awaiting
// a first choice. Batches under review are kept.
func (s *SyncService) register(batch *domain.SyncBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches = slices.DeleteFunc(s.batches, func(b *domain.SyncBatch) bool {
		return b.State != domain.BatchReviewing
	})
	s.batches = append(s.batches, batch)

	s.metrics.SetPending(s.openLocked())
}

func (s *SyncService) finish(outcome string, err error, completedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastOutcome = outcome
	s.lastError = ""

	if err != nil {
		s.lastError = err.Error()
	}

	if !completedAt.IsZero() {
		s.lastSync = completedAt
	}
}

func (s *SyncService) openLocked() int {
	n := 0

	for _, b := range s.batches {
		if b.Open() {
			n++
		}
	}

	return n
}

func (s *SyncService) findLocked(batchID string) (*domain.SyncBatch, error) {
	for _, b := range s.batches {
		if b.ID == batchID {
			return b, nil
		}
	}

	return nil, domain.NewNotFoundError("sync batch", batchID)
}

func (s *SyncService) withBatch(ctx context.Context, batchID string) (context.Context, *slog.Logger) {
	ctx = logging.WithBatchID(ctx, batchID)

	return ctx, logging.FromContext(ctx).With(slog.String("component", "app.SyncService"))
}

// transition applies fn to the open batch under the registry lock and
// returns a copy of the result.
func (s *SyncService) transition(batchID string, fn func(b *domain.SyncBatch) error) (*domain.SyncBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, err := s.findLocked(batchID)
	if err != nil {
		return nil, err
	}

	if !batch.Open() {
		return nil, domain.NewConflictErrorWithDetails("sync batch", "already resolved", string(batch.State))
	}

	if err := fn(batch); err != nil {
		return nil, err
	}

	s.metrics.SetPending(s.openLocked())

	return batch.Clone(), nil
}

// AcceptAll applies every pending item of the batch: matched quotes are
// merged field by field, unmatched ones appended.
func (s *SyncService) AcceptAll(ctx context.Context, batchID string) (*domain.SyncBatch, error) {
	ctx, logger := s.withBatch(ctx, batchID)

	var accepted []domain.Quote

	batch, err := s.transition(batchID, func(b *domain.SyncBatch) error {
		for i := range b.Items {
			if b.Items[i].State == domain.ItemPending {
				b.Items[i].State = domain.ItemAccepted
				accepted = append(accepted, b.Items[i].Update.Remote.Clone())
			}
		}

		b.State = domain.BatchAccepted

		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.store.Mutate(ctx, func(quotes []domain.Quote) ([]domain.Quote, bool) {
		for _, remote := range accepted {
			quotes = mergeOrAppend(quotes, remote)
		}

		return quotes, len(accepted) > 0
	})
	if err != nil {
		return batch, err
	}

	s.metrics.ObserveResolution(string(ResolveAcceptAll))
	s.afterChange(ctx)
	s.notifier.Notify(ctx, fmt.Sprintf("Synced %d quote(s) from server", len(accepted)))

	logger.InfoContext(ctx, "sync batch accepted", slog.Int("quotes", len(accepted)))

	return batch, nil
}

// Ignore discards the batch without touching the collection.
func (s *SyncService) Ignore(ctx context.Context, batchID string) (*domain.SyncBatch, error) {
	ctx, logger := s.withBatch(ctx, batchID)

	batch, err := s.transition(batchID, func(b *domain.SyncBatch) error {
		b.State = domain.BatchIgnored

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveResolution(string(ResolveIgnore))
	logger.InfoContext(ctx, "sync batch ignored", slog.Int("items", len(batch.Items)))

	return batch, nil
}

// BeginReview switches the batch to per-item review.
func (s *SyncService) BeginReview(ctx context.Context, batchID string) (*domain.SyncBatch, error) {
	ctx, logger := s.withBatch(ctx, batchID)

	batch, err := s.transition(batchID, func(b *domain.SyncBatch) error {
		if b.State == domain.BatchReviewing {
			return domain.NewConflictError("sync batch", "already under review")
		}

		b.State = domain.BatchReviewing

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "sync batch review started", slog.Int("items", len(batch.Items)))

	return batch, nil
}

// AcceptItem accepts one reviewed quote. It is merged into the local match,
// or appended when there is none, then flagged synced and stamped with the
// current time. A batch awaiting its first choice enters review implicitly.
func (s *SyncService) AcceptItem(ctx context.Context, batchID string, quoteID int64) (*domain.SyncBatch, error) {
	ctx, logger := s.withBatch(ctx, batchID)

	var remote domain.Quote

	batch, err := s.decideItem(batchID, quoteID, domain.ItemAccepted, func(item *domain.BatchItem) {
		remote = item.Update.Remote.Clone()
	})
	if err != nil {
		return nil, err
	}

	now := s.now().UnixMilli()

	err = s.store.Mutate(ctx, func(quotes []domain.Quote) ([]domain.Quote, bool) {
		quotes = mergeOrAppend(quotes, remote)
		idx := domain.IndexByID(quotes, quoteID)
		quotes[idx].Synced = domain.BoolPtr(true)
		quotes[idx].Timestamp = now

		return quotes, true
	})
	if err != nil {
		return batch, err
	}

	s.metrics.ObserveResolution("review_accept")
	s.afterChange(ctx)

	logger.InfoContext(ctx, "sync item accepted", slog.Int64("quote_id", quoteID))

	return batch, nil
}

// RejectItem rejects one reviewed quote and deletes the local quote sharing its ID.
func (s *SyncService) RejectItem(ctx context.Context, batchID string, quoteID int64) (*domain.SyncBatch, error) {
	ctx, logger := s.withBatch(ctx, batchID)

	batch, err := s.decideItem(batchID, quoteID, domain.ItemRejected, nil)
	if err != nil {
		return nil, err
	}

	removed, err := s.store.Remove(ctx, quoteID)
	if err != nil {
		return batch, err
	}

	s.metrics.ObserveResolution("review_reject")

	if removed {
		s.afterChange(ctx)
	}

	logger.InfoContext(ctx, "sync item rejected",
		slog.Int64("quote_id", quoteID),
		slog.Bool("removed_local", removed),
	)

	return batch, nil
}

func (s *SyncService) decideItem(
	batchID string,
	quoteID int64,
	state domain.ItemState,
	capture func(item *domain.BatchItem),
) (*domain.SyncBatch, error) {
	return s.transition(batchID, func(b *domain.SyncBatch) error {
		item, err := b.Item(quoteID)
		if err != nil {
			return err
		}

		if item.State != domain.ItemPending {
			return domain.NewConflictErrorWithDetails("sync item", "already decided", string(item.State))
		}

		item.State = state
		b.State = domain.BatchReviewing

		if capture != nil {
			capture(item)
		}

		if b.Pending() == 0 {
			b.State = domain.BatchReviewed
		}

		return nil
	})
}

func (s *SyncService) afterChange(ctx context.Context) {
	s.metrics.SetStoredQuotes(s.store.Len())

	if s.views != nil {
		s.views.RefreshView(ctx)
	}
}

// mergeOrAppend merges remote into the first quote sharing its ID, or appends it.
func mergeOrAppend(quotes []domain.Quote, remote domain.Quote) []domain.Quote {
	if remote.ID != nil {
		if idx := domain.IndexByID(quotes, *remote.ID); idx >= 0 {
			quotes[idx] = domain.Merge(quotes[idx], remote)

			return quotes
		}
	}

	return append(quotes, remote.Clone())
}

// Batch returns a copy of the registered batch.
func (s *SyncService) Batch(batchID string) (*domain.SyncBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.findLocked(batchID)
	if err != nil {
		return nil, err
	}

	return b.Clone(), nil
}

// Status reports the current state, the last outcome and the open batches.
// The last sync time falls back to the persisted value after a restart.
func (s *SyncService) Status(ctx context.Context) (SyncStatus, error) {
	s.mu.Lock()
	status := SyncStatus{
		State:       SyncIdle,
		InFlight:    s.inFlight,
		LastSync:    s.lastSync,
		LastOutcome: s.lastOutcome,
		LastError:   s.lastError,
		Pending:     make([]*domain.SyncBatch, 0, len(s.batches)),
	}

	for _, b := range s.batches {
		if b.Open() {
			status.Pending = append(status.Pending, b.Clone())
		}
	}
	s.mu.Unlock()

	if status.InFlight > 0 {
		status.State = SyncFetching
	}

	if status.LastSync.IsZero() {
		raw, ok, err := s.kv.Get(ctx, ports.KeyLastSyncTime)
		if err != nil {
			return status, fmt.Errorf("reading last sync time: %w", err)
		}

		if ok {
			if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
				status.LastSync = time.UnixMilli(ms)
			}
		}
	}

	return status, nil
}
