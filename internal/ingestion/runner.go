package ingestion

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/oklog/ulid/v2"

	"equity-lab/internal/classify"
	"equity-lab/internal/domain"
	"equity-lab/internal/idhash"
	"equity-lab/internal/observability"
	"equity-lab/internal/storage"
)

// Runner consumes the deal feed and persists events and snapshots.
// Deal events accumulate in a batch that is flushed on size or on a
// periodic ticker; snapshots are written through immediately.
type Runner struct {
	source        FeedSource
	accounts      []string
	eventStore    storage.EventStore
	snapshotStore storage.SnapshotStore
	batchSize     int
	flushInterval time.Duration
	logger        *log.Logger

	batch []*domain.DealEvent
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Source        FeedSource
	Accounts      []string
	EventStore    storage.EventStore
	SnapshotStore storage.SnapshotStore
	BatchSize     int           // Default: 100 events
	FlushInterval time.Duration // Default: 5s
	Logger        *log.Logger
}

// NewRunner creates a new ingestion runner.
func NewRunner(opts RunnerOptions) *Runner {
	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = 100
	}

	flushInterval := opts.FlushInterval
	if flushInterval == 0 {
		flushInterval = 5 * time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		source:        opts.Source,
		accounts:      opts.Accounts,
		eventStore:    opts.EventStore,
		snapshotStore: opts.SnapshotStore,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        logger,
	}
}

// Run starts continuous ingestion. It blocks until context is cancelled
// or the feed channel closes.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Println("[ingest] starting runner...")

	messages, err := r.source.Subscribe(ctx, r.accounts)
	if err != nil {
		return err
	}
	r.logger.Printf("[ingest] subscribed to %d accounts", len(r.accounts))

	flushTicker := time.NewTicker(r.flushInterval)
	defer flushTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Flush remaining events before shutdown
			r.flush(context.WithoutCancel(ctx))
			r.logger.Println("[ingest] runner stopping...")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				r.flush(ctx)
				r.logger.Println("[ingest] feed channel closed")
				return errors.New("feed channel closed")
			}
			r.handleMessage(ctx, msg)

		case <-flushTicker.C:
			r.flush(ctx)
		}
	}
}

// handleMessage routes one feed message.
func (r *Runner) handleMessage(ctx context.Context, msg FeedMessage) {
	switch msg.Type {
	case "deal":
		r.handleDeal(ctx, msg.Deal)
	case "snapshot":
		r.handleSnapshot(ctx, msg.Snapshot)
	}
}

// handleDeal validates a deal payload and adds it to the batch.
func (r *Runner) handleDeal(ctx context.Context, p *DealPayload) {
	observability.RecordEventReceived()

	event := toDomainEvent(p)

	// Classification doubles as validation here; the category itself is
	// recomputed at report time.
	if _, err := classify.Classify(*event); err != nil {
		r.logger.Printf("[ingest] dropping invalid event %s: %v", event.EventID, err)
		observability.RecordEventError("invalid_event")
		return
	}

	r.batch = append(r.batch, event)
	if len(r.batch) >= r.batchSize {
		r.flush(ctx)
	}
}

// handleSnapshot writes a snapshot through immediately.
func (r *Runner) handleSnapshot(ctx context.Context, p *SnapshotPayload) {
	snap := &domain.AccountSnapshot{
		AccountID: p.AccountID,
		Balance:   p.Balance,
		Equity:    p.Equity,
		TakenAt:   time.UnixMilli(p.TimestampMs).UTC(),
	}

	if err := r.snapshotStore.Put(ctx, snap); err != nil {
		r.logger.Printf("[ingest] store snapshot for %s: %v", p.AccountID, err)
		observability.RecordEventError("snapshot_store")
		return
	}

	observability.DefaultMetrics.SnapshotsStored.Inc()
}

// flush writes the accumulated batch. A duplicate inside the batch falls
// back to per-event inserts so that fresh events still land when the
// feed replays history.
func (r *Runner) flush(ctx context.Context) {
	if len(r.batch) == 0 {
		return
	}

	batchID := ulid.Make().String()
	events := r.batch
	r.batch = nil

	err := r.eventStore.InsertBulk(ctx, events)
	if err == nil {
		for range events {
			observability.RecordEventStored()
		}
		observability.DefaultMetrics.LastSuccessfulIngestion.SetToCurrentTime()
		r.logger.Printf("[ingest] batch %s: stored %d events", batchID, len(events))
		return
	}

	if !errors.Is(err, storage.ErrDuplicateKey) {
		r.logger.Printf("[ingest] batch %s: bulk insert failed: %v", batchID, err)
		observability.RecordEventError("bulk_insert")
		// Keep the events for the next flush attempt.
		r.batch = append(events, r.batch...)
		return
	}

	stored, dupes := 0, 0
	for _, e := range events {
		switch insErr := r.eventStore.Insert(ctx, e); {
		case insErr == nil:
			stored++
			observability.RecordEventStored()
		case errors.Is(insErr, storage.ErrDuplicateKey):
			dupes++
			observability.DefaultMetrics.EventsDuplicate.Inc()
		default:
			r.logger.Printf("[ingest] batch %s: insert %s: %v", batchID, e.EventID, insErr)
			observability.RecordEventError("insert")
		}
	}

	if stored > 0 {
		observability.DefaultMetrics.LastSuccessfulIngestion.SetToCurrentTime()
	}
	r.logger.Printf("[ingest] batch %s: stored %d events, skipped %d duplicates", batchID, stored, dupes)
}

// toDomainEvent converts a wire payload. Feeds without native deal ids
// get a deterministic one derived from the event content. A missing or
// non-positive timestamp maps to the zero time so classification rejects
// the event instead of backdating it to the Unix epoch.
func toDomainEvent(p *DealPayload) *domain.DealEvent {
	eventID := p.EventID
	if eventID == "" {
		eventID = idhash.ComputeEventID(
			p.AccountID, p.TimestampMs, domain.EventKind(p.Kind),
			p.Symbol, p.Volume, p.Profit,
		)
	}

	var ts time.Time
	if p.TimestampMs > 0 {
		ts = time.UnixMilli(p.TimestampMs).UTC()
	}

	return &domain.DealEvent{
		EventID:    eventID,
		AccountID:  p.AccountID,
		Timestamp:  ts,
		Kind:       domain.EventKind(p.Kind),
		Entry:      domain.EntryFlag(p.Entry),
		Symbol:     p.Symbol,
		Volume:     p.Volume,
		Price:      p.Price,
		Profit:     p.Profit,
		Commission: p.Commission,
		Swap:       p.Swap,
		StrategyID: p.StrategyID,
	}
}
