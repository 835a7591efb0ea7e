package reporting

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"equity-lab/internal/attribution"
	"equity-lab/internal/classify"
	"equity-lab/internal/domain"
	"equity-lab/internal/equity"
	"equity-lab/internal/idhash"
	"equity-lab/internal/ledger"
	"equity-lab/internal/metrics"
	"equity-lab/internal/observability"
	"equity-lab/internal/storage"
)

// Generator recomputes account reports from the stored event log.
type Generator struct {
	eventStore    storage.EventStore
	snapshotStore storage.SnapshotStore

	// Optional sinks for derived data; nil skips persistence.
	equitySink storage.EquityPointStore
	perfSink   storage.StrategyPerformanceStore

	windowDays   int
	targetPoints int
	logger       *log.Logger
	now          func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(eventStore storage.EventStore, snapshotStore storage.SnapshotStore) *Generator {
	return &Generator{
		eventStore:    eventStore,
		snapshotStore: snapshotStore,
		windowDays:    30,
		targetPoints:  20,
		logger:        log.Default(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithSinks sets stores that receive the derived equity series and
// strategy performance on every run.
func (g *Generator) WithSinks(equitySink storage.EquityPointStore, perfSink storage.StrategyPerformanceStore) *Generator {
	g.equitySink = equitySink
	g.perfSink = perfSink
	return g
}

// WithWindow sets the rolling metrics window in days.
func (g *Generator) WithWindow(days int) *Generator {
	if days >= 2 {
		g.windowDays = days
	}
	return g
}

// WithTargetPoints sets the downsampled display series length.
func (g *Generator) WithTargetPoints(n int) *Generator {
	if n >= 2 {
		g.targetPoints = n
	}
	return g
}

// WithLogger sets the logger.
func (g *Generator) WithLogger(logger *log.Logger) *Generator {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report for one account.
func (g *Generator) Generate(ctx context.Context, accountID string) (*AccountReport, error) {
	started := g.now()

	report, err := g.generate(ctx, accountID)

	elapsed := g.now().Sub(started).Seconds()
	if err != nil {
		observability.RecordReportRun("error", elapsed)
		return nil, err
	}
	observability.RecordReportRun("ok", elapsed)
	observability.DefaultMetrics.LastSuccessfulReport.SetToCurrentTime()
	return report, nil
}

func (g *Generator) generate(ctx context.Context, accountID string) (*AccountReport, error) {
	stored, err := g.eventStore.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load events for %s: %w", accountID, err)
	}

	snap, err := g.snapshotStore.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot for %s: %w", accountID, err)
	}

	events := make([]domain.DealEvent, len(stored))
	for i, e := range stored {
		events[i] = *e
	}

	classified, classifyErrs := classify.ClassifyAll(events)
	if len(classifyErrs) > 0 {
		g.logger.Printf("[report] %s: skipped %d unclassifiable events", accountID, len(classifyErrs))
	}

	state := ledger.NewReconciler().
		WithClock(g.now).
		Reconcile(accountID, classified, snap.Balance)
	if state.Inferred {
		observability.DefaultMetrics.CapitalInferred.Inc()
		g.logger.Printf("[report] %s: initial capital inferred as %.2f", accountID, state.InferredInitialCapital)
	}

	points, err := equity.NewBuilder().
		WithClock(g.now).
		Build(classified, *snap)
	if err != nil {
		return nil, fmt.Errorf("build equity series for %s: %w", accountID, err)
	}

	snapshot := metrics.Compute(points)

	dailyPnL := metrics.DailyPnL(points)
	rolling := metrics.Rolling(dailyPnL, g.windowDays)
	if len(dailyPnL) < g.windowDays {
		g.logger.Printf("[report] %s: %v: %d daily observations for a %d-day window",
			accountID, metrics.ErrInsufficientData, len(dailyPnL), g.windowDays)
	}

	perf := attribution.NewAttributor().
		WithClock(g.now).
		Attribute(classified)

	strategies := make([]*domain.StrategyPerformance, 0, len(perf))
	for _, p := range perf {
		strategies = append(strategies, p)
	}
	sort.Slice(strategies, func(i, j int) bool {
		return strategies[i].StrategyID < strategies[j].StrategyID
	})

	if g.equitySink != nil {
		seriesPtrs := make([]*domain.EquityPoint, len(points))
		for i := range points {
			seriesPtrs[i] = &points[i]
		}
		if err := g.equitySink.ReplaceAccount(ctx, accountID, seriesPtrs); err != nil {
			return nil, fmt.Errorf("store equity series for %s: %w", accountID, err)
		}
		for range points {
			observability.DefaultMetrics.EquityPointsWritten.Inc()
		}
	}

	if g.perfSink != nil {
		if err := g.perfSink.ReplaceAccount(ctx, accountID, strategies); err != nil {
			return nil, fmt.Errorf("store strategy performance for %s: %w", accountID, err)
		}
	}

	generatedAt := g.now()
	return &AccountReport{
		ReportID:    idhash.ComputeReportID(accountID, generatedAt.UnixMilli(), g.windowDays),
		AccountID:   accountID,
		GeneratedAt: generatedAt,
		EventCount:  len(stored),
		WindowDays:  g.windowDays,
		Snapshot:    *snap,
		Ledger:      state,
		Equity:      points,
		Display:     equity.Downsample(points, g.targetPoints),
		Metrics:     snapshot,
		Rolling:     rolling,
		Strategies:  strategies,
	}, nil
}

// GenerateAll produces reports for every account present in the event
// log. Accounts without a snapshot are skipped with a log line rather
// than failing the whole run.
func (g *Generator) GenerateAll(ctx context.Context) ([]*AccountReport, error) {
	accounts, err := g.eventStore.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	reports := make([]*AccountReport, 0, len(accounts))
	for _, accountID := range accounts {
		report, err := g.Generate(ctx, accountID)
		if err != nil {
			g.logger.Printf("[report] skipping %s: %v", accountID, err)
			continue
		}
		reports = append(reports, report)
	}

	return reports, nil
}
