package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"equity-lab/internal/config"
	"equity-lab/internal/ingestion"
	"equity-lab/internal/observability"
	"equity-lab/internal/storage"
	"equity-lab/internal/storage/memory"
	"equity-lab/internal/storage/migrations"
	pgstore "equity-lab/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to YAML config file")
	feedEndpoint := flag.String("feed-endpoint", "", "Deal feed WebSocket endpoint (e.g., wss://feed.example.com/deals)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	accounts := flag.String("accounts", "", "Comma-separated account ids to subscribe to")
	batchSize := flag.Int("batch-size", 100, "Events per insert batch")
	flushInterval := flag.Duration("flush-interval", 5*time.Second, "Max time events wait in the batch")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty uses config)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *feedEndpoint != "" {
		cfg.FeedEndpoint = *feedEndpoint
	}
	if *postgresDSN != "" {
		cfg.PostgresDSN = *postgresDSN
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	if cfg.FeedEndpoint == "" {
		logger.Fatal("No feed endpoint specified. Use --feed-endpoint or FEED_ENDPOINT")
	}

	accountList := splitAccounts(*accounts)
	if len(accountList) == 0 {
		logger.Fatal("No accounts specified. Use --accounts")
	}
	logger.Printf("Subscribing to accounts: %v", accountList)

	// Start metrics server if enabled
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Create stores
	var (
		eventStore    storage.EventStore
		snapshotStore storage.SnapshotStore
	)

	if *useMemory {
		logger.Println("Using in-memory storage")
		eventStore = memory.NewEventStore()
		snapshotStore = memory.NewSnapshotStore()
	} else {
		if cfg.PostgresDSN == "" {
			logger.Fatal("No PostgreSQL DSN specified. Use --postgres-dsn, POSTGRES_DSN, or --use-memory")
		}

		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("run postgres migrations: %v", err)
		}

		eventStore = pgstore.NewEventStore(pool)
		snapshotStore = pgstore.NewSnapshotStore(pool)
	}

	// Connect to the feed
	feed, err := ingestion.NewFeedClient(ctx, cfg.FeedEndpoint, nil, logger)
	if err != nil {
		logger.Fatalf("connect to feed: %v", err)
	}
	defer feed.Close()

	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		Source:        feed,
		Accounts:      accountList,
		EventStore:    eventStore,
		SnapshotStore: snapshotStore,
		BatchSize:     *batchSize,
		FlushInterval: *flushInterval,
		Logger:        logger,
	})

	err = runner.Run(ctx)
	done <- err

	if err != nil && err != context.Canceled {
		logger.Fatalf("runner stopped: %v", err)
	}
	logger.Println("Shutdown complete")
}

// splitAccounts parses the comma-separated account list.
func splitAccounts(s string) []string {
	var accounts []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			accounts = append(accounts, trimmed)
		}
	}
	return accounts
}
