package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nparshin/product-discovery/internal/bootstrap"
	"github.com/nparshin/product-discovery/internal/config"
	"github.com/nparshin/product-discovery/internal/observability/logging"
	"github.com/nparshin/product-discovery/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("indexer", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	indexerMetrics := metrics.NewIndexerMetrics("indexer")
	go serveMetrics(cfg.WorkerMetricsPort, indexerMetrics)

	// Backfill an empty collection so a fresh deployment can search the
	// existing catalog without replaying index events.
	reindexed, err := app.IndexUC.ReindexAllIfEmpty(ctx)
	if err != nil {
		slog.Warn("startup reindex failed", "error", err)
	} else if reindexed > 0 {
		indexerMetrics.AddReindexed(reindexed)
		slog.Info("startup reindex complete", "products", reindexed)
	}

	slog.Info("indexer subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeProductIndex(ctx, func(handlerCtx context.Context, productID int64) error {
		indexCtx, cancel := context.WithTimeout(handlerCtx, 2*time.Minute)
		defer cancel()

		indexerMetrics.StartProduct()
		start := time.Now()
		indexErr := app.IndexUC.IndexByID(indexCtx, productID)
		indexerMetrics.FinishProduct("indexer", time.Since(start), indexErr)
		return indexErr
	})
	if err != nil {
		slog.Error("indexer subscribe failed", "error", err)
		os.Exit(1)
	}
}

func serveMetrics(port string, m *metrics.IndexerMetrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("metrics server failed", "error", err)
	}
}
