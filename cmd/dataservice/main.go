package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/liyue/tracemap/internal/config"
	"github.com/liyue/tracemap/internal/dataset"
	"github.com/liyue/tracemap/internal/graph"
	"github.com/liyue/tracemap/internal/logging"
	"github.com/liyue/tracemap/internal/server"
	"github.com/liyue/tracemap/internal/store"
)

func main() {
	var (
		datasetPath = flag.String("dataset", "", "Path to a records.json seeding the store on startup")
		fromObject  = flag.Bool("from-object", false, "Seed the store from the configured object storage bucket")
		workers     = flag.Int("workers", 4, "Number of concurrent workers for seeding")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "dataservice")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recordStore, cleanup, err := buildRecordStore(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create record store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := seedStore(ctx, logger, cfg, recordStore, *datasetPath, *fromObject, *workers); err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	router := store.NewRouter(logger, store.NewAPIHandlers(logger, recordStore))
	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// buildRecordStore picks the graph backend when one is configured and falls
// back to the in-memory store otherwise.
func buildRecordStore(ctx context.Context, logger *slog.Logger, cfg config.Config) (store.RecordStore, func(), error) {
	if cfg.Graph.URI == "" {
		logger.Info("no graph database configured, using in-memory store")
		return store.NewMemoryStore(), func() {}, nil
	}

	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}
	return store.NewGraphStore(client), cleanup, nil
}

func seedStore(ctx context.Context, logger *slog.Logger, cfg config.Config, recordStore store.RecordStore, path string, fromObject bool, workers int) error {
	var source dataset.Source
	switch {
	case path != "":
		source = dataset.FileSource{Path: path}
	case fromObject:
		objectStore, err := dataset.NewObjectStore(dataset.ObjectStoreConfig{
			Endpoint:  cfg.Dataset.Endpoint,
			AccessKey: cfg.Dataset.AccessKey,
			SecretKey: cfg.Dataset.SecretKey,
			UseSSL:    cfg.Dataset.UseSSL,
			Bucket:    cfg.Dataset.Bucket,
		})
		if err != nil {
			return err
		}
		source = dataset.ObjectSource{Store: objectStore, Object: cfg.Dataset.Object}
	default:
		return nil
	}

	records, err := source.Load(ctx)
	if err != nil {
		return err
	}

	logger.Info("seeding record store", "records", len(records), "workers", workers)
	return store.NewBulkIngestor(recordStore, workers).IngestRecords(ctx, records)
}
