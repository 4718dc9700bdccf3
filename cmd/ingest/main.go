package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/liyue/tracemap/internal/config"
	"github.com/liyue/tracemap/internal/dataset"
	"github.com/liyue/tracemap/internal/graph"
	"github.com/liyue/tracemap/internal/logging"
	"github.com/liyue/tracemap/internal/store"
)

func main() {
	var (
		datasetPath = flag.String("dataset", "data/records.json", "Path to records.json")
		fromObject  = flag.Bool("from-object", false, "Load the dataset from configured object storage instead of a file")
		workers     = flag.Int("workers", 4, "Number of concurrent workers for ingestion")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var source dataset.Source
	if *fromObject {
		objectStore, err := dataset.NewObjectStore(dataset.ObjectStoreConfig{
			Endpoint:  cfg.Dataset.Endpoint,
			AccessKey: cfg.Dataset.AccessKey,
			SecretKey: cfg.Dataset.SecretKey,
			UseSSL:    cfg.Dataset.UseSSL,
			Bucket:    cfg.Dataset.Bucket,
		})
		if err != nil {
			logger.Error("failed to create object store client", "error", err)
			os.Exit(1)
		}
		source = dataset.ObjectSource{Store: objectStore, Object: cfg.Dataset.Object}
	} else {
		source = dataset.FileSource{Path: *datasetPath}
	}

	records, err := source.Load(ctx)
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		logger.Error("dataset is empty")
		os.Exit(1)
	}

	if cfg.Graph.URI == "" {
		logger.Error("GRAPH_URI is required for ingestion")
		os.Exit(1)
	}

	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	})
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	start := time.Now()
	logger.Info("ingesting records", "count", len(records), "workers", *workers)

	ingestor := store.NewBulkIngestor(store.NewGraphStore(client), *workers)
	if err := ingestor.IngestRecords(ctx, records); err != nil {
		logger.Error("ingestion failed", "error", err)
		os.Exit(1)
	}

	logger.Info("ingestion complete", "duration", time.Since(start).String(), "records", len(records))
}
