package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/liyue/tracemap/internal/cache"
	"github.com/liyue/tracemap/internal/config"
	"github.com/liyue/tracemap/internal/dataservice"
	"github.com/liyue/tracemap/internal/delta"
	"github.com/liyue/tracemap/internal/logging"
	"github.com/liyue/tracemap/internal/prefetch"
	"github.com/liyue/tracemap/internal/repository"
	"github.com/liyue/tracemap/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	client, err := dataservice.NewHTTPClient(dataservice.Options{
		BaseURL: cfg.DataService.BaseURL,
		Timeout: cfg.DataService.Timeout,
	})
	if err != nil {
		logger.Error("failed to create data service client", "error", err)
		os.Exit(1)
	}

	store := cache.NewStore(cacheOverrides(cfg.Cache))

	var janitor *cache.Janitor
	if cfg.Cache.SweepInterval > 0 {
		janitor = cache.NewJanitor(store, logger)
		if err := janitor.Start(cfg.Cache.SweepInterval); err != nil {
			logger.Error("failed to start cache janitor", "error", err)
			os.Exit(1)
		}
	}

	repo := repository.New(client, store)
	deltaEngine := delta.New(repo, logger)
	prefetcher := prefetch.New(repo, logger)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:         server.DataServiceHealth{Client: client},
		API:            server.NewAPIHandlers(logger, repo, deltaEngine, prefetcher),
		AllowedOrigins: parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	prefetcher.Wait()
	if janitor != nil {
		janitor.Stop()
	}
	store.Clear()
}

func cacheOverrides(cfg config.CacheConfig) map[cache.Category]time.Duration {
	overrides := make(map[cache.Category]time.Duration)
	for category, ttl := range map[cache.Category]time.Duration{
		cache.CategoryTimestamps:   cfg.TimestampsTTL,
		cache.CategoryBounds:       cfg.BoundsTTL,
		cache.CategoryContacts:     cfg.ContactsTTL,
		cache.CategoryUserContacts: cfg.UserContactsTTL,
		cache.CategoryTrajectory:   cfg.TrajectoryTTL,
	} {
		if ttl > 0 {
			overrides[category] = ttl
		}
	}
	if len(overrides) == 0 {
		return nil
	}
	return overrides
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
