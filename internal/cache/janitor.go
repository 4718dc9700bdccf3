package cache

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor runs periodic sweeps of a Store. The sweep is a memory-hygiene
// measure only; lazy expiry on read already guarantees freshness.
type Janitor struct {
	store  *Store
	logger *slog.Logger
	sched  *cron.Cron
}

// NewJanitor builds a Janitor for the given store.
func NewJanitor(store *Store, logger *slog.Logger) *Janitor {
	return &Janitor{
		store:  store,
		logger: logger,
		sched:  cron.New(),
	}
}

// Start schedules a sweep at the given interval and launches the scheduler.
func (j *Janitor) Start(interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	spec := fmt.Sprintf("@every %s", interval)
	_, err := j.sched.AddFunc(spec, func() {
		if removed := j.store.Sweep(); removed > 0 {
			j.logger.Debug("cache sweep completed", "removed", removed, "remaining", j.store.Len())
		}
	})
	if err != nil {
		return fmt.Errorf("schedule cache sweep: %w", err)
	}

	j.sched.Start()
	return nil
}

// Stop halts the scheduler; a sweep already in progress runs to completion.
func (j *Janitor) Stop() {
	ctx := j.sched.Stop()
	<-ctx.Done()
}
