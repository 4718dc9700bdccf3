// Package delta computes incremental contact sets between consecutive
// timestamps in the known sequence.
package delta

import (
	"context"
	"log/slog"

	"github.com/liyue/tracemap/internal/aggregate"
	"github.com/liyue/tracemap/internal/domain"
)

// ContactSource is the read contract the engine needs from the repository.
type ContactSource interface {
	Timestamps(ctx context.Context) ([]int64, error)
	ContactsAt(ctx context.Context, timestamp int64) ([]domain.ContactPair, error)
}

// Engine diffs two consecutive contact snapshots.
type Engine struct {
	source ContactSource
	logger *slog.Logger
}

// New builds an Engine reading through the given source.
func New(source ContactSource, logger *slog.Logger) *Engine {
	return &Engine{source: source, logger: logger}
}

// NewContactsAt returns the pairs present at the timestamp but absent at the
// immediately preceding timestamp in the dataset's sequence.
//
// With no preceding timestamp, every pair counts as new. When the preceding
// snapshot cannot be fetched, the engine degrades the same way — everything
// at the timestamp is reported as new — rather than failing the whole
// operation. That approximation is deliberate and logged; it conflates
// "actually new" with "unknown due to fetch error".
func (e *Engine) NewContactsAt(ctx context.Context, timestamp int64) ([]domain.ContactPair, error) {
	current, err := e.source.ContactsAt(ctx, timestamp)
	if err != nil {
		return nil, err
	}

	previous, ok := e.previousTimestamp(ctx, timestamp)
	if !ok {
		return current, nil
	}

	prior, err := e.source.ContactsAt(ctx, previous)
	if err != nil {
		e.logger.Warn("previous snapshot unavailable, reporting all pairs as new",
			"timestamp", timestamp, "previous", previous, "error", err)
		return current, nil
	}

	seen := aggregate.ByKey(prior)
	fresh := make([]domain.ContactPair, 0)
	for _, pair := range current {
		if _, existed := seen[pair.Key()]; !existed {
			fresh = append(fresh, pair)
		}
	}
	return fresh, nil
}

// previousTimestamp locates the timestamp immediately before the given one in
// the known sequence. ok is false for the first timestamp, and when the
// sequence itself cannot be fetched (same degradation as a failed prior
// snapshot).
func (e *Engine) previousTimestamp(ctx context.Context, timestamp int64) (int64, bool) {
	timestamps, err := e.source.Timestamps(ctx)
	if err != nil {
		e.logger.Warn("timestamp sequence unavailable, reporting all pairs as new",
			"timestamp", timestamp, "error", err)
		return 0, false
	}

	previous := int64(0)
	found := false
	for _, ts := range timestamps {
		if ts >= timestamp {
			break
		}
		previous = ts
		found = true
	}
	return previous, found
}
