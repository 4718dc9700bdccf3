// Package repository orchestrates contact reads: cache first, then the data
// service, aggregating raw records into canonical pairs before caching.
package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/liyue/tracemap/internal/aggregate"
	"github.com/liyue/tracemap/internal/cache"
	"github.com/liyue/tracemap/internal/dataservice"
	"github.com/liyue/tracemap/internal/domain"
)

// ContactKind selects which contact channel a user query targets.
type ContactKind string

const (
	// KindDirect queries first-degree contacts.
	KindDirect ContactKind = "direct"
	// KindSecondary queries transitive contacts via an intermediary.
	KindSecondary ContactKind = "secondary"
)

// Repository serves aggregated contact data. Cache hits return immediately
// with no network call — the dominant path during timeline scrubbing. Misses
// fetch from the data service, aggregate, cache the aggregated result, and
// return it. Fetch errors propagate to the caller unretried; retry policy, if
// any, belongs there.
type Repository struct {
	client dataservice.Client
	cache  *cache.Store
}

// New builds a Repository over the given client and cache store. Both are
// injected; the repository owns neither lifecycle.
func New(client dataservice.Client, store *cache.Store) *Repository {
	return &Repository{client: client, cache: store}
}

// Timestamps returns the ordered list of all timestamps in the dataset.
func (r *Repository) Timestamps(ctx context.Context) ([]int64, error) {
	if cached, ok := r.cache.Get(cache.CategoryTimestamps, "all"); ok {
		if timestamps, ok := cached.([]int64); ok {
			return timestamps, nil
		}
	}

	timestamps, err := r.client.Timestamps(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Set(cache.CategoryTimestamps, "all", timestamps)
	return timestamps, nil
}

// ContactsAt returns the canonical contact pairs active at a timestamp.
func (r *Repository) ContactsAt(ctx context.Context, timestamp int64) ([]domain.ContactPair, error) {
	key := contactsKey(timestamp)
	if cached, ok := r.cache.Get(cache.CategoryContacts, key); ok {
		if pairs, ok := cached.([]domain.ContactPair); ok {
			return pairs, nil
		}
	}

	records, err := r.client.ContactsAt(ctx, timestamp)
	if err != nil {
		return nil, err
	}
	pairs := aggregate.Pairs(records, domain.ContactDirect)
	r.cache.Set(cache.CategoryContacts, key, pairs)
	return pairs, nil
}

// HasContactsAt reports whether the snapshot for a timestamp is already
// cached. Used by prefetching to skip work without touching the network.
func (r *Repository) HasContactsAt(timestamp int64) bool {
	_, ok := r.cache.Get(cache.CategoryContacts, contactsKey(timestamp))
	return ok
}

// UserContacts returns the aggregated contact pairs for one individual over
// the requested channel. Secondary results default their type to indirect
// when records omit it, since the fetch context is known to be transitive.
func (r *Repository) UserContacts(ctx context.Context, userID int, kind ContactKind) ([]domain.ContactPair, error) {
	key := fmt.Sprintf("%s_%d", kind, userID)
	if cached, ok := r.cache.Get(cache.CategoryUserContacts, key); ok {
		if pairs, ok := cached.([]domain.ContactPair); ok {
			return pairs, nil
		}
	}

	var (
		records  []domain.ContactRecord
		fallback domain.ContactType
		err      error
	)
	switch kind {
	case KindSecondary:
		records, err = r.client.UserSecondaryContacts(ctx, userID)
		fallback = domain.ContactIndirect
	default:
		records, err = r.client.UserContacts(ctx, userID)
		fallback = domain.ContactDirect
	}
	if err != nil {
		return nil, err
	}

	pairs := aggregate.Pairs(records, fallback)
	r.cache.Set(cache.CategoryUserContacts, key, pairs)
	return pairs, nil
}

// Trajectory returns the ordered co-location points for a pair. The pair is
// canonicalized before keying, so (5,9) and (9,5) share one cache entry.
// Points pass through without aggregation; they are already pair-specific.
func (r *Repository) Trajectory(ctx context.Context, id1, id2 int) ([]domain.TrackPoint, error) {
	pair := domain.CanonicalPair(id1, id2)
	key := fmt.Sprintf("%d_%d", pair.Lo, pair.Hi)
	if cached, ok := r.cache.Get(cache.CategoryTrajectory, key); ok {
		if points, ok := cached.([]domain.TrackPoint); ok {
			return points, nil
		}
	}

	points, err := r.client.Trajectory(ctx, pair.Lo, pair.Hi)
	if err != nil {
		return nil, err
	}
	r.cache.Set(cache.CategoryTrajectory, key, points)
	return points, nil
}

// Bounds returns the dataset's bounding rectangle.
func (r *Repository) Bounds(ctx context.Context) (domain.BoundingBox, error) {
	if cached, ok := r.cache.Get(cache.CategoryBounds, "all"); ok {
		if bounds, ok := cached.(domain.BoundingBox); ok {
			return bounds, nil
		}
	}

	bounds, err := r.client.Bounds(ctx)
	if err != nil {
		return domain.BoundingBox{}, err
	}
	r.cache.Set(cache.CategoryBounds, "all", bounds)
	return bounds, nil
}

// ClearCache drops every cached entry. Called on session teardown.
func (r *Repository) ClearCache() {
	r.cache.Clear()
}

func contactsKey(timestamp int64) string {
	return strconv.FormatInt(timestamp, 10)
}
