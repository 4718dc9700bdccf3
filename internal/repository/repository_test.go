package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/liyue/tracemap/internal/cache"
	"github.com/liyue/tracemap/internal/dataservice"
	"github.com/liyue/tracemap/internal/domain"
)

func newTestRepo() (*Repository, *dataservice.MemoryClient, *cache.Store) {
	client := dataservice.NewMemoryClient()
	store := cache.NewStore(nil)
	return New(client, store), client, store
}

func TestRepository_ContactsAt_AggregatesAndCaches(t *testing.T) {
	repo, client, _ := newTestRepo()
	client.SetContacts(100, []domain.ContactRecord{
		{ID1: 2, ID2: 9, Timestamp: 100, Lat: 1, Lng: 1, ContactType: domain.ContactDirect},
		{ID1: 9, ID2: 2, Timestamp: 101, Lat: 1, Lng: 1, ContactType: domain.ContactDirect},
	})

	pairs, err := repo.ContactsAt(context.Background(), 100)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("expected 1 aggregated pair, got %d", len(pairs))
	}
	if pairs[0].LoID != 2 || pairs[0].HiID != 9 {
		t.Errorf("expected canonical pair (2,9), got (%d,%d)", pairs[0].LoID, pairs[0].HiID)
	}
	if len(pairs[0].TimePeriods) != 1 || pairs[0].TimePeriods[0] != (domain.TimePeriod{Start: 100, End: 101}) {
		t.Errorf("unexpected periods: %v", pairs[0].TimePeriods)
	}

	// Second read must be served from cache with no network call.
	if _, err := repo.ContactsAt(context.Background(), 100); err != nil {
		t.Fatalf("cached read failed: %v", err)
	}
	if calls := client.Calls(); len(calls) != 1 {
		t.Fatalf("expected 1 upstream call, got %d: %v", len(calls), calls)
	}
}

func TestRepository_ContactsAt_RefetchesAfterExpiry(t *testing.T) {
	client := dataservice.NewMemoryClient()
	store := cache.NewStore(nil)
	now := time.Unix(0, 0)
	store.WithClock(func() time.Time { return now })
	repo := New(client, store)

	client.SetContacts(5, []domain.ContactRecord{{ID1: 1, ID2: 2, Timestamp: 5}})

	if _, err := repo.ContactsAt(context.Background(), 5); err != nil {
		t.Fatalf("first read: %v", err)
	}

	now = now.Add(31 * time.Minute)
	if _, err := repo.ContactsAt(context.Background(), 5); err != nil {
		t.Fatalf("read after expiry: %v", err)
	}
	if calls := client.Calls(); len(calls) != 2 {
		t.Fatalf("expected refetch after TTL, got %d calls", len(calls))
	}
}

func TestRepository_ContactsAt_PropagatesFetchError(t *testing.T) {
	repo, client, _ := newTestRepo()
	wantErr := &dataservice.FetchError{Endpoint: "contacts", Err: errors.New("connection refused")}
	client.FailWith(wantErr)

	_, err := repo.ContactsAt(context.Background(), 7)
	var fetchErr *dataservice.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError to propagate, got %v", err)
	}
	if repo.HasContactsAt(7) {
		t.Fatal("failed fetch must not populate the cache")
	}
}

func TestRepository_UserContacts_KindsAreIsolated(t *testing.T) {
	repo, client, _ := newTestRepo()
	through := 3
	client.SetUserContacts(5, []domain.ContactRecord{
		{ID1: 5, ID2: 8, Timestamp: 1, ContactType: domain.ContactDirect},
	})
	client.SetUserSecondaryContacts(5, []domain.ContactRecord{
		{ID1: 5, ID2: 11, Timestamp: 2, Through: &through},
	})

	direct, err := repo.UserContacts(context.Background(), 5, KindDirect)
	if err != nil {
		t.Fatalf("direct: %v", err)
	}
	secondary, err := repo.UserContacts(context.Background(), 5, KindSecondary)
	if err != nil {
		t.Fatalf("secondary: %v", err)
	}

	if len(direct) != 1 || direct[0].HiID != 8 {
		t.Fatalf("unexpected direct pairs: %+v", direct)
	}
	if len(secondary) != 1 || secondary[0].HiID != 11 {
		t.Fatalf("unexpected secondary pairs: %+v", secondary)
	}
	// Records omitting a type in a secondary fetch default to indirect.
	if secondary[0].ContactType != domain.ContactIndirect {
		t.Errorf("expected indirect fallback, got %q", secondary[0].ContactType)
	}

	// Both kinds cached independently: no further upstream calls.
	repo.UserContacts(context.Background(), 5, KindDirect)
	repo.UserContacts(context.Background(), 5, KindSecondary)
	if calls := client.Calls(); len(calls) != 2 {
		t.Fatalf("expected 2 upstream calls, got %d: %v", len(calls), calls)
	}
}

func TestRepository_Trajectory_CanonicalizesPairKey(t *testing.T) {
	repo, client, _ := newTestRepo()
	client.SetTrajectory(5, 9, []domain.TrackPoint{
		{Timestamp: 1, Lat: 1, Lng: 2, ContactType: domain.ContactDirect},
	})

	first, err := repo.Trajectory(context.Background(), 9, 5)
	if err != nil {
		t.Fatalf("trajectory (9,5): %v", err)
	}
	second, err := repo.Trajectory(context.Background(), 5, 9)
	if err != nil {
		t.Fatalf("trajectory (5,9): %v", err)
	}

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected 1 point each, got %d and %d", len(first), len(second))
	}
	if calls := client.Calls(); len(calls) != 1 {
		t.Fatalf("(5,9) and (9,5) must share one cache entry; got %d upstream calls", len(calls))
	}
}

func TestRepository_TimestampsAndBoundsCached(t *testing.T) {
	repo, client, _ := newTestRepo()
	client.SetTimestamps([]int64{1, 2, 3})
	client.SetBounds(domain.BoundingBox{MinLat: 39, MaxLat: 40, MinLng: 116, MaxLng: 117})

	for i := 0; i < 2; i++ {
		if _, err := repo.Timestamps(context.Background()); err != nil {
			t.Fatalf("timestamps: %v", err)
		}
		if _, err := repo.Bounds(context.Background()); err != nil {
			t.Fatalf("bounds: %v", err)
		}
	}

	if calls := client.Calls(); len(calls) != 2 {
		t.Fatalf("expected 1 call per endpoint, got %v", calls)
	}
}

func TestRepository_ClearCacheForcesRefetch(t *testing.T) {
	repo, client, _ := newTestRepo()
	client.SetTimestamps([]int64{1})

	repo.Timestamps(context.Background())
	repo.ClearCache()
	repo.Timestamps(context.Background())

	if calls := client.Calls(); len(calls) != 2 {
		t.Fatalf("expected refetch after clear, got %d calls", len(calls))
	}
}
