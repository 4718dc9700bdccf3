package cache

import (
	"testing"
	"time"
)

func TestStore_SetGetRoundTrip(t *testing.T) {
	store := NewStore(nil)

	store.Set(CategoryContacts, "5", "snapshot-5")

	got, ok := store.Get(CategoryContacts, "5")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "snapshot-5" {
		t.Fatalf("expected snapshot-5, got %v", got)
	}
}

func TestStore_MissOnUnknownKey(t *testing.T) {
	store := NewStore(nil)

	if _, ok := store.Get(CategoryContacts, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestStore_ExpiryEvictsOnRead(t *testing.T) {
	store := NewStore(nil)
	now := time.Unix(1000, 0)
	store.WithClock(func() time.Time { return now })

	store.Set(CategoryContacts, "7", "snapshot-7")

	// Just inside the 30 minute contacts TTL.
	now = now.Add(30 * time.Minute)
	if _, ok := store.Get(CategoryContacts, "7"); !ok {
		t.Fatal("entry must still be live exactly at TTL boundary")
	}

	now = now.Add(time.Second)
	if _, ok := store.Get(CategoryContacts, "7"); ok {
		t.Fatal("entry must be stale past TTL")
	}
	if store.Len() != 0 {
		t.Fatalf("stale entry must be evicted by the expiring read, %d entries remain", store.Len())
	}

	// Even if the clock rolled back, the entry is gone.
	now = now.Add(-time.Hour)
	if _, ok := store.Get(CategoryContacts, "7"); ok {
		t.Fatal("evicted entry must not reappear")
	}
}

func TestStore_TTLOverridePerEntry(t *testing.T) {
	store := NewStore(nil)
	now := time.Unix(1000, 0)
	store.WithClock(func() time.Time { return now })

	store.SetWithTTL(CategoryTimestamps, "all", []int64{1, 2}, time.Minute)

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(CategoryTimestamps, "all"); ok {
		t.Fatal("override TTL must win over the 1h category default")
	}
}

func TestStore_CategoryTTLOverrides(t *testing.T) {
	store := NewStore(map[Category]time.Duration{CategoryContacts: time.Minute})
	now := time.Unix(1000, 0)
	store.WithClock(func() time.Time { return now })

	store.Set(CategoryContacts, "1", "x")
	store.Set(CategoryBounds, "all", "y")

	now = now.Add(5 * time.Minute)
	if _, ok := store.Get(CategoryContacts, "1"); ok {
		t.Fatal("contacts entry must honour the configured 1m TTL")
	}
	if _, ok := store.Get(CategoryBounds, "all"); !ok {
		t.Fatal("bounds entry must keep its default 1h TTL")
	}
}

func TestStore_KeyIsolationAcrossCategories(t *testing.T) {
	store := NewStore(nil)

	store.Set(CategoryContacts, "5", "contacts-5")

	if _, ok := store.Get(CategoryTrajectory, "5"); ok {
		t.Fatal("same key in a different category must not hit")
	}

	store.Set(CategoryTrajectory, "5", "trajectory-5")
	store.Delete(CategoryContacts, "5")

	if _, ok := store.Get(CategoryTrajectory, "5"); !ok {
		t.Fatal("deleting contacts/5 must not touch trajectory/5")
	}
}

func TestStore_LastWriterWins(t *testing.T) {
	store := NewStore(nil)

	store.Set(CategoryBounds, "all", "first")
	store.Set(CategoryBounds, "all", "second")

	got, _ := store.Get(CategoryBounds, "all")
	if got != "second" {
		t.Fatalf("expected second write to win, got %v", got)
	}
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(nil)
	store.Set(CategoryContacts, "1", "a")
	store.Set(CategoryBounds, "all", "b")

	store.Clear()

	if store.Len() != 0 {
		t.Fatalf("expected empty store after clear, got %d entries", store.Len())
	}
}

func TestStore_SweepRemovesOnlyExpired(t *testing.T) {
	store := NewStore(nil)
	now := time.Unix(1000, 0)
	store.WithClock(func() time.Time { return now })

	store.SetWithTTL(CategoryContacts, "old", "x", time.Minute)
	store.SetWithTTL(CategoryContacts, "fresh", "y", time.Hour)

	now = now.Add(10 * time.Minute)
	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("expected 1 sweep removal, got %d", removed)
	}
	if _, ok := store.Get(CategoryContacts, "fresh"); !ok {
		t.Fatal("fresh entry must survive the sweep")
	}
}
