package store

import (
	"context"
	"testing"

	"github.com/liyue/tracemap/internal/domain"
)

func intPtr(v int) *int { return &v }

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	records := []domain.ContactRecord{
		{ID1: 1, ID2: 2, Timestamp: 100, Lat: 39.5, Lng: 116.2},
		{ID1: 2, ID2: 1, Timestamp: 101, Lat: 39.6, Lng: 116.3},
		{ID1: 1, ID2: 3, Timestamp: 100, Lat: 39.7, Lng: 116.4},
		{ID1: 1, ID2: 4, Timestamp: 103, Lat: 39.8, Lng: 116.5, Through: intPtr(2)},
		{ID1: 1, ID2: 3, Timestamp: 104, Lat: 39.9, Lng: 116.6, Through: intPtr(2)},
	}
	if err := s.InsertRecords(context.Background(), records); err != nil {
		t.Fatalf("insert records: %v", err)
	}
	return s
}

func TestMemoryStore_AllTimestamps(t *testing.T) {
	s := seedStore(t)

	got, err := s.AllTimestamps(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []int64{100, 101, 103, 104}
	if len(got) != len(want) {
		t.Fatalf("expected %d timestamps, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("timestamp[%d]: want %d got %d", i, want[i], got[i])
		}
	}
}

func TestMemoryStore_RecordsAt(t *testing.T) {
	s := seedStore(t)

	got, err := s.RecordsAt(context.Background(), 100)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records at 100, got %d", len(got))
	}
	for _, rec := range got {
		if rec.ContactType != domain.ContactDirect {
			t.Errorf("expected direct contact type, got %s", rec.ContactType)
		}
	}

	got, err = s.RecordsAt(context.Background(), 103)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].ContactType != domain.ContactIndirect {
		t.Fatalf("expected one indirect record at 103, got %+v", got)
	}

	got, err = s.RecordsAt(context.Background(), 999)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records at unknown timestamp, got %d", len(got))
	}
}

func TestMemoryStore_BoundsEmptyFallsBack(t *testing.T) {
	s := NewMemoryStore()

	bounds, err := s.Bounds(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if bounds != defaultBounds {
		t.Fatalf("expected default bounds %+v, got %+v", defaultBounds, bounds)
	}
}

func TestMemoryStore_BoundsEnvelope(t *testing.T) {
	s := seedStore(t)

	bounds, err := s.Bounds(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := domain.BoundingBox{MinLat: 39.5, MaxLat: 39.9, MinLng: 116.2, MaxLng: 116.6}
	if bounds != want {
		t.Fatalf("expected bounds %+v, got %+v", want, bounds)
	}
}

func TestMemoryStore_DirectRecordsForUser(t *testing.T) {
	s := seedStore(t)

	got, err := s.DirectRecordsForUser(context.Background(), 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 direct record for user 3, got %d", len(got))
	}
	if got[0].ID1 != 1 || got[0].ID2 != 3 {
		t.Errorf("unexpected record %+v", got[0])
	}
}

func TestMemoryStore_SecondaryExcludesDirectPeers(t *testing.T) {
	s := seedStore(t)

	// User 1 has direct contact with 3, so the indirect (1,3) record is not a
	// secondary contact. The indirect (1,4) record survives.
	got, err := s.SecondaryRecordsForUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 secondary record, got %d (%+v)", len(got), got)
	}
	if got[0].ID2 != 4 {
		t.Errorf("expected counterpart 4, got %+v", got[0])
	}
	if got[0].Through == nil || *got[0].Through != 2 {
		t.Errorf("expected through 2, got %+v", got[0].Through)
	}
}

func TestMemoryStore_PairTrajectoryOrderInsensitive(t *testing.T) {
	s := seedStore(t)

	forward, err := s.PairTrajectory(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	reverse, err := s.PairTrajectory(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(forward) != 2 {
		t.Fatalf("expected 2 trajectory points, got %d", len(forward))
	}
	if len(forward) != len(reverse) {
		t.Fatalf("trajectory depends on id order: %d vs %d", len(forward), len(reverse))
	}
	if forward[0].Timestamp != 100 || forward[1].Timestamp != 101 {
		t.Errorf("expected points ordered by timestamp, got %+v", forward)
	}
}

func TestMemoryStore_PairTrajectoryDirectLegsFirst(t *testing.T) {
	s := seedStore(t)

	points, err := s.PairTrajectory(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].ContactType != domain.ContactDirect {
		t.Errorf("expected direct leg first, got %s", points[0].ContactType)
	}
	if points[1].ContactType != domain.ContactIndirect {
		t.Errorf("expected indirect leg second, got %s", points[1].ContactType)
	}
}
