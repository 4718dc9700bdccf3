package store

import (
	"context"
	"sort"
	"sync"

	"github.com/liyue/tracemap/internal/domain"
)

// MemoryStore keeps all records in process memory. It is the default backend
// for the reference data service and the fixture for store-level tests.
type MemoryStore struct {
	mu       sync.RWMutex
	direct   []domain.ContactRecord
	indirect []domain.ContactRecord
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) InsertRecords(_ context.Context, records []domain.ContactRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		if rec.ContactType == "" {
			if isIndirect(rec) {
				rec.ContactType = domain.ContactIndirect
			} else {
				rec.ContactType = domain.ContactDirect
			}
		}
		if rec.ContactType == domain.ContactIndirect {
			s.indirect = append(s.indirect, rec)
		} else {
			s.direct = append(s.direct, rec)
		}
	}
	return nil
}

func (s *MemoryStore) AllTimestamps(context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]struct{})
	for _, rec := range s.direct {
		seen[rec.Timestamp] = struct{}{}
	}
	for _, rec := range s.indirect {
		seen[rec.Timestamp] = struct{}{}
	}

	timestamps := make([]int64, 0, len(seen))
	for ts := range seen {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })
	return timestamps, nil
}

func (s *MemoryStore) RecordsAt(_ context.Context, timestamp int64) ([]domain.ContactRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ContactRecord, 0)
	for _, rec := range s.direct {
		if rec.Timestamp == timestamp {
			out = append(out, rec)
		}
	}
	for _, rec := range s.indirect {
		if rec.Timestamp == timestamp {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *MemoryStore) Bounds(context.Context) (domain.BoundingBox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.direct) == 0 && len(s.indirect) == 0 {
		return defaultBounds, nil
	}

	first := true
	var bounds domain.BoundingBox
	for _, set := range [][]domain.ContactRecord{s.direct, s.indirect} {
		for _, rec := range set {
			if first {
				bounds = domain.BoundingBox{MinLat: rec.Lat, MaxLat: rec.Lat, MinLng: rec.Lng, MaxLng: rec.Lng}
				first = false
				continue
			}
			if rec.Lat < bounds.MinLat {
				bounds.MinLat = rec.Lat
			}
			if rec.Lat > bounds.MaxLat {
				bounds.MaxLat = rec.Lat
			}
			if rec.Lng < bounds.MinLng {
				bounds.MinLng = rec.Lng
			}
			if rec.Lng > bounds.MaxLng {
				bounds.MaxLng = rec.Lng
			}
		}
	}
	return bounds, nil
}

func (s *MemoryStore) DirectRecordsForUser(_ context.Context, userID int) ([]domain.ContactRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterByUser(s.direct, userID), nil
}

func (s *MemoryStore) SecondaryRecordsForUser(_ context.Context, userID int) ([]domain.ContactRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	direct := filterByUser(s.direct, userID)
	indirect := filterByUser(s.indirect, userID)
	return excludeDirectPeers(userID, direct, indirect), nil
}

func (s *MemoryStore) PairTrajectory(_ context.Context, id1, id2 int) ([]domain.TrackPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points := pairPoints(s.direct, id1, id2)
	return append(points, pairPoints(s.indirect, id1, id2)...), nil
}

func filterByUser(records []domain.ContactRecord, userID int) []domain.ContactRecord {
	out := make([]domain.ContactRecord, 0)
	for _, rec := range records {
		if touches(userID, rec) {
			out = append(out, rec)
		}
	}
	return out
}

// pairPoints extracts the ordered trajectory legs of one record set for a
// pair, matching either id orientation.
func pairPoints(records []domain.ContactRecord, id1, id2 int) []domain.TrackPoint {
	key := domain.CanonicalPair(id1, id2)
	points := make([]domain.TrackPoint, 0)
	for _, rec := range records {
		if domain.CanonicalPair(rec.ID1, rec.ID2) != key {
			continue
		}
		points = append(points, domain.TrackPoint{
			Timestamp:   rec.Timestamp,
			Lat:         rec.Lat,
			Lng:         rec.Lng,
			ContactType: rec.ContactType,
			Through:     rec.Through,
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })
	return points
}
