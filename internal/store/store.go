// Package store implements the record store behind the reference data
// service: the authoritative source of raw contact records the engine
// aggregates and caches.
package store

import (
	"context"

	"github.com/liyue/tracemap/internal/domain"
)

// RecordStore is the query surface the data service exposes over its records.
// Absence of matching records yields empty results, never errors.
type RecordStore interface {
	// AllTimestamps returns the sorted distinct timestamps across all records.
	AllTimestamps(ctx context.Context) ([]int64, error)
	// RecordsAt returns every record (direct and indirect) at a timestamp.
	RecordsAt(ctx context.Context, timestamp int64) ([]domain.ContactRecord, error)
	// Bounds returns the lat/lng envelope of all records, or the default
	// area when the store is empty.
	Bounds(ctx context.Context) (domain.BoundingBox, error)
	// DirectRecordsForUser returns direct records touching the user.
	DirectRecordsForUser(ctx context.Context, userID int) ([]domain.ContactRecord, error)
	// SecondaryRecordsForUser returns indirect records touching the user,
	// excluding peers the user already has direct contact with.
	SecondaryRecordsForUser(ctx context.Context, userID int) ([]domain.ContactRecord, error)
	// PairTrajectory returns the dated locations shared by a pair, direct
	// legs first, each leg ordered by timestamp.
	PairTrajectory(ctx context.Context, id1, id2 int) ([]domain.TrackPoint, error)
	// InsertRecords adds records to the store.
	InsertRecords(ctx context.Context, records []domain.ContactRecord) error
}

// defaultBounds is served when no records exist yet.
var defaultBounds = domain.BoundingBox{MinLat: 39, MaxLat: 40, MinLng: 116, MaxLng: 117}

// excludeDirectPeers drops indirect records whose counterpart is already a
// direct contact of the user. The data service answers "secondary contacts"
// with the transitive-only remainder.
func excludeDirectPeers(userID int, direct, indirect []domain.ContactRecord) []domain.ContactRecord {
	directPeers := make(map[int]struct{}, len(direct))
	for _, rec := range direct {
		directPeers[counterpart(userID, rec)] = struct{}{}
	}

	out := make([]domain.ContactRecord, 0, len(indirect))
	for _, rec := range indirect {
		if _, known := directPeers[counterpart(userID, rec)]; !known {
			out = append(out, rec)
		}
	}
	return out
}

func counterpart(userID int, rec domain.ContactRecord) int {
	if rec.ID1 == userID {
		return rec.ID2
	}
	return rec.ID1
}

func touches(userID int, rec domain.ContactRecord) bool {
	return rec.ID1 == userID || rec.ID2 == userID
}

func isIndirect(rec domain.ContactRecord) bool {
	return rec.ContactType == domain.ContactIndirect || rec.Through != nil
}
