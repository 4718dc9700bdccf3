// Package aggregate turns raw per-timestamp contact records into canonical
// ContactPair aggregates with merged time intervals.
package aggregate

import (
	"sort"

	"github.com/liyue/tracemap/internal/domain"
)

// Pairs groups raw records by canonical pair key and builds one ContactPair
// per group. Records missing an explicit contact type are treated as
// fallbackType; a record's type and through carry from the group's first
// record. Ordering across returned pairs is unspecified — callers must key by
// (LoID, HiID), never by slice position.
//
// Malformed records (zero lat/lng and the like) are accepted as-is; geometric
// validity is the data service's responsibility.
func Pairs(records []domain.ContactRecord, fallbackType domain.ContactType) []domain.ContactPair {
	groups := make(map[domain.PairKey]*domain.ContactPair)
	order := make([]domain.PairKey, 0)

	for _, rec := range records {
		key := domain.CanonicalPair(rec.ID1, rec.ID2)
		pair, ok := groups[key]
		if !ok {
			ct := rec.ContactType
			if ct == "" {
				ct = fallbackType
			}
			pair = &domain.ContactPair{
				LoID:        key.Lo,
				HiID:        key.Hi,
				ContactType: ct,
				Through:     rec.Through,
			}
			groups[key] = pair
			order = append(order, key)
		}

		pointType := rec.ContactType
		if pointType == "" {
			pointType = fallbackType
		}
		pair.Points = append(pair.Points, domain.TrackPoint{
			Timestamp:   rec.Timestamp,
			Lat:         rec.Lat,
			Lng:         rec.Lng,
			ContactType: pointType,
			Through:     rec.Through,
		})
		pair.Timestamps = append(pair.Timestamps, rec.Timestamp)
	}

	pairs := make([]domain.ContactPair, 0, len(groups))
	for _, key := range order {
		pair := groups[key]
		sort.SliceStable(pair.Points, func(i, j int) bool {
			return pair.Points[i].Timestamp < pair.Points[j].Timestamp
		})
		pair.Timestamps = dedupeSorted(pair.Timestamps)
		pair.TimePeriods = MergePeriods(pair.Timestamps)
		pairs = append(pairs, *pair)
	}
	return pairs
}

// ByKey indexes aggregated pairs by their canonical key.
func ByKey(pairs []domain.ContactPair) map[domain.PairKey]domain.ContactPair {
	index := make(map[domain.PairKey]domain.ContactPair, len(pairs))
	for _, pair := range pairs {
		index[pair.Key()] = pair
	}
	return index
}

func dedupeSorted(timestamps []int64) []int64 {
	if len(timestamps) == 0 {
		return timestamps
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })
	out := timestamps[:1]
	for _, ts := range timestamps[1:] {
		if ts != out[len(out)-1] {
			out = append(out, ts)
		}
	}
	return out
}
