package domain

// PairKey identifies a contact pair by its two ids in canonical order.
type PairKey struct {
	Lo int
	Hi int
}

// CanonicalPair normalizes two ids so the smaller one comes first. The key of
// a pair never depends on the order ids appear in raw records.
func CanonicalPair(a, b int) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{Lo: a, Hi: b}
}

// TimePeriod is a closed run of consecutive integer timestamps.
type TimePeriod struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// ContactPair is the canonical aggregate of every observation between two
// individuals within a fetched record set. It is immutable after construction;
// any change in underlying data produces a fresh aggregate, which is what
// makes cached values safe to hand out.
type ContactPair struct {
	LoID int `json:"loId"`
	HiID int `json:"hiId"`

	// Points keeps every observation, sorted ascending by timestamp.
	// Duplicate timestamp+location points are retained: repeated co-location
	// evidence feeds density weighting downstream.
	Points []TrackPoint `json:"points"`

	// Timestamps is the sorted, de-duplicated set of observation times.
	Timestamps []int64 `json:"timestamps"`

	// TimePeriods is the run-length compression of Timestamps: disjoint,
	// ascending, and their integer union equals Timestamps.
	TimePeriods []TimePeriod `json:"timePeriods"`

	// ContactType and Through reflect how the pair was queried, carried from
	// the group's defining record. Per-point type lives on Points.
	ContactType ContactType `json:"contact_type"`
	Through     *int        `json:"through,omitempty"`
}

// Key returns the canonical identity of the pair.
func (p ContactPair) Key() PairKey {
	return PairKey{Lo: p.LoID, Hi: p.HiID}
}
