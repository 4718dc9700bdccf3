package domain

// ContactType distinguishes how two individuals came into contact.
type ContactType string

const (
	// ContactDirect marks a co-location without an intermediary.
	ContactDirect ContactType = "direct"
	// ContactIndirect marks a transitive contact via a named intermediary.
	ContactIndirect ContactType = "indirect"
)

// ContactRecord is a single raw observation as served by the data service.
// One record exists per (pair, timestamp, location) observation. The through
// field is populated only for indirect records and names the intermediary.
type ContactRecord struct {
	ID1         int         `json:"id1"`
	ID2         int         `json:"id2"`
	Timestamp   int64       `json:"timestamp"`
	Lat         float64     `json:"lat"`
	Lng         float64     `json:"lng"`
	ContactType ContactType `json:"contact_type,omitempty"`
	Through     *int        `json:"through,omitempty"`
}

// TrackPoint is a single dated location shared by a contact pair.
type TrackPoint struct {
	Timestamp   int64       `json:"timestamp"`
	Lat         float64     `json:"lat"`
	Lng         float64     `json:"lng"`
	ContactType ContactType `json:"contact_type,omitempty"`
	Through     *int        `json:"through,omitempty"`
}

// BoundingBox is the lat/lng rectangle covering a record set.
type BoundingBox struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLng float64 `json:"minLng"`
	MaxLng float64 `json:"maxLng"`
}
