package store

import (
	"context"
	"fmt"

	"github.com/liyue/tracemap/internal/domain"
	"github.com/liyue/tracemap/internal/graph"
)

// GraphStore persists contact records in a Bolt-compatible graph database.
// Individuals are Person nodes; direct observations are CONTACTED
// relationships and transitive ones INDIRECT_CONTACT relationships carrying
// the intermediary id. One relationship exists per raw observation, so the
// store reproduces the record granularity the engine expects.
type GraphStore struct {
	client graph.Client
}

// NewGraphStore builds a GraphStore over the supplied graph client.
func NewGraphStore(client graph.Client) *GraphStore {
	return &GraphStore{client: client}
}

func (s *GraphStore) InsertRecords(ctx context.Context, records []domain.ContactRecord) error {
	var direct, indirect []map[string]any
	for _, rec := range records {
		props := map[string]any{
			"id1":       rec.ID1,
			"id2":       rec.ID2,
			"timestamp": rec.Timestamp,
			"lat":       rec.Lat,
			"lng":       rec.Lng,
		}
		if isIndirect(rec) {
			if rec.Through != nil {
				props["throughId"] = *rec.Through
			}
			indirect = append(indirect, props)
		} else {
			direct = append(direct, props)
		}
	}

	if len(direct) > 0 {
		if _, err := s.client.Write(ctx, insertDirectCypher, map[string]any{"records": direct}); err != nil {
			return fmt.Errorf("insert direct records: %w", err)
		}
	}
	if len(indirect) > 0 {
		if _, err := s.client.Write(ctx, insertIndirectCypher, map[string]any{"records": indirect}); err != nil {
			return fmt.Errorf("insert indirect records: %w", err)
		}
	}
	return nil
}

func (s *GraphStore) AllTimestamps(ctx context.Context) ([]int64, error) {
	res, err := s.client.Read(ctx, allTimestampsCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("all timestamps query: %w", err)
	}

	timestamps := make([]int64, 0, len(res.Records))
	for _, record := range res.Records {
		timestamps = append(timestamps, toInt64(record["timestamp"]))
	}
	return timestamps, nil
}

func (s *GraphStore) RecordsAt(ctx context.Context, timestamp int64) ([]domain.ContactRecord, error) {
	params := map[string]any{"timestamp": timestamp}

	res, err := s.client.Read(ctx, directAtTimestampCypher, params)
	if err != nil {
		return nil, fmt.Errorf("direct records query: %w", err)
	}
	records := recordsFromResult(res, domain.ContactDirect)

	res, err = s.client.Read(ctx, indirectAtTimestampCypher, params)
	if err != nil {
		return nil, fmt.Errorf("indirect records query: %w", err)
	}
	return append(records, recordsFromResult(res, domain.ContactIndirect)...), nil
}

func (s *GraphStore) Bounds(ctx context.Context) (domain.BoundingBox, error) {
	res, err := s.client.Read(ctx, boundsCypher, nil)
	if err != nil {
		return domain.BoundingBox{}, fmt.Errorf("bounds query: %w", err)
	}
	if len(res.Records) == 0 || res.Records[0]["minLat"] == nil {
		return defaultBounds, nil
	}

	record := res.Records[0]
	return domain.BoundingBox{
		MinLat: toFloat64(record["minLat"]),
		MaxLat: toFloat64(record["maxLat"]),
		MinLng: toFloat64(record["minLng"]),
		MaxLng: toFloat64(record["maxLng"]),
	}, nil
}

func (s *GraphStore) DirectRecordsForUser(ctx context.Context, userID int) ([]domain.ContactRecord, error) {
	res, err := s.client.Read(ctx, directForUserCypher, map[string]any{"personId": userID})
	if err != nil {
		return nil, fmt.Errorf("direct records for user query: %w", err)
	}
	return recordsFromResult(res, domain.ContactDirect), nil
}

func (s *GraphStore) SecondaryRecordsForUser(ctx context.Context, userID int) ([]domain.ContactRecord, error) {
	direct, err := s.DirectRecordsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Read(ctx, indirectForUserCypher, map[string]any{"personId": userID})
	if err != nil {
		return nil, fmt.Errorf("indirect records for user query: %w", err)
	}
	indirect := recordsFromResult(res, domain.ContactIndirect)

	return excludeDirectPeers(userID, direct, indirect), nil
}

func (s *GraphStore) PairTrajectory(ctx context.Context, id1, id2 int) ([]domain.TrackPoint, error) {
	pair := domain.CanonicalPair(id1, id2)
	params := map[string]any{"loId": pair.Lo, "hiId": pair.Hi}

	points := make([]domain.TrackPoint, 0)
	for _, leg := range []struct {
		cypher      string
		contactType domain.ContactType
	}{
		{directTrajectoryCypher, domain.ContactDirect},
		{indirectTrajectoryCypher, domain.ContactIndirect},
	} {
		res, err := s.client.Read(ctx, leg.cypher, params)
		if err != nil {
			return nil, fmt.Errorf("trajectory query: %w", err)
		}
		for _, record := range res.Records {
			point := domain.TrackPoint{
				Timestamp:   toInt64(record["timestamp"]),
				Lat:         toFloat64(record["lat"]),
				Lng:         toFloat64(record["lng"]),
				ContactType: leg.contactType,
			}
			if through, ok := record["throughId"]; ok && through != nil {
				id := toInt(through)
				point.Through = &id
			}
			points = append(points, point)
		}
	}
	return points, nil
}

func recordsFromResult(res graph.Result, contactType domain.ContactType) []domain.ContactRecord {
	records := make([]domain.ContactRecord, 0, len(res.Records))
	for _, record := range res.Records {
		rec := domain.ContactRecord{
			ID1:         toInt(record["id1"]),
			ID2:         toInt(record["id2"]),
			Timestamp:   toInt64(record["timestamp"]),
			Lat:         toFloat64(record["lat"]),
			Lng:         toFloat64(record["lng"]),
			ContactType: contactType,
		}
		if through, ok := record["throughId"]; ok && through != nil {
			id := toInt(through)
			rec.Through = &id
		}
		records = append(records, rec)
	}
	return records
}

func toInt(val any) int {
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

const insertDirectCypher = `
UNWIND $records AS rec
MERGE (a:Person {personId: rec.id1})
MERGE (b:Person {personId: rec.id2})
CREATE (a)-[:CONTACTED {timestamp: rec.timestamp, lat: rec.lat, lng: rec.lng}]->(b)
`

const insertIndirectCypher = `
UNWIND $records AS rec
MERGE (a:Person {personId: rec.id1})
MERGE (b:Person {personId: rec.id2})
CREATE (a)-[:INDIRECT_CONTACT {timestamp: rec.timestamp, lat: rec.lat, lng: rec.lng, throughId: rec.throughId}]->(b)
`

const allTimestampsCypher = `
MATCH ()-[c:CONTACTED|INDIRECT_CONTACT]->()
RETURN DISTINCT c.timestamp AS timestamp
ORDER BY timestamp
`

const directAtTimestampCypher = `
MATCH (a:Person)-[c:CONTACTED]->(b:Person)
WHERE c.timestamp = $timestamp
RETURN a.personId AS id1,
       b.personId AS id2,
       c.timestamp AS timestamp,
       c.lat AS lat,
       c.lng AS lng
`

const indirectAtTimestampCypher = `
MATCH (a:Person)-[c:INDIRECT_CONTACT]->(b:Person)
WHERE c.timestamp = $timestamp
RETURN a.personId AS id1,
       b.personId AS id2,
       c.timestamp AS timestamp,
       c.lat AS lat,
       c.lng AS lng,
       c.throughId AS throughId
`

const boundsCypher = `
MATCH ()-[c:CONTACTED|INDIRECT_CONTACT]->()
RETURN min(c.lat) AS minLat,
       max(c.lat) AS maxLat,
       min(c.lng) AS minLng,
       max(c.lng) AS maxLng
`

const directForUserCypher = `
MATCH (a:Person)-[c:CONTACTED]->(b:Person)
WHERE a.personId = $personId OR b.personId = $personId
RETURN a.personId AS id1,
       b.personId AS id2,
       c.timestamp AS timestamp,
       c.lat AS lat,
       c.lng AS lng
`

const indirectForUserCypher = `
MATCH (a:Person)-[c:INDIRECT_CONTACT]->(b:Person)
WHERE a.personId = $personId OR b.personId = $personId
RETURN a.personId AS id1,
       b.personId AS id2,
       c.timestamp AS timestamp,
       c.lat AS lat,
       c.lng AS lng,
       c.throughId AS throughId
`

const directTrajectoryCypher = `
MATCH (a:Person)-[c:CONTACTED]-(b:Person)
WHERE a.personId = $loId AND b.personId = $hiId
RETURN c.timestamp AS timestamp,
       c.lat AS lat,
       c.lng AS lng
ORDER BY c.timestamp
`

const indirectTrajectoryCypher = `
MATCH (a:Person)-[c:INDIRECT_CONTACT]-(b:Person)
WHERE a.personId = $loId AND b.personId = $hiId
RETURN c.timestamp AS timestamp,
       c.lat AS lat,
       c.lng AS lng,
       c.throughId AS throughId
ORDER BY c.timestamp
`
