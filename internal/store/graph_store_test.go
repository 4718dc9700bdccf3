package store

import (
	"context"
	"errors"
	"testing"

	"github.com/liyue/tracemap/internal/domain"
	"github.com/liyue/tracemap/internal/graph"
)

func TestGraphStore_InsertRecordsSplitsByType(t *testing.T) {
	mem := graph.NewMemoryClient()
	s := NewGraphStore(mem)

	records := []domain.ContactRecord{
		{ID1: 1, ID2: 2, Timestamp: 100, Lat: 39.5, Lng: 116.2},
		{ID1: 1, ID2: 4, Timestamp: 101, Lat: 39.6, Lng: 116.3, Through: intPtr(2)},
	}
	if err := s.InsertRecords(context.Background(), records); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 write queries, got %d", len(calls))
	}

	if calls[0].Query != insertDirectCypher {
		t.Fatalf("unexpected first query\nexpected:\n%s\ngot:\n%s", insertDirectCypher, calls[0].Query)
	}
	direct, ok := calls[0].Params["records"].([]map[string]any)
	if !ok || len(direct) != 1 {
		t.Fatalf("expected 1 direct record param, got %T (%v)", calls[0].Params["records"], calls[0].Params["records"])
	}
	if direct[0]["id1"] != 1 || direct[0]["id2"] != 2 {
		t.Errorf("direct record params mismatch: %v", direct[0])
	}

	if calls[1].Query != insertIndirectCypher {
		t.Fatalf("unexpected second query\nexpected:\n%s\ngot:\n%s", insertIndirectCypher, calls[1].Query)
	}
	indirect, ok := calls[1].Params["records"].([]map[string]any)
	if !ok || len(indirect) != 1 {
		t.Fatalf("expected 1 indirect record param, got %T", calls[1].Params["records"])
	}
	if indirect[0]["throughId"] != 2 {
		t.Errorf("expected throughId 2, got %v", indirect[0]["throughId"])
	}
}

func TestGraphStore_InsertRecordsEmptySkipsWrites(t *testing.T) {
	mem := graph.NewMemoryClient()
	s := NewGraphStore(mem)

	if err := s.InsertRecords(context.Background(), nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls := mem.WriteCalls(); len(calls) != 0 {
		t.Fatalf("expected no write queries, got %d", len(calls))
	}
}

func TestGraphStore_AllTimestamps(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"timestamp": int64(100)},
		{"timestamp": int64(101)},
		{"timestamp": int64(105)},
	}})
	s := NewGraphStore(mem)

	got, err := s.AllTimestamps(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 3 || got[0] != 100 || got[2] != 105 {
		t.Fatalf("unexpected timestamps %v", got)
	}

	calls := mem.ReadCalls()
	if len(calls) != 1 || calls[0].Query != allTimestampsCypher {
		t.Fatalf("unexpected read calls %+v", calls)
	}
}

func TestGraphStore_RecordsAtMergesDirectAndIndirect(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"id1": int64(1), "id2": int64(2), "timestamp": int64(100), "lat": 39.5, "lng": 116.2},
	}})
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"id1": int64(1), "id2": int64(4), "timestamp": int64(100), "lat": 39.6, "lng": 116.3, "throughId": int64(2)},
	}})
	s := NewGraphStore(mem)

	got, err := s.RecordsAt(context.Background(), 100)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ContactType != domain.ContactDirect {
		t.Errorf("expected direct record first, got %s", got[0].ContactType)
	}
	if got[1].ContactType != domain.ContactIndirect {
		t.Errorf("expected indirect record second, got %s", got[1].ContactType)
	}
	if got[1].Through == nil || *got[1].Through != 2 {
		t.Errorf("expected through 2, got %+v", got[1].Through)
	}

	calls := mem.ReadCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 read queries, got %d", len(calls))
	}
	if calls[0].Params["timestamp"] != int64(100) {
		t.Errorf("expected timestamp param 100, got %v", calls[0].Params["timestamp"])
	}
}

func TestGraphStore_BoundsFallsBackWhenEmpty(t *testing.T) {
	mem := graph.NewMemoryClient()
	// Aggregations over an empty graph return a single all-null row.
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"minLat": nil, "maxLat": nil, "minLng": nil, "maxLng": nil},
	}})
	s := NewGraphStore(mem)

	bounds, err := s.Bounds(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if bounds != defaultBounds {
		t.Fatalf("expected default bounds, got %+v", bounds)
	}
}

func TestGraphStore_Bounds(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"minLat": 39.1, "maxLat": 39.9, "minLng": 116.1, "maxLng": 116.8},
	}})
	s := NewGraphStore(mem)

	bounds, err := s.Bounds(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := domain.BoundingBox{MinLat: 39.1, MaxLat: 39.9, MinLng: 116.1, MaxLng: 116.8}
	if bounds != want {
		t.Fatalf("expected %+v, got %+v", want, bounds)
	}
}

func TestGraphStore_SecondaryRecordsExcludeDirectPeers(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"id1": int64(1), "id2": int64(3), "timestamp": int64(100), "lat": 39.5, "lng": 116.2},
	}})
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"id1": int64(1), "id2": int64(3), "timestamp": int64(104), "lat": 39.6, "lng": 116.3, "throughId": int64(2)},
		{"id1": int64(1), "id2": int64(4), "timestamp": int64(103), "lat": 39.7, "lng": 116.4, "throughId": int64(2)},
	}})
	s := NewGraphStore(mem)

	got, err := s.SecondaryRecordsForUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].ID2 != 4 {
		t.Fatalf("expected only the (1,4) record, got %+v", got)
	}
}

func TestGraphStore_PairTrajectoryCanonicalizesParams(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"timestamp": int64(100), "lat": 39.5, "lng": 116.2},
	}})
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"timestamp": int64(104), "lat": 39.6, "lng": 116.3, "throughId": int64(2)},
	}})
	s := NewGraphStore(mem)

	points, err := s.PairTrajectory(context.Background(), 9, 5)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].ContactType != domain.ContactDirect || points[1].ContactType != domain.ContactIndirect {
		t.Errorf("expected direct leg before indirect, got %+v", points)
	}

	calls := mem.ReadCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 read queries, got %d", len(calls))
	}
	for _, call := range calls {
		if call.Params["loId"] != 5 || call.Params["hiId"] != 9 {
			t.Errorf("expected canonical pair params lo=5 hi=9, got %v", call.Params)
		}
	}
}

func TestGraphStore_ReadErrorsPropagate(t *testing.T) {
	sentinel := errors.New("bolt connection reset")
	mem := graph.NewMemoryClient().WithError(sentinel)
	s := NewGraphStore(mem)

	if _, err := s.AllTimestamps(context.Background()); !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel error, got %v", err)
	}
	if _, err := s.RecordsAt(context.Background(), 100); !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel error, got %v", err)
	}
	if _, err := s.Bounds(context.Background()); !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel error, got %v", err)
	}
}
