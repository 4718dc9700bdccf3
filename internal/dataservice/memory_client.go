package dataservice

import (
	"context"
	"sync"

	"github.com/liyue/tracemap/internal/domain"
)

// MemoryClient is an in-memory implementation of Client used for unit testing
// the engine without a running data service. It serves canned data, records
// every call, and can be told to fail selectively per endpoint.
type MemoryClient struct {
	mu            sync.Mutex
	timestamps    []int64
	contactsByTS  map[int64][]domain.ContactRecord
	bounds        domain.BoundingBox
	userDirect    map[int][]domain.ContactRecord
	userSecondary map[int][]domain.ContactRecord
	trajectories  map[domain.PairKey][]domain.TrackPoint
	calls         []string
	err           error
	endpointErrs  map[string]error
}

// NewMemoryClient instantiates an empty in-memory client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		contactsByTS:  make(map[int64][]domain.ContactRecord),
		userDirect:    make(map[int][]domain.ContactRecord),
		userSecondary: make(map[int][]domain.ContactRecord),
		trajectories:  make(map[domain.PairKey][]domain.TrackPoint),
		endpointErrs:  make(map[string]error),
	}
}

// SetTimestamps replaces the canned timestamp list.
func (m *MemoryClient) SetTimestamps(timestamps []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timestamps = append([]int64(nil), timestamps...)
}

// SetContacts replaces the canned records for one timestamp.
func (m *MemoryClient) SetContacts(timestamp int64, records []domain.ContactRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contactsByTS[timestamp] = append([]domain.ContactRecord(nil), records...)
}

// SetBounds replaces the canned bounding box.
func (m *MemoryClient) SetBounds(bounds domain.BoundingBox) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bounds = bounds
}

// SetUserContacts replaces the canned direct records for one user.
func (m *MemoryClient) SetUserContacts(userID int, records []domain.ContactRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userDirect[userID] = append([]domain.ContactRecord(nil), records...)
}

// SetUserSecondaryContacts replaces the canned indirect records for one user.
func (m *MemoryClient) SetUserSecondaryContacts(userID int, records []domain.ContactRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userSecondary[userID] = append([]domain.ContactRecord(nil), records...)
}

// SetTrajectory replaces the canned trajectory for one pair; the key is
// canonicalized the same way real lookups are.
func (m *MemoryClient) SetTrajectory(id1, id2 int, points []domain.TrackPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trajectories[domain.CanonicalPair(id1, id2)] = append([]domain.TrackPoint(nil), points...)
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (m *MemoryClient) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// FailEndpoint makes one endpoint fail while the rest keep serving.
func (m *MemoryClient) FailEndpoint(endpoint string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.endpointErrs, endpoint)
		return
	}
	m.endpointErrs[endpoint] = err
}

// Calls returns a snapshot of the endpoints invoked so far, in order.
func (m *MemoryClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MemoryClient) Timestamps(context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("timestamps"); err != nil {
		return nil, err
	}
	return append([]int64(nil), m.timestamps...), nil
}

func (m *MemoryClient) ContactsAt(_ context.Context, timestamp int64) ([]domain.ContactRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("contacts"); err != nil {
		return nil, err
	}
	return append([]domain.ContactRecord(nil), m.contactsByTS[timestamp]...), nil
}

func (m *MemoryClient) Bounds(context.Context) (domain.BoundingBox, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("bounds"); err != nil {
		return domain.BoundingBox{}, err
	}
	return m.bounds, nil
}

func (m *MemoryClient) UserContacts(_ context.Context, userID int) ([]domain.ContactRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("user contacts"); err != nil {
		return nil, err
	}
	return append([]domain.ContactRecord(nil), m.userDirect[userID]...), nil
}

func (m *MemoryClient) UserSecondaryContacts(_ context.Context, userID int) ([]domain.ContactRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("user secondary contacts"); err != nil {
		return nil, err
	}
	return append([]domain.ContactRecord(nil), m.userSecondary[userID]...), nil
}

func (m *MemoryClient) Trajectory(_ context.Context, id1, id2 int) ([]domain.TrackPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("trajectory"); err != nil {
		return nil, err
	}
	return append([]domain.TrackPoint(nil), m.trajectories[domain.CanonicalPair(id1, id2)]...), nil
}

func (m *MemoryClient) Health(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record("health")
}

// record logs the call and resolves the error to return for it. Callers must
// hold m.mu.
func (m *MemoryClient) record(endpoint string) error {
	m.calls = append(m.calls, endpoint)
	if m.err != nil {
		return m.err
	}
	if err, ok := m.endpointErrs[endpoint]; ok {
		return err
	}
	return nil
}
