package prefetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/liyue/tracemap/internal/domain"
)

type stubFetcher struct {
	mu         sync.Mutex
	timestamps []int64
	cached     map[int64]bool
	fetched    []int64
	err        error
}

func newStubFetcher(timestamps ...int64) *stubFetcher {
	return &stubFetcher{timestamps: timestamps, cached: make(map[int64]bool)}
}

func (s *stubFetcher) Timestamps(context.Context) ([]int64, error) {
	return s.timestamps, nil
}

func (s *stubFetcher) ContactsAt(_ context.Context, ts int64) ([]domain.ContactPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, ts)
	if s.err != nil {
		return nil, s.err
	}
	s.cached[ts] = true
	return nil, nil
}

func (s *stubFetcher) HasContactsAt(ts int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cached[ts]
}

func (s *stubFetcher) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fetched)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestController_PrefetchWarmsSnapshot(t *testing.T) {
	source := newStubFetcher(1, 2, 3)
	ctl := New(source, discardLogger())

	ctl.Prefetch(context.Background(), 2)
	ctl.Wait()

	if !source.HasContactsAt(2) {
		t.Fatal("expected snapshot 2 to be warmed")
	}
	if source.fetchCount() != 1 {
		t.Fatalf("expected 1 fetch, got %d", source.fetchCount())
	}
}

func TestController_PrefetchIsNoOpWhenCached(t *testing.T) {
	source := newStubFetcher(1, 2)
	source.cached[2] = true
	ctl := New(source, discardLogger())

	ctl.Prefetch(context.Background(), 2)
	ctl.Wait()

	if source.fetchCount() != 0 {
		t.Fatalf("cached timestamp must not be fetched, got %d fetches", source.fetchCount())
	}
}

func TestController_PrefetchNextPicksSuccessor(t *testing.T) {
	source := newStubFetcher(10, 20, 30)
	ctl := New(source, discardLogger())

	ctl.PrefetchNext(context.Background(), 20)
	ctl.Wait()

	if !source.HasContactsAt(30) {
		t.Fatal("expected successor 30 to be warmed")
	}
	if source.HasContactsAt(10) || source.HasContactsAt(20) {
		t.Fatal("only the successor must be fetched")
	}
}

func TestController_PrefetchNextNoSuccessor(t *testing.T) {
	source := newStubFetcher(10, 20)
	ctl := New(source, discardLogger())

	ctl.PrefetchNext(context.Background(), 20)
	ctl.Wait()

	if source.fetchCount() != 0 {
		t.Fatalf("last timestamp has no successor, got %d fetches", source.fetchCount())
	}
}

func TestController_FailuresAreSwallowed(t *testing.T) {
	source := newStubFetcher(1)
	source.err = errors.New("upstream down")
	ctl := New(source, discardLogger())

	// Must neither panic nor surface the error.
	ctl.Prefetch(context.Background(), 1)
	ctl.Wait()

	if source.fetchCount() != 1 {
		t.Fatalf("expected the failed fetch to have been attempted, got %d", source.fetchCount())
	}
}

func TestController_SurvivesCallerCancellation(t *testing.T) {
	source := newStubFetcher(1)
	ctl := New(source, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ctl.Prefetch(ctx, 1)
	ctl.Wait()

	if !source.HasContactsAt(1) {
		t.Fatal("prefetch must run detached from the caller's context")
	}
}
