package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/curator/internal/domain"
	dombatch "github.com/kailas-cloud/curator/internal/domain/batch"
	"github.com/kailas-cloud/curator/internal/domain/criteria"
	"github.com/kailas-cloud/curator/internal/domain/permission"
	"github.com/kailas-cloud/curator/internal/domain/query"
	"github.com/kailas-cloud/curator/internal/domain/rule"
	"github.com/kailas-cloud/curator/internal/logger"
	"github.com/kailas-cloud/curator/internal/usecase/curation"
)

// --- Mocks ---

type mockCurator struct {
	mu       sync.Mutex
	calls    []string
	failFeed string
	delay    time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (m *mockCurator) CurateFeed(_ context.Context, feed string, c criteria.Criteria) (curation.Outcome, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		cur := m.maxInFlight.Load()
		if n <= cur || m.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	m.calls = append(m.calls, feed)
	m.mu.Unlock()

	if feed == m.failFeed {
		return curation.Outcome{}, domain.ErrFeedNotFound
	}
	return curation.Outcome{Stats: curation.Stats{Returned: c.MaxCount()}}, nil
}

func makeQuery(t *testing.T, level string, maxCount int) query.Query {
	t.Helper()
	q, err := query.New(rule.EligibilitySpec{}, level, rule.RankingSpec{Rule: rule.RuleScore}, &maxCount, time.Time{}, query.DefaultLimits())
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return q
}

// --- Tests ---

func TestCurate_PreservesOrder(t *testing.T) {
	svc := New(&mockCurator{}, permission.Default())
	items := []Item{
		{Feed: "a", Query: makeQuery(t, "", 1)},
		{Feed: "b", Query: makeQuery(t, "", 2)},
		{Feed: "c", Query: makeQuery(t, "", 3)},
	}

	results, err := svc.Curate(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range results {
		if r.Index() != i || r.ID() != items[i].Feed {
			t.Errorf("result %d: index=%d id=%s", i, r.Index(), r.ID())
		}
		if r.Status() != dombatch.StatusOK {
			t.Errorf("result %d: status=%s err=%v", i, r.Status(), r.Err())
		}
		if r.Value().Stats.Returned != i+1 {
			t.Errorf("result %d: returned=%d", i, r.Value().Stats.Returned)
		}
	}
}

func TestCurate_ItemFailureIsolated(t *testing.T) {
	cur := &mockCurator{failFeed: "missing"}
	svc := New(cur, permission.Default())
	items := []Item{
		{Feed: "a", Query: makeQuery(t, "", 5)},
		{Feed: "missing", Query: makeQuery(t, "", 5)},
		{Feed: "c", Query: makeQuery(t, "", 5)},
	}

	results, err := svc.Curate(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[1].Status() != dombatch.StatusError || !errors.Is(results[1].Err(), domain.ErrFeedNotFound) {
		t.Errorf("expected ErrFeedNotFound for item 1, got %v", results[1].Err())
	}
	if results[0].Status() != dombatch.StatusOK || results[2].Status() != dombatch.StatusOK {
		t.Error("other items must succeed")
	}
	if len(cur.calls) != 3 {
		t.Errorf("expected 3 calls, got %d", len(cur.calls))
	}
}

func TestCurate_InvalidCriteriaPerItem(t *testing.T) {
	cur := &mockCurator{}
	svc := New(cur, permission.Default())
	items := []Item{
		{Feed: "a", Query: makeQuery(t, "9", 5)},
		{Feed: "b", Query: makeQuery(t, "2", 5)},
	}

	results, err := svc.Curate(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(results[0].Err(), domain.ErrInvalidCriteria) {
		t.Errorf("expected ErrInvalidCriteria, got %v", results[0].Err())
	}
	if results[1].Err() != nil {
		t.Errorf("unexpected error: %v", results[1].Err())
	}
	if len(cur.calls) != 1 {
		t.Errorf("invalid item must not reach the curator, calls=%v", cur.calls)
	}
}

func TestCurate_InvalidItemSkipsCurator(t *testing.T) {
	cur := &mockCurator{}
	svc := New(cur, permission.Default())
	bad := errors.New("bad query")
	items := []Item{
		{Feed: "a", Invalid: bad},
		{Feed: "b", Query: makeQuery(t, "", 1)},
	}

	results, err := svc.Curate(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(results[0].Err(), bad) {
		t.Errorf("item 0: err = %v, want %v", results[0].Err(), bad)
	}
	if results[1].Status() != dombatch.StatusOK {
		t.Errorf("item 1: status = %s", results[1].Status())
	}
	if len(cur.calls) != 1 || cur.calls[0] != "b" {
		t.Errorf("calls = %v, want [b]", cur.calls)
	}
}

func TestCurate_TooLarge(t *testing.T) {
	svc := New(&mockCurator{}, permission.Default()).WithMaxBatchSize(1)
	items := []Item{{Feed: "a", Query: makeQuery(t, "", 1)}, {Feed: "b", Query: makeQuery(t, "", 1)}}

	_, err := svc.Curate(context.Background(), items)
	if !errors.Is(err, domain.ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
}

func TestCurate_Empty(t *testing.T) {
	results, err := New(&mockCurator{}, permission.Default()).Curate(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestCurate_BoundedConcurrency(t *testing.T) {
	cur := &mockCurator{delay: 10 * time.Millisecond}
	svc := New(cur, permission.Default()).WithConcurrency(2)

	items := make([]Item, 8)
	for i := range items {
		items[i] = Item{Feed: string(rune('a' + i)), Query: makeQuery(t, "", 1)}
	}
	if _, err := svc.Curate(context.Background(), items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cur.maxInFlight.Load(); got > 2 {
		t.Errorf("max in flight = %d, want <= 2", got)
	}
}

func TestCurate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cur := &mockCurator{}
	results, err := New(cur, permission.Default()).Curate(ctx, []Item{{Feed: "a", Query: makeQuery(t, "", 1)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(results[0].Err(), context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", results[0].Err())
	}
}

type loggingCurator struct{}

func (loggingCurator) CurateFeed(ctx context.Context, _ string, _ criteria.Criteria) (curation.Outcome, error) {
	logger.FromContext(ctx).Info("curating")
	return curation.Outcome{}, nil
}

func TestCurate_ItemLoggerCarriesFeed(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := logger.ContextWithLogger(context.Background(), zap.New(core))

	svc := New(loggingCurator{}, permission.Default())
	if _, err := svc.Curate(ctx, []Item{{Feed: "home", Query: makeQuery(t, "", 1)}}); err != nil {
		t.Fatalf("Curate: %v", err)
	}

	entries := logs.FilterMessage("curating").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["feed"] != "home" || fields["item"] != int64(0) {
		t.Errorf("log fields = %v", fields)
	}
}
