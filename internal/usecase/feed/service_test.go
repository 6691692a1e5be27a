package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/curator/internal/domain"
	domfeed "github.com/kailas-cloud/curator/internal/domain/feed"
	"github.com/kailas-cloud/curator/internal/domain/record"
	"github.com/kailas-cloud/curator/internal/metrics"
)

// --- Mocks ---

type mockRepo struct {
	stored     domfeed.Feed
	putCalls   int
	getResult  domfeed.Feed
	listResult []string
	putErr     error
	getErr     error
	listErr    error
	deleteErr  error
}

func (m *mockRepo) Put(_ context.Context, f domfeed.Feed) error {
	m.putCalls++
	m.stored = f
	return m.putErr
}

func (m *mockRepo) Get(_ context.Context, _ string) (domfeed.Feed, error) {
	return m.getResult, m.getErr
}

func (m *mockRepo) List(_ context.Context) ([]string, error) {
	return m.listResult, m.listErr
}

func (m *mockRepo) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}

func makeRecord(t *testing.T, id string) record.Record {
	t.Helper()
	r, err := record.New(record.Fields{ID: id, Status: record.StatusActive, Level: 1})
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	return r
}

// --- Tests ---

func TestPut_Success(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)
	fixed := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	f, err := svc.Put(context.Background(), "home", []record.Record{makeRecord(t, "a"), makeRecord(t, "b")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Len() != 2 || !f.UpdatedAt().Equal(fixed) {
		t.Errorf("unexpected feed: len=%d updated=%v", f.Len(), f.UpdatedAt())
	}
	if repo.stored.Name() != "home" {
		t.Errorf("stored %q", repo.stored.Name())
	}
}

func TestPut_InvalidName(t *testing.T) {
	repo := &mockRepo{}
	_, err := New(repo).Put(context.Background(), "bad name", nil)
	if !errors.Is(err, domain.ErrInvalidFeed) {
		t.Fatalf("expected ErrInvalidFeed, got %v", err)
	}
	if repo.putCalls != 0 {
		t.Error("repository must not be called")
	}
}

func TestPut_Duplicate(t *testing.T) {
	_, err := New(&mockRepo{}).Put(context.Background(), "home", []record.Record{makeRecord(t, "a"), makeRecord(t, "a")})
	if !errors.Is(err, domain.ErrDuplicateRecord) {
		t.Fatalf("expected ErrDuplicateRecord, got %v", err)
	}
}

func TestPut_TooMany(t *testing.T) {
	svc := New(&mockRepo{}).WithMaxRecords(1)
	_, err := svc.Put(context.Background(), "home", []record.Record{makeRecord(t, "a"), makeRecord(t, "b")})
	if !errors.Is(err, domain.ErrTooManyRecords) {
		t.Fatalf("expected ErrTooManyRecords, got %v", err)
	}
}

func TestPut_RepoError(t *testing.T) {
	repo := &mockRepo{putErr: errors.New("connection lost")}
	if _, err := New(repo).Put(context.Background(), "home", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := &mockRepo{getErr: domain.ErrFeedNotFound}
	_, err := New(repo).Get(context.Background(), "home")
	if !errors.Is(err, domain.ErrFeedNotFound) {
		t.Fatalf("expected ErrFeedNotFound, got %v", err)
	}
}

func TestGet_InvalidName(t *testing.T) {
	_, err := New(&mockRepo{}).Get(context.Background(), "a:b")
	if !errors.Is(err, domain.ErrInvalidFeed) {
		t.Fatalf("expected ErrInvalidFeed, got %v", err)
	}
}

func TestRecords(t *testing.T) {
	f, _ := domfeed.New("home", []record.Record{makeRecord(t, "a")}, time.Now())
	recs, err := New(&mockRepo{getResult: f}).Records(context.Background(), "home")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].ID() != "a" {
		t.Errorf("records = %v", recs)
	}
}

func TestList(t *testing.T) {
	names, err := New(&mockRepo{listResult: []string{"a", "b"}}).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("names = %v", names)
	}
}

func TestDelete(t *testing.T) {
	if err := New(&mockRepo{}).Delete(context.Background(), "home"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := New(&mockRepo{deleteErr: domain.ErrFeedNotFound}).Delete(context.Background(), "home")
	if !errors.Is(err, domain.ErrFeedNotFound) {
		t.Fatalf("expected ErrFeedNotFound, got %v", err)
	}
}

func TestPut_CountsOperations(t *testing.T) {
	ok := metrics.FeedOperationsTotal.WithLabelValues("put", metrics.StatusOK)
	failed := metrics.FeedOperationsTotal.WithLabelValues("put", metrics.StatusError)
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	_, _ = New(&mockRepo{}).Put(context.Background(), "home", nil)
	_, _ = New(&mockRepo{putErr: errors.New("down")}).Put(context.Background(), "home", nil)

	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Errorf("ok delta = %f, want 1", got)
	}
	if got := testutil.ToFloat64(failed) - failedBefore; got != 1 {
		t.Errorf("error delta = %f, want 1", got)
	}
}
