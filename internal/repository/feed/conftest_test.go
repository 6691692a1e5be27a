package feed

import (
	"context"
	"testing"
	"time"

	domfeed "github.com/kailas-cloud/curator/internal/domain/feed"
	"github.com/kailas-cloud/curator/internal/domain/record"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn        func(ctx context.Context, key string) ([]byte, error)
	setFn        func(ctx context.Context, key string, value []byte) error
	setWithTTLFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	delFn        func(ctx context.Context, key string) error
	existsFn     func(ctx context.Context, key string) (bool, error)
	scanFn       func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setWithTTLFn != nil {
		return m.setWithTTLFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, ""), ms
}

func testFeed(t *testing.T) domfeed.Feed {
	t.Helper()
	created := time.Date(2026, 9, 30, 8, 0, 0, 0, time.UTC)
	a, err := record.New(record.Fields{
		ID: "alice", Kind: record.User, Status: record.StatusActive, Level: 3,
		Tags: []string{"go"}, CreatedAt: created,
		Numerics:   map[string]float64{"score": 4.5},
		Attributes: map[string]string{"handle": "@alice"},
	})
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	b, err := record.New(record.Fields{ID: "post-1", Kind: record.Post, Level: 1})
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	f, err := domfeed.New("home", []record.Record{a, b}, created.Add(time.Hour))
	if err != nil {
		t.Fatalf("feed.New: %v", err)
	}
	return f
}
