package feed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/curator/internal/domain"
	domfeed "github.com/kailas-cloud/curator/internal/domain/feed"
	"github.com/kailas-cloud/curator/internal/domain/record"
	"github.com/kailas-cloud/curator/internal/logger"
	"github.com/kailas-cloud/curator/internal/metrics"
)

// DefaultMaxRecords bounds the number of records stored in one feed.
const DefaultMaxRecords = 10000

// Service handles feed storage operations.
type Service struct {
	repo       Repository
	maxRecords int
	now        func() time.Time
}

// New creates a feed service.
func New(repo Repository) *Service {
	return &Service{repo: repo, maxRecords: DefaultMaxRecords, now: time.Now}
}

// WithMaxRecords configures the per-feed size cap.
func (s *Service) WithMaxRecords(n int) *Service {
	if n > 0 {
		s.maxRecords = n
	}
	return s
}

// Put validates and replaces the records of a feed.
func (s *Service) Put(ctx context.Context, name string, records []record.Record) (domfeed.Feed, error) {
	if len(records) > s.maxRecords {
		return domfeed.Feed{}, fmt.Errorf("%w: %d records (max %d)", domain.ErrTooManyRecords, len(records), s.maxRecords)
	}

	f, err := domfeed.New(name, records, s.now())
	if err != nil {
		return domfeed.Feed{}, fmt.Errorf("validate feed: %w", err)
	}

	err = s.repo.Put(ctx, f)
	metrics.FeedOperationsTotal.WithLabelValues("put", metrics.StatusLabel(err)).Inc()
	if err != nil {
		return domfeed.Feed{}, fmt.Errorf("put feed: %w", err)
	}
	metrics.FeedRecordsStored.Observe(float64(f.Len()))

	logger.FromContext(ctx).Info("Feed stored",
		zap.String("feed", f.Name()),
		zap.Int("records", f.Len()),
	)
	return f, nil
}

// Get retrieves a feed by name.
func (s *Service) Get(ctx context.Context, name string) (domfeed.Feed, error) {
	if err := domfeed.ValidateName(name); err != nil {
		return domfeed.Feed{}, err
	}
	f, err := s.repo.Get(ctx, name)
	metrics.FeedOperationsTotal.WithLabelValues("get", metrics.StatusLabel(err)).Inc()
	if err != nil {
		return domfeed.Feed{}, fmt.Errorf("get feed: %w", err)
	}
	return f, nil
}

// Records returns the records of a stored feed.
func (s *Service) Records(ctx context.Context, name string) ([]record.Record, error) {
	f, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return f.Records(), nil
}

// List returns the names of all stored feeds.
func (s *Service) List(ctx context.Context) ([]string, error) {
	names, err := s.repo.List(ctx)
	metrics.FeedOperationsTotal.WithLabelValues("list", metrics.StatusLabel(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return names, nil
}

// Delete removes a feed.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := domfeed.ValidateName(name); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, name)
	metrics.FeedOperationsTotal.WithLabelValues("delete", metrics.StatusLabel(err)).Inc()
	if err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	logger.FromContext(ctx).Info("Feed deleted", zap.String("feed", name))
	return nil
}
