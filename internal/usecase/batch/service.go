package batch

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/curator/internal/domain"
	dombatch "github.com/kailas-cloud/curator/internal/domain/batch"
	"github.com/kailas-cloud/curator/internal/domain/permission"
	"github.com/kailas-cloud/curator/internal/domain/query"
	"github.com/kailas-cloud/curator/internal/logger"
	"github.com/kailas-cloud/curator/internal/metrics"
	"github.com/kailas-cloud/curator/internal/usecase/curation"
)

// Batch defaults.
const (
	MaxBatchSize       = 20
	DefaultConcurrency = 4
)

// Item is one feed curation request inside a batch.
// Invalid carries a query decoding error; such items fail without running.
type Item struct {
	Feed    string
	Query   query.Query
	Invalid error
}

// Result is the per-item batch outcome.
type Result = dombatch.Result[curation.Outcome]

// Service curates several feeds concurrently with per-item error reporting.
type Service struct {
	curator      FeedCurator
	domain       permission.Domain
	maxBatchSize int
	concurrency  int
}

// New creates a batch service resolving queries against dom.
func New(curator FeedCurator, dom permission.Domain) *Service {
	return &Service{
		curator:      curator,
		domain:       dom,
		maxBatchSize: MaxBatchSize,
		concurrency:  DefaultConcurrency,
	}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithConcurrency configures how many items run at once.
func (s *Service) WithConcurrency(n int) *Service {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// Curate runs every item and returns results in request order.
// A failing item never aborts the others.
func (s *Service) Curate(ctx context.Context, items []Item) ([]Result, error) {
	if len(items) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: %d items (max %d)", domain.ErrBatchTooLarge, len(items), s.maxBatchSize)
	}

	results := make([]Result, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, item := range items {
		g.Go(func() error {
			results[i] = s.curateOne(gctx, i, item)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		metrics.BatchItemsTotal.WithLabelValues(string(r.Status())).Inc()
	}

	if failed := dombatch.Failed(results); failed > 0 {
		logger.FromContext(ctx).Warn("Batch items failed",
			zap.Int("items", len(items)),
			zap.Int("failed", failed),
		)
	}
	return results, nil
}

func (s *Service) curateOne(ctx context.Context, i int, item Item) Result {
	if item.Invalid != nil {
		return dombatch.NewError[curation.Outcome](i, item.Feed, item.Invalid)
	}
	if err := ctx.Err(); err != nil {
		return dombatch.NewError[curation.Outcome](i, item.Feed, err)
	}

	c, err := item.Query.Criteria(s.domain)
	if err != nil {
		return dombatch.NewError[curation.Outcome](i, item.Feed, err)
	}

	ctx = logger.WithFields(ctx, zap.String("feed", item.Feed), zap.Int("item", i))
	out, err := s.curator.CurateFeed(ctx, item.Feed, c)
	if err != nil {
		return dombatch.NewError[curation.Outcome](i, item.Feed, fmt.Errorf("curate feed %s: %w", item.Feed, err))
	}
	return dombatch.NewOK(i, item.Feed, out)
}
