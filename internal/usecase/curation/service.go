package curation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/curator/internal/domain"
	"github.com/kailas-cloud/curator/internal/domain/criteria"
	"github.com/kailas-cloud/curator/internal/domain/record"
	"github.com/kailas-cloud/curator/internal/logger"
	"github.com/kailas-cloud/curator/internal/metrics"
)

// DefaultMaxRecords bounds the input size of a single run.
const DefaultMaxRecords = 10000

// Metric source labels.
const (
	SourceInline = "inline"
	SourceFeed   = "feed"
)

// Service runs the curation pipeline over inline records or stored feeds.
type Service struct {
	feeds      FeedReader
	maxRecords int
}

// New creates a curation service. feeds can be nil when only inline curation is used.
func New(feeds FeedReader) *Service {
	return &Service{feeds: feeds, maxRecords: DefaultMaxRecords}
}

// WithMaxRecords configures the input size bound.
func (s *Service) WithMaxRecords(n int) *Service {
	if n > 0 {
		s.maxRecords = n
	}
	return s
}

// MaxRecords returns the input size bound.
func (s *Service) MaxRecords() int { return s.maxRecords }

// Curate runs the pipeline over the given records.
func (s *Service) Curate(ctx context.Context, records []record.Record, c criteria.Criteria) (Outcome, error) {
	return s.run(ctx, SourceInline, records, c)
}

// CurateFeed loads a stored feed and runs the pipeline over it.
func (s *Service) CurateFeed(ctx context.Context, feed string, c criteria.Criteria) (Outcome, error) {
	if s.feeds == nil {
		return Outcome{}, domain.ErrStorageDisabled
	}
	records, err := s.feeds.Records(ctx, feed)
	if err != nil {
		metrics.CurationRunsTotal.WithLabelValues(SourceFeed, "error").Inc()
		return Outcome{}, fmt.Errorf("load feed: %w", err)
	}
	return s.run(ctx, SourceFeed, records, c)
}

func (s *Service) run(
	ctx context.Context, source string, records []record.Record, c criteria.Criteria,
) (Outcome, error) {
	log := logger.FromContext(ctx)

	if len(records) > s.maxRecords {
		metrics.CurationRunsTotal.WithLabelValues(source, "error").Inc()
		return Outcome{}, fmt.Errorf("%w: %d records (max %d)", domain.ErrTooManyRecords, len(records), s.maxRecords)
	}

	start := time.Now()
	out, err := Run(records, c)
	duration := time.Since(start)

	if err != nil {
		metrics.CurationRunsTotal.WithLabelValues(source, "error").Inc()
		log.Warn("Curation rejected", zap.String("source", source), zap.Error(err))
		return Outcome{}, err
	}

	metrics.CurationRunsTotal.WithLabelValues(source, "ok").Inc()
	metrics.CurationRunDuration.WithLabelValues(source).Observe(duration.Seconds())
	observeStages(out.Stats)

	for _, d := range out.Dropped {
		metrics.CurationDroppedTotal.WithLabelValues(dropReason(d.Reason)).Inc()
		log.Debug("Record dropped from ranking",
			zap.String("record_id", d.ID),
			zap.Error(d.Reason),
		)
	}

	log.Debug("Curation completed",
		zap.String("source", source),
		zap.Int("input", out.Stats.Input),
		zap.Int("eligible", out.Stats.Eligible),
		zap.Int("permitted", out.Stats.Permitted),
		zap.Int("ranked", out.Stats.Ranked),
		zap.Int("returned", out.Stats.Returned),
		zap.Duration("duration", duration),
	)

	return out, nil
}

func observeStages(st Stats) {
	metrics.CurationStageRecords.WithLabelValues("input").Observe(float64(st.Input))
	metrics.CurationStageRecords.WithLabelValues("eligible").Observe(float64(st.Eligible))
	metrics.CurationStageRecords.WithLabelValues("permitted").Observe(float64(st.Permitted))
	metrics.CurationStageRecords.WithLabelValues("ranked").Observe(float64(st.Ranked))
	metrics.CurationStageRecords.WithLabelValues("returned").Observe(float64(st.Returned))
}

func dropReason(err error) string {
	var rue *domain.RankingUndefinedError
	if errors.As(err, &rue) {
		return rue.Reason
	}
	return "unknown"
}
