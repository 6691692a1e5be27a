package batch

import (
	"context"

	"github.com/kailas-cloud/curator/internal/domain/criteria"
	"github.com/kailas-cloud/curator/internal/usecase/curation"
)

// FeedCurator curates a stored feed.
type FeedCurator interface {
	CurateFeed(ctx context.Context, feed string, c criteria.Criteria) (curation.Outcome, error)
}
