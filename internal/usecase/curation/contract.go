package curation

import (
	"context"

	"github.com/kailas-cloud/curator/internal/domain/record"
)

// FeedReader loads the stored records of a named feed.
type FeedReader interface {
	Records(ctx context.Context, feed string) ([]record.Record, error)
}
