package feed

import (
	"context"

	domfeed "github.com/kailas-cloud/curator/internal/domain/feed"
)

// Repository defines the storage contract for feeds.
type Repository interface {
	Put(ctx context.Context, f domfeed.Feed) error
	Get(ctx context.Context, name string) (domfeed.Feed, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}
