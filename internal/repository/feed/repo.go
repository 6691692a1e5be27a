package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/curator/internal/db"
	"github.com/kailas-cloud/curator/internal/domain"
	domfeed "github.com/kailas-cloud/curator/internal/domain/feed"
)

// DefaultKeyPrefix namespaces every key written by the service.
const DefaultKeyPrefix = "curator:"

// store is the consumer interface for feeds (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/feed.Repository.
type Repo struct {
	store  store
	prefix string
	ttl    time.Duration
}

// New creates a feed repository. An empty prefix falls back to DefaultKeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// WithTTL expires stored feeds after ttl. Zero keeps them forever.
func (r *Repo) WithTTL(ttl time.Duration) *Repo {
	if ttl > 0 {
		r.ttl = ttl
	}
	return r
}

// Put replaces the records of a feed.
func (r *Repo) Put(ctx context.Context, f domfeed.Feed) error {
	data, err := feedToJSON(f)
	if err != nil {
		return err
	}

	key := r.feedKey(f.Name())
	if r.ttl > 0 {
		err = r.store.SetWithTTL(ctx, key, data, r.ttl)
	} else {
		err = r.store.Set(ctx, key, data)
	}
	if err != nil {
		return fmt.Errorf("set feed %s: %w", f.Name(), err)
	}
	return nil
}

// Get retrieves a feed by name.
func (r *Repo) Get(ctx context.Context, name string) (domfeed.Feed, error) {
	data, err := r.store.Get(ctx, r.feedKey(name))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domfeed.Feed{}, fmt.Errorf("%w: %s", domain.ErrFeedNotFound, name)
		}
		return domfeed.Feed{}, fmt.Errorf("get feed %s: %w", name, err)
	}

	f, err := feedFromJSON(data)
	if err != nil {
		return domfeed.Feed{}, fmt.Errorf("parse feed %s: %w", name, err)
	}
	return f, nil
}

// Delete removes a feed.
func (r *Repo) Delete(ctx context.Context, name string) error {
	key := r.feedKey(name)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check feed %s: %w", name, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrFeedNotFound, name)
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del feed %s: %w", name, err)
	}
	return nil
}

// List returns stored feed names sorted alphabetically.
func (r *Repo) List(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, r.feedKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan feeds: %w", err)
	}

	base := r.feedKey("")
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, base))
	}
	sort.Strings(names)
	return names, nil
}

// Key pattern: {prefix}feed:{name}
func (r *Repo) feedKey(name string) string {
	return fmt.Sprintf("%sfeed:%s", r.prefix, name)
}
