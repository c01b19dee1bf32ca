package cache

import (
	"context"
	"time"
)

// FeedCacheInterface stores built feeds between requests.
type FeedCacheInterface interface {
	GetFeed(ctx context.Context, siteURL string) (*FeedEntry, bool, error)
	SetFeed(ctx context.Context, siteURL string, entry FeedEntry, ttl time.Duration) error
}

// InvalidatorInterface drops everything cached for the site.
type InvalidatorInterface interface {
	Purge(ctx context.Context) (int64, error)
}
