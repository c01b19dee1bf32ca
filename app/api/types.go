package api

import (
	"context"
	"time"

	"github.com/benbrougher/benbrougher-tech/app/cache"
	"github.com/benbrougher/benbrougher-tech/app/database"
	"github.com/benbrougher/benbrougher-tech/app/feed"
	"github.com/benbrougher/benbrougher-tech/app/site"
	"github.com/benbrougher/benbrougher-tech/app/tasks"
)

type FeedBuilderInterface interface {
	Run(ctx context.Context) (*feed.Result, error)
}

var _ FeedBuilderInterface = (*feed.Builder)(nil)

type Handler struct {
	renderer    *site.Renderer
	postRepo    database.PostRepository
	feedBuilder FeedBuilderInterface
	scheduler   tasks.TaskSchedulerInterface
	feedCache   cache.FeedCacheInterface
	cacheTTL    time.Duration
	version     string
}
