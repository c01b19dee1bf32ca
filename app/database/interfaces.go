package database

import (
	"context"

	"github.com/benbrougher/benbrougher-tech/app/feed"
)

type PostRepository interface {
	GetPost(ctx context.Context, slug string) (*Post, error)
	GetPublishedPosts(ctx context.Context, limit int) ([]Post, error)
	GetAllPosts(ctx context.Context) ([]Post, error)
	GetPostCount(ctx context.Context) (int, error)
	GetPostStats(ctx context.Context) (PostStats, error)

	UpsertPost(ctx context.Context, post Post) (bool, error)
	DeletePostsNotIn(ctx context.Context, slugs []string) (int64, error)

	feed.ItemSource
}
