package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"

	"github.com/benbrougher/benbrougher-tech/app/cache"
	"github.com/benbrougher/benbrougher-tech/app/content"
	"github.com/benbrougher/benbrougher-tech/app/database"
)

var postsSynced = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "site_posts_synced_total",
	Help: "Posts written to or removed from the post index",
}, []string{"action"})

// SyncResult summarises one pass over the posts directory.
type SyncResult struct {
	Loaded    int
	Changed   int
	Unchanged int
	Deleted   int64
}

type SyncPostsTask struct {
	Task
	loader      PostLoader
	postRepo    database.PostRepository
	invalidator cache.InvalidatorInterface
	result      SyncResult
}

// NewSyncPostsTask builds a sync task. invalidator may be nil when no cache
// is configured.
func NewSyncPostsTask(loader PostLoader, postRepo database.PostRepository, invalidator cache.InvalidatorInterface) *SyncPostsTask {
	return &SyncPostsTask{
		Task:        NewTask(TaskTypeSyncPosts, loader.Dir()),
		loader:      loader,
		postRepo:    postRepo,
		invalidator: invalidator,
	}
}

func (t *SyncPostsTask) Result() SyncResult {
	return t.result
}

func (t *SyncPostsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	posts, err := t.loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to load posts: %w", err)
	}

	result := SyncResult{Loaded: len(posts)}

	for _, post := range posts {
		changed, err := t.postRepo.UpsertPost(ctx, toDatabasePost(post))
		if err != nil {
			return fmt.Errorf("failed to store post %s: %w", post.Slug, err)
		}

		if changed {
			result.Changed++
			slog.Debug("Post updated", "slug", post.Slug, "source", post.SourcePath)
		} else {
			result.Unchanged++
		}
	}

	slugs := lo.Map(posts, func(p content.Post, _ int) string { return p.Slug })
	deleted, err := t.postRepo.DeletePostsNotIn(ctx, slugs)
	if err != nil {
		return fmt.Errorf("failed to remove stale posts: %w", err)
	}
	result.Deleted = deleted

	postsSynced.WithLabelValues("changed").Add(float64(result.Changed))
	postsSynced.WithLabelValues("deleted").Add(float64(result.Deleted))

	if t.invalidator != nil && (result.Changed > 0 || result.Deleted > 0) {
		purged, err := t.invalidator.Purge(ctx)
		if err != nil {
			slog.Warn("Failed to purge cache after sync", "error", err)
		} else {
			slog.Debug("Cache purged", "keys", purged)
		}
	}

	t.result = result

	slog.Info("Task completed",
		"type", string(t.Type),
		"source", t.Source,
		"loaded", result.Loaded,
		"changed", result.Changed,
		"unchanged", result.Unchanged,
		"deleted", result.Deleted,
		"duration", t.GetDuration())

	return nil
}

func toDatabasePost(p content.Post) database.Post {
	return database.Post{
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		ContentHTML: p.ContentHTML,
		SourcePath:  p.SourcePath,
		ContentHash: p.ContentHash,
		Author:      p.Author,
		Tags:        p.Tags,
		PubDate:     p.PubDate,
		Draft:       p.Draft,
	}
}
