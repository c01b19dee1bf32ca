package tasks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbrougher/benbrougher-tech/app/content"
	"github.com/benbrougher/benbrougher-tech/app/database"
	"github.com/benbrougher/benbrougher-tech/app/feed"
)

type fakeLoader struct {
	posts []content.Post
	err   error
}

func (l *fakeLoader) Run(ctx context.Context) ([]content.Post, error) {
	return l.posts, l.err
}

func (l *fakeLoader) Dir() string {
	return "posts"
}

type fakePostRepo struct {
	mu        sync.Mutex
	posts     map[string]database.Post
	upserted  chan string
	deleteErr error
	kept      []string
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts:    map[string]database.Post{},
		upserted: make(chan string, 10),
	}
}

func (r *fakePostRepo) GetPost(ctx context.Context, slug string) (*database.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[slug]
	if !ok {
		return nil, database.ErrPostNotFound
	}
	return &p, nil
}

func (r *fakePostRepo) GetPublishedPosts(ctx context.Context, limit int) ([]database.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) GetAllPosts(ctx context.Context) ([]database.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) GetPostCount(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts), nil
}

func (r *fakePostRepo) GetPostStats(ctx context.Context) (database.PostStats, error) {
	return database.PostStats{}, nil
}

func (r *fakePostRepo) UpsertPost(ctx context.Context, post database.Post) (bool, error) {
	r.mu.Lock()
	existing, ok := r.posts[post.Slug]
	changed := !ok || existing.ContentHash != post.ContentHash
	if changed {
		r.posts[post.Slug] = post
	}
	r.mu.Unlock()

	select {
	case r.upserted <- post.Slug:
	default:
	}
	return changed, nil
}

func (r *fakePostRepo) DeletePostsNotIn(ctx context.Context, slugs []string) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.kept = slugs

	keep := map[string]bool{}
	for _, s := range slugs {
		keep[s] = true
	}

	var deleted int64
	for slug := range r.posts {
		if !keep[slug] {
			delete(r.posts, slug)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakePostRepo) Items(ctx context.Context) ([]feed.Item, error) {
	return nil, nil
}

func contentPost(slug, hash string) content.Post {
	return content.Post{
		Slug:        slug,
		Title:       slug,
		ContentHash: hash,
		SourcePath:  "posts/" + slug + ".md",
		PubDate:     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewTask(t *testing.T) {
	a := NewTask(TaskTypeSyncPosts, "posts")
	b := NewTask(TaskTypeSyncPosts, "posts")

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("Expected unique non-empty IDs, got '%s' and '%s'", a.ID, b.ID)
	}
	if a.GetType() != TaskTypeSyncPosts {
		t.Errorf("Expected type %s, got %s", TaskTypeSyncPosts, a.GetType())
	}
	if a.GetSource() != "posts" {
		t.Errorf("Expected source 'posts', got '%s'", a.GetSource())
	}
	if a.GetMaxRetries() != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", DefaultMaxRetries, a.GetMaxRetries())
	}
	if a.GetDuration() != 0 {
		t.Errorf("Expected zero duration before start, got %v", a.GetDuration())
	}

	for i := 0; i < DefaultMaxRetries; i++ {
		if !a.CanRetry() {
			t.Fatalf("Expected task to be retryable after %d retries", i)
		}
		a.IncrementRetryCount()
	}
	if a.CanRetry() {
		t.Error("Expected task not to be retryable after max retries")
	}

	a.Start()
	if a.StartedAt == nil {
		t.Error("Expected StartedAt to be set")
	}
}

func TestRetryBackoff(t *testing.T) {
	expected := map[int]time.Duration{
		0:  time.Second,
		1:  time.Second,
		2:  2 * time.Second,
		3:  4 * time.Second,
		5:  16 * time.Second,
		6:  30 * time.Second,
		40: 30 * time.Second,
	}

	for attempt, want := range expected {
		if got := retryBackoff(attempt); got != want {
			t.Errorf("Attempt %d: expected %v, got %v", attempt, want, got)
		}
	}
}

func TestSyncPostsTaskExecute(t *testing.T) {
	repo := newFakePostRepo()
	repo.posts["stale"] = database.Post{Slug: "stale"}
	repo.posts["same"] = database.Post{Slug: "same", ContentHash: "h-same"}

	loader := &fakeLoader{posts: []content.Post{
		contentPost("new", "h-new"),
		contentPost("same", "h-same"),
	}}

	task := NewSyncPostsTask(loader, repo, nil)
	task.Start()
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	result := task.Result()
	if result.Loaded != 2 || result.Changed != 1 || result.Unchanged != 1 || result.Deleted != 1 {
		t.Errorf("Unexpected sync result: %+v", result)
	}

	if _, ok := repo.posts["stale"]; ok {
		t.Error("Expected stale post to be removed")
	}
	if got := repo.posts["new"].SourcePath; got != "posts/new.md" {
		t.Errorf("Expected source path to be stored, got '%s'", got)
	}
	if len(repo.kept) != 2 {
		t.Errorf("Expected 2 kept slugs, got %v", repo.kept)
	}
}

func TestSyncPostsTaskEmptyDirectoryClearsIndex(t *testing.T) {
	repo := newFakePostRepo()
	repo.posts["gone"] = database.Post{Slug: "gone"}

	task := NewSyncPostsTask(&fakeLoader{}, repo, nil)
	if err := task.Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(repo.posts) != 0 {
		t.Errorf("Expected empty index, got %d posts", len(repo.posts))
	}
}

func TestSyncPostsTaskErrors(t *testing.T) {
	loadErr := errors.New("disk on fire")
	task := NewSyncPostsTask(&fakeLoader{err: loadErr}, newFakePostRepo(), nil)

	err := task.Execute(context.Background())
	if !errors.Is(err, loadErr) {
		t.Errorf("Expected wrapped loader error, got: %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "failed to load posts") {
		t.Errorf("Expected context in error message, got: %v", err)
	}

	repo := newFakePostRepo()
	repo.deleteErr = errors.New("locked")
	task = NewSyncPostsTask(&fakeLoader{}, repo, nil)
	if err := task.Execute(context.Background()); err == nil {
		t.Error("Expected delete error to propagate")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	task = NewSyncPostsTask(&fakeLoader{}, newFakePostRepo(), nil)
	if err := task.Execute(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestSchedulerEnqueueTaskQueueFull(t *testing.T) {
	s := NewScheduler(&fakeLoader{}, newFakePostRepo(), nil, time.Hour, 1)

	for i := 0; i < taskQueueSize; i++ {
		if _, err := s.EnqueueSync(); err != nil {
			t.Fatalf("Expected enqueue %d to succeed, got: %v", i, err)
		}
	}

	_, err := s.EnqueueSync()
	if err == nil || err.Error() != "task queue is full" {
		t.Errorf("Expected 'task queue is full', got: %v", err)
	}

	s.Stop()

	if _, err := s.EnqueueSync(); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled after stop, got: %v", err)
	}
}

func TestSchedulerRunsStartupSync(t *testing.T) {
	repo := newFakePostRepo()
	loader := &fakeLoader{posts: []content.Post{contentPost("hello", "h1")}}

	s := NewScheduler(loader, repo, nil, time.Hour, 2)
	s.Start()
	defer s.Stop()

	select {
	case slug := <-repo.upserted:
		if slug != "hello" {
			t.Errorf("Expected 'hello' to be synced, got '%s'", slug)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for startup sync")
	}
}

type countingInvalidator struct {
	purges int
}

func (c *countingInvalidator) Purge(ctx context.Context) (int64, error) {
	c.purges++
	return 1, nil
}

func TestSyncPostsTaskPurgesCacheOnlyOnChange(t *testing.T) {
	repo := newFakePostRepo()
	invalidator := &countingInvalidator{}
	loader := &fakeLoader{posts: []content.Post{contentPost("hello", "h1")}}

	if err := NewSyncPostsTask(loader, repo, invalidator).Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if invalidator.purges != 1 {
		t.Errorf("Expected 1 purge after first sync, got %d", invalidator.purges)
	}

	if err := NewSyncPostsTask(loader, repo, invalidator).Execute(context.Background()); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if invalidator.purges != 1 {
		t.Errorf("Expected no purge for an unchanged sync, got %d", invalidator.purges)
	}
}
