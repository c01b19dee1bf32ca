package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/benbrougher/benbrougher-tech/app/feed"
)

var ErrPostNotFound = errors.New("post not found")

var _ PostRepository = (*SQLPostRepository)(nil)

const postColumns = `id, slug, title, description, content_html, source_path, content_hash,
	author, tags, pub_date, draft, created_at, updated_at`

// SQLPostRepository handles database operations for posts
type SQLPostRepository struct {
	db  *DB
	now func() time.Time
}

func NewPostRepository(db *DB) *SQLPostRepository {
	return &SQLPostRepository{db: db, now: time.Now}
}

// UpsertPost inserts a new post or updates an existing one with the same slug.
// It reports whether anything was written; a post whose content hash is
// unchanged is left alone.
func (r *SQLPostRepository) UpsertPost(ctx context.Context, post Post) (bool, error) {
	if post.Slug == "" {
		return false, fmt.Errorf("post slug is required")
	}

	var existingID, existingHash string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, content_hash FROM posts WHERE slug = ?`, post.Slug).Scan(&existingID, &existingHash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to check existing post: %w", err)
	}

	if existingID != "" && existingHash == post.ContentHash {
		return false, nil
	}

	tags, err := json.Marshal(lo.Ternary(post.Tags == nil, []string{}, post.Tags))
	if err != nil {
		return false, fmt.Errorf("failed to encode tags: %w", err)
	}

	now := formatTime(r.now())

	if existingID != "" {
		_, err = r.db.ExecContext(ctx, `
			UPDATE posts
			SET title = ?, description = ?, content_html = ?, source_path = ?, content_hash = ?,
			    author = ?, tags = ?, pub_date = ?, pub_ts = ?, draft = ?, updated_at = ?
			WHERE id = ?
		`, post.Title, post.Description, post.ContentHTML, post.SourcePath, post.ContentHash,
			post.Author, string(tags), formatTime(post.PubDate), post.PubDate.Unix(), post.Draft, now,
			existingID)
		if err != nil {
			return false, fmt.Errorf("failed to update post: %w", err)
		}
		return true, nil
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO posts (id, slug, title, description, content_html, source_path, content_hash,
		                   author, tags, pub_date, pub_ts, draft, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), post.Slug, post.Title, post.Description, post.ContentHTML, post.SourcePath,
		post.ContentHash, post.Author, string(tags), formatTime(post.PubDate), post.PubDate.Unix(),
		post.Draft, now, now)
	if err != nil {
		return false, fmt.Errorf("failed to insert post: %w", err)
	}

	return true, nil
}

// GetPost returns ErrPostNotFound when no post has the slug.
func (r *SQLPostRepository) GetPost(ctx context.Context, slug string) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)

	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %q: %w", slug, err)
	}

	return post, nil
}

// GetPublishedPosts returns non-draft posts, newest first. A limit <= 0 means no limit.
func (r *SQLPostRepository) GetPublishedPosts(ctx context.Context, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE draft = 0
		ORDER BY pub_ts DESC, slug ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get published posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// GetAllPosts returns every post including drafts
func (r *SQLPostRepository) GetAllPosts(ctx context.Context) ([]Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		ORDER BY pub_ts DESC, slug ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func (r *SQLPostRepository) GetPostCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}

func (r *SQLPostRepository) GetPostStats(ctx context.Context) (PostStats, error) {
	var stats PostStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN draft = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN draft = 1 THEN 1 ELSE 0 END), 0)
		FROM posts
	`).Scan(&stats.Total, &stats.Published, &stats.Drafts)
	if err != nil {
		return PostStats{}, fmt.Errorf("failed to get post stats: %w", err)
	}
	return stats, nil
}

// DeletePostsNotIn removes posts whose slug is not in slugs. An empty slice
// removes everything.
func (r *SQLPostRepository) DeletePostsNotIn(ctx context.Context, slugs []string) (int64, error) {
	query := "DELETE FROM posts"
	args := make([]any, 0, len(slugs))
	if len(slugs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(slugs)), ", ")
		query += " WHERE slug NOT IN (" + placeholders + ")"
		for _, slug := range slugs {
			args = append(args, slug)
		}
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale posts: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted posts: %w", err)
	}

	return deleted, nil
}

// Items serves published posts to the feed builder.
func (r *SQLPostRepository) Items(ctx context.Context) ([]feed.Item, error) {
	posts, err := r.GetPublishedPosts(ctx, 0)
	if err != nil {
		return nil, err
	}

	return lo.Map(posts, func(p Post, _ int) feed.Item {
		return feed.Item{
			Title:       p.Title,
			Link:        "posts/" + p.Slug,
			Description: p.Description,
			PubDate:     p.PubDate,
			Author:      p.Author,
			Categories:  p.Tags,
		}
	}), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var (
		post                          Post
		tags                          string
		pubDate, createdAt, updatedAt string
	)

	err := row.Scan(
		&post.ID, &post.Slug, &post.Title, &post.Description, &post.ContentHTML,
		&post.SourcePath, &post.ContentHash, &post.Author, &tags, &pubDate,
		&post.Draft, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &post.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	if post.PubDate, err = parseTime(pubDate); err != nil {
		return nil, err
	}
	if post.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if post.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &post, nil
}

func scanPosts(rows *sql.Rows) ([]Post, error) {
	posts := []Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value, err)
	}
	return t, nil
}
