package content

import (
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const DefaultPattern = "*.md"

// Loader reads every post matching pattern inside dir.
type Loader struct {
	dir       string
	pattern   string
	renderer  *Renderer
	excerpter *Excerpter
}

func NewLoader(dir, pattern string) *Loader {
	return &Loader{
		dir:       dir,
		pattern:   cmp.Or(pattern, DefaultPattern),
		renderer:  NewRenderer(),
		excerpter: NewExcerpter(),
	}
}

func (l *Loader) Dir() string {
	return l.dir
}

// Run loads all posts, newest first. A missing directory or a pattern that
// matches nothing yields an empty slice.
func (l *Loader) Run(ctx context.Context) ([]Post, error) {
	if _, err := os.Stat(l.dir); os.IsNotExist(err) {
		slog.Debug("Posts directory does not exist", "dir", l.dir)
		return []Post{}, nil
	}

	files, err := filepath.Glob(filepath.Join(l.dir, l.pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to match posts with %q: %w", l.pattern, err)
	}
	sort.Strings(files)

	posts := make([]Post, 0, len(files))
	seen := make(map[string]string, len(files))

	for _, file := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		post, err := l.LoadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		if other, ok := seen[post.Slug]; ok {
			return nil, fmt.Errorf("duplicate slug %q in %s and %s", post.Slug, other, file)
		}
		seen[post.Slug] = file

		posts = append(posts, *post)
	}

	SortNewestFirst(posts)

	return posts, nil
}

func (l *Loader) LoadFile(path string) (*Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	meta, body, err := ParseFrontMatter(data)
	if err != nil {
		return nil, err
	}

	slug := SlugFromPath(path)
	if slug == "" {
		return nil, fmt.Errorf("cannot derive slug from file name")
	}

	contentHTML, err := l.renderer.Run(body)
	if err != nil {
		return nil, err
	}

	title := cmp.Or(meta.Title, titleFromSlug(slug))

	description := meta.Description
	if description == "" {
		description, err = l.excerpter.Run(title, contentHTML)
		if err != nil {
			slog.Warn("Failed to derive description", "file", path, "error", err)
		}
	}

	hash := sha256.Sum256(data)

	return &Post{
		Slug:        slug,
		SourcePath:  path,
		Title:       title,
		Description: description,
		ContentHTML: contentHTML,
		PubDate:     meta.PubDate,
		Draft:       meta.Draft,
		Tags:        meta.Tags,
		Author:      meta.Author,
		ContentHash: hex.EncodeToString(hash[:]),
	}, nil
}

// SortNewestFirst orders posts by publication date, then slug.
func SortNewestFirst(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].PubDate.Equal(posts[j].PubDate) {
			return posts[i].PubDate.After(posts[j].PubDate)
		}
		return posts[i].Slug < posts[j].Slug
	})
}

func titleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w != "" {
			r, size := utf8.DecodeRuneInString(w)
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		}
	}
	return strings.Join(words, " ")
}
