package build

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"

	"github.com/benbrougher/benbrougher-tech/app/content"
	"github.com/benbrougher/benbrougher-tech/app/feed"
	"github.com/benbrougher/benbrougher-tech/app/site"
)

type PostLoader interface {
	Run(ctx context.Context) ([]content.Post, error)
}

// Summary describes a finished export.
type Summary struct {
	Files     []string
	Posts     int
	FeedItems int
	Duration  time.Duration
}

// Exporter writes every route of the site into a directory as static files.
// The feed is built from source, which resolves the document set on its own.
type Exporter struct {
	loader    PostLoader
	source    feed.ItemSource
	renderer  *site.Renderer
	generator feed.GeneratorInterface
}

func NewExporter(loader PostLoader, source feed.ItemSource, renderer *site.Renderer, generator feed.GeneratorInterface) *Exporter {
	return &Exporter{
		loader:    loader,
		source:    source,
		renderer:  renderer,
		generator: generator,
	}
}

func (e *Exporter) Run(ctx context.Context, outDir string) (*Summary, error) {
	start := time.Now()

	if outDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	posts, err := e.loader.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	published := lo.Filter(posts, func(p content.Post, _ int) bool { return !p.Draft })
	views := lo.Map(published, func(p content.Post, _ int) site.PostView { return postView(p) })

	summary := &Summary{Posts: len(published)}

	write := func(rel string, data []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(outDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}

		slog.Debug("Wrote file", "path", path, "bytes", len(data))
		summary.Files = append(summary.Files, rel)
		return nil
	}

	indexViews := views
	if limit := e.renderer.Config().IndexPostLimit; limit > 0 && len(indexViews) > limit {
		indexViews = indexViews[:limit]
	}

	index, err := e.renderer.IndexPage(indexViews)
	if err != nil {
		return nil, err
	}
	if err := write("index.html", index); err != nil {
		return nil, err
	}

	articles, err := e.renderer.ArticlesPage()
	if err != nil {
		return nil, err
	}
	if err := write("articles/index.html", articles); err != nil {
		return nil, err
	}

	for _, view := range views {
		page, err := e.renderer.PostPage(view)
		if err != nil {
			return nil, err
		}
		if err := write("posts/"+view.Slug+"/index.html", page); err != nil {
			return nil, err
		}
	}

	notFound, err := e.renderer.NotFoundPage("/404.html")
	if err != nil {
		return nil, err
	}
	if err := write("404.html", notFound); err != nil {
		return nil, err
	}

	builder, err := feed.NewBuilder(e.renderer.Config().FeedConfig(), e.source, e.generator)
	if err != nil {
		return nil, fmt.Errorf("invalid feed configuration: %w", err)
	}

	result, err := builder.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := write("rss.xml", []byte(result.XML)); err != nil {
		return nil, err
	}
	summary.FeedItems = result.ItemCount

	summary.Duration = time.Since(start)
	slog.Info("Static export completed",
		"dir", outDir,
		"files", len(summary.Files),
		"posts", summary.Posts,
		"feed_items", summary.FeedItems,
		"duration", summary.Duration)

	return summary, nil
}

func postView(p content.Post) site.PostView {
	return site.PostView{
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		ContentHTML: template.HTML(p.ContentHTML),
		PubDate:     p.PubDate,
		Tags:        p.Tags,
	}
}
