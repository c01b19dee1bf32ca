package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbrougher/benbrougher-tech/app/content"
	"github.com/benbrougher/benbrougher-tech/app/feed"
	"github.com/benbrougher/benbrougher-tech/app/site"
)

func newTestExporter(t *testing.T, postsDir string) *Exporter {
	t.Helper()

	config := site.DefaultConfig()
	require.NoError(t, config.Validate())
	renderer, err := site.NewRenderer(config)
	require.NoError(t, err)

	loader := content.NewLoader(postsDir, "*.md")
	return NewExporter(loader, content.NewGlobSource(loader), renderer, feed.NewGenerator("test"))
}

func writePost(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestExporterWritesEveryRoute(t *testing.T) {
	postsDir := t.TempDir()
	writePost(t, postsDir, "hello-world.md", "---\ntitle: Hello World\npubDate: 2023-02-01\n---\nHello *there*.\n")
	writePost(t, postsDir, "compilers.md", "---\ntitle: Compilers\ndescription: Parsing things\npubDate: 2023-05-01\n---\nTokens.\n")
	writePost(t, postsDir, "wip.md", "---\ntitle: Work in Progress\ndraft: true\npubDate: 2024-01-01\n---\nNot yet.\n")

	outDir := filepath.Join(t.TempDir(), "public")
	summary, err := newTestExporter(t, postsDir).Run(context.Background(), outDir)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Posts)
	assert.Equal(t, 2, summary.FeedItems)
	assert.ElementsMatch(t, []string{
		"index.html",
		"articles/index.html",
		"posts/hello-world/index.html",
		"posts/compilers/index.html",
		"404.html",
		"rss.xml",
	}, summary.Files)

	index := readFile(t, filepath.Join(outDir, "index.html"))
	assert.Contains(t, index, "<h1")
	assert.Contains(t, index, "Hello World")
	assert.NotContains(t, index, "Work in Progress")

	articles := readFile(t, filepath.Join(outDir, "articles", "index.html"))
	assert.Contains(t, articles, `id="trello-board"`)

	post := readFile(t, filepath.Join(outDir, "posts", "hello-world", "index.html"))
	assert.Contains(t, post, "<em>there</em>")

	assert.NoFileExists(t, filepath.Join(outDir, "posts", "wip", "index.html"))

	parsed, err := gofeed.NewParser().ParseString(readFile(t, filepath.Join(outDir, "rss.xml")))
	require.NoError(t, err)
	require.Len(t, parsed.Items, 2)
	assert.Equal(t, "Compilers", parsed.Items[0].Title)
	assert.Equal(t, "https://benbrougher.tech/posts/compilers", parsed.Items[0].Link)
}

func TestExporterEmptyPosts(t *testing.T) {
	outDir := t.TempDir()
	summary, err := newTestExporter(t, filepath.Join(t.TempDir(), "missing")).Run(context.Background(), outDir)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Posts)
	assert.Contains(t, readFile(t, filepath.Join(outDir, "index.html")), "No blog posts found.")

	parsed, err := gofeed.NewParser().ParseString(readFile(t, filepath.Join(outDir, "rss.xml")))
	require.NoError(t, err)
	assert.Empty(t, parsed.Items)
}

func TestExporterStopsOnBrokenPost(t *testing.T) {
	postsDir := t.TempDir()
	writePost(t, postsDir, "broken.md", "no front matter\n")

	outDir := filepath.Join(t.TempDir(), "public")
	_, err := newTestExporter(t, postsDir).Run(context.Background(), outDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, content.ErrMissingFrontMatter)
	assert.NoFileExists(t, filepath.Join(outDir, "index.html"))
}

func TestExporterRequiresOutputDir(t *testing.T) {
	_, err := newTestExporter(t, t.TempDir()).Run(context.Background(), "")
	assert.Error(t, err)
}

func TestExporterHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestExporter(t, t.TempDir()).Run(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
