package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"
)

type GeneratorInterface interface {
	Run(feedConfig Config, items []Item) (string, error)
}

var _ GeneratorInterface = (*Generator)(nil)

// Builder produces the site feed from a fixed channel config and a lazily
// resolved item source.
type Builder struct {
	config    Config
	site      *url.URL
	source    ItemSource
	generator GeneratorInterface
}

type Result struct {
	XML       string
	ItemCount int
	Duration  time.Duration
}

func NewBuilder(feedConfig Config, source ItemSource, generator GeneratorInterface) (*Builder, error) {
	if source == nil {
		return nil, fmt.Errorf("feed item source is nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("feed generator is nil")
	}

	site, err := parseSite(feedConfig.Site)
	if err != nil {
		return nil, err
	}
	feedConfig.Site = strings.TrimRight(site.String(), "/")

	return &Builder{
		config:    feedConfig,
		site:      site,
		source:    source,
		generator: generator,
	}, nil
}

func (b *Builder) Config() Config {
	return b.config
}

func (b *Builder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	items, err := b.source.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve feed items: %w", err)
	}

	normalized := make([]Item, 0, len(items))
	for _, item := range items {
		link, err := b.resolveLink(item.Link)
		if err != nil {
			return nil, fmt.Errorf("invalid link for item %q: %w", item.Title, err)
		}
		item.Link = link
		normalized = append(normalized, item)
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		if !normalized[i].PubDate.Equal(normalized[j].PubDate) {
			return normalized[i].PubDate.After(normalized[j].PubDate)
		}
		return normalized[i].Link < normalized[j].Link
	})

	xml, err := b.generator.Run(b.config, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to generate feed: %w", err)
	}

	duration := time.Since(start)
	slog.Debug("Feed built", "items", len(normalized), "duration", duration)

	return &Result{
		XML:       xml,
		ItemCount: len(normalized),
		Duration:  duration,
	}, nil
}

func (b *Builder) resolveLink(link string) (string, error) {
	if link == "" {
		return "", nil
	}
	ref, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	return b.site.ResolveReference(ref).String(), nil
}

func parseSite(site string) (*url.URL, error) {
	if site == "" {
		return nil, fmt.Errorf("site URL is required")
	}
	u, err := url.Parse(site)
	if err != nil {
		return nil, fmt.Errorf("invalid site URL %q: %w", site, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("site URL %q must be absolute", site)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}
