package content

import (
	"context"

	"github.com/samber/lo"

	"github.com/benbrougher/benbrougher-tech/app/feed"
)

var _ feed.ItemSource = (*GlobSource)(nil)

// GlobSource feeds posts read straight from disk into the feed builder.
// Drafts are skipped.
type GlobSource struct {
	loader *Loader
}

func NewGlobSource(loader *Loader) *GlobSource {
	return &GlobSource{loader: loader}
}

func (s *GlobSource) Items(ctx context.Context) ([]feed.Item, error) {
	posts, err := s.loader.Run(ctx)
	if err != nil {
		return nil, err
	}
	return FeedItems(posts), nil
}

// FeedItems converts published posts to feed items.
func FeedItems(posts []Post) []feed.Item {
	published := lo.Filter(posts, func(p Post, _ int) bool {
		return !p.Draft
	})
	return lo.Map(published, func(p Post, _ int) feed.Item {
		return feed.Item{
			Title:       p.Title,
			Link:        p.Link(),
			Description: p.Description,
			PubDate:     p.PubDate,
			Author:      p.Author,
			Categories:  p.Tags,
		}
	})
}
