package feed

import (
	"context"
	"time"
)

// Config is the channel-level description of the feed. CustomData is an XML
// fragment written verbatim inside <channel>.
type Config struct {
	Title       string
	Description string
	Site        string
	CustomData  string
}

type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	PubDate     time.Time
	Author      string
	Categories  []string
}

// ItemSource resolves the documents that make up the feed. It is called once
// per build.
type ItemSource interface {
	Items(ctx context.Context) ([]Item, error)
}

// ItemSourceFunc adapts a plain function to ItemSource.
type ItemSourceFunc func(ctx context.Context) ([]Item, error)

func (f ItemSourceFunc) Items(ctx context.Context) ([]Item, error) {
	return f(ctx)
}
