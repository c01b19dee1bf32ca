package content

import (
	"time"
)

// Meta is the parsed front matter of a post.
type Meta struct {
	Title       string
	Description string
	PubDate     time.Time
	Draft       bool
	Tags        []string
	Author      string
}

// rawMeta mirrors the YAML keys. Dates stay strings so that the looser
// formats used by older posts can be parsed.
type rawMeta struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	PubDate     string   `yaml:"pubDate"`
	Date        string   `yaml:"date"`
	Draft       bool     `yaml:"draft"`
	Tags        []string `yaml:"tags"`
	Author      string   `yaml:"author"`
}

type Post struct {
	Slug        string
	SourcePath  string
	Title       string
	Description string
	ContentHTML string
	PubDate     time.Time
	Draft       bool
	Tags        []string
	Author      string
	ContentHash string
}

// Link is the post page URL relative to the site root. It has no leading
// slash so that resolving it against the site URL keeps any path prefix.
func (p Post) Link() string {
	return "posts/" + p.Slug
}
