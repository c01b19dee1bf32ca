package database

import (
	"time"
)

type Post struct {
	ID          string // Database UUID
	Slug        string // Derived from the source file name
	Title       string
	Description string
	ContentHTML string
	SourcePath  string
	ContentHash string // sha256 of the source file, used to skip unchanged posts
	Author      string
	Tags        []string
	PubDate     time.Time
	Draft       bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PostStats struct {
	Total     int
	Published int
	Drafts    int
}
