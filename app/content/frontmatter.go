package content

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("content: missing frontmatter")
	// ErrMalformedFrontMatter indicates the closing fence was not found.
	ErrMalformedFrontMatter = errors.New("content: malformed frontmatter")
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 02 2006",
	"Jan 2 2006",
	"January 2, 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseFrontMatter splits a document that starts with `---` YAML fences into
// its metadata and markdown body.
func ParseFrontMatter(data []byte) (Meta, []byte, error) {
	normalized := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	normalized = bytes.TrimPrefix(normalized, []byte("\ufeff"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Meta{}, nil, ErrMissingFrontMatter
	}

	var metaBytes, body []byte
	rest := normalized[4:]
	if bytes.HasPrefix(rest, []byte("---")) {
		// empty block
		body = rest[3:]
	} else {
		parts := bytes.SplitN(rest, []byte("\n---"), 2)
		if len(parts) < 2 {
			return Meta{}, nil, ErrMalformedFrontMatter
		}
		metaBytes = parts[0]
		body = parts[1]
	}
	if len(body) > 0 && body[0] != '\n' {
		return Meta{}, nil, ErrMalformedFrontMatter
	}
	body = bytes.TrimPrefix(body, []byte("\n"))

	var raw rawMeta
	if err := yaml.Unmarshal(metaBytes, &raw); err != nil {
		return Meta{}, nil, fmt.Errorf("content: parse frontmatter: %w", err)
	}

	meta := Meta{
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		Draft:       raw.Draft,
		Tags:        raw.Tags,
		Author:      strings.TrimSpace(raw.Author),
	}

	if dateValue := cmp.Or(strings.TrimSpace(raw.PubDate), strings.TrimSpace(raw.Date)); dateValue != "" {
		pubDate, err := ParseDate(dateValue)
		if err != nil {
			return Meta{}, nil, fmt.Errorf("content: parse pubDate: %w", err)
		}
		meta.PubDate = pubDate
	}

	return meta, body, nil
}

// ParseDate accepts the date formats found in post front matter. Dates
// without a zone are read in time.Local.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
