package content

import (
	"fmt"
	"html"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
)

const excerptLength = 200

type Excerpter struct {
	maxLength int
}

func NewExcerpter() *Excerpter {
	return &Excerpter{maxLength: excerptLength}
}

// Run derives a plain-text summary from rendered post HTML.
func (e *Excerpter) Run(title, contentHTML string) (string, error) {
	if strings.TrimSpace(contentHTML) == "" {
		return "", nil
	}

	page := fmt.Sprintf("<html><head><title>%s</title></head><body><article>%s</article></body></html>",
		html.EscapeString(title), contentHTML)

	article, err := readability.FromReader(strings.NewReader(page), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract excerpt: %w", err)
	}

	excerpt := strings.TrimSpace(article.Excerpt)
	if excerpt == "" {
		excerpt = strings.TrimSpace(article.TextContent)
	}

	slog.Debug("Excerpt extracted", "title", title, "length", len(excerpt))

	return e.truncate(strings.Join(strings.Fields(excerpt), " ")), nil
}

func (e *Excerpter) truncate(s string) string {
	if utf8.RuneCountInString(s) <= e.maxLength {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:e.maxLength])
	if i := strings.LastIndex(cut, " "); i > e.maxLength/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
