package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":            "hello-world",
		"  leading and trailing ": "leading-and-trailing",
		"Crème Brûlée":           "creme-brulee",
		"C++ & Go: a comparison": "c-go-a-comparison",
		"already-a-slug":         "already-a-slug",
		"2020_year_in_review":    "2020-year-in-review",
		"---":                    "",
	}

	for input, expected := range cases {
		assert.Equal(t, expected, Slugify(input), "input %q", input)
	}
}

func TestSlugFromPath(t *testing.T) {
	assert.Equal(t, "my-first-post", SlugFromPath("/posts/My First Post.md"))
	assert.Equal(t, "notes", SlugFromPath("notes.markdown"))
}

func TestExcerpterTruncates(t *testing.T) {
	e := &Excerpter{maxLength: 20}

	assert.Equal(t, "short", e.truncate("short"))

	truncated := e.truncate("the quick brown fox jumps over the lazy dog")
	assert.True(t, strings.HasSuffix(truncated, "…"))
	assert.Equal(t, "the quick brown fox…", truncated)
}

func TestExcerpterEmptyContent(t *testing.T) {
	excerpt, err := NewExcerpter().Run("Title", "   ")
	assert.NoError(t, err)
	assert.Empty(t, excerpt)
}
