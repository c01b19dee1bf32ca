package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSiteConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "benbrougher.tech", config.Title)
	assert.Equal(t, "https://benbrougher.tech", config.SiteURL)
	assert.Equal(t, "en-us", config.Language)
	assert.Equal(t, "https://trello.com/b/qo1G8apM", config.BoardURL)
	assert.Equal(t, "/", config.RootPath())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeSiteConfig(t, `
title: Example
site_url: https://example.com/
path_prefix: /blog/
style:
  primary_accent: "#123456"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Example", config.Title)
	assert.Equal(t, "https://example.com", config.SiteURL)
	assert.Equal(t, "/blog", config.PathPrefix)
	assert.Equal(t, "/blog/", config.RootPath())
	assert.Equal(t, "https://example.com/blog/rss.xml", config.RSSURL())
	assert.Equal(t, "#123456", config.Style.PrimaryAccent)
	assert.Equal(t, DefaultStyleValues().PrimaryBackground, config.Style.PrimaryBackground)
	assert.Equal(t, "https://trello.com/b/qo1G8apM", config.BoardURL)
}

func TestLoadConfigRejectsInvalidDefinitions(t *testing.T) {
	cases := map[string]string{
		"relative site":  "site_url: /relative\n",
		"empty title":    "title: \"\"\n",
		"bad prefix":     "path_prefix: blog\n",
		"negative limit": "index_post_limit: -1\n",
		"malformed yaml": "title: [unclosed\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeSiteConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestFeedConfig(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())

	fc := config.FeedConfig()
	assert.Equal(t, "benbrougher.tech", fc.Title)
	assert.Equal(t, "https://benbrougher.tech", fc.Site)
	assert.Equal(t, "<language>en-us</language>", fc.CustomData)
	assert.NotEmpty(t, fc.Description)

	config.Language = ""
	assert.Empty(t, config.FeedConfig().CustomData)
}

func TestRhythmAndScale(t *testing.T) {
	assert.Equal(t, "1.75rem", Rhythm(1))
	assert.Equal(t, "2.625rem", Rhythm(1.5))
	assert.Equal(t, "1rem", Scale(0)[0].Value)
	assert.Equal(t, "2rem", Scale(2)[0].Value)
	assert.Equal(t, "font-size: 1rem; line-height: 1.75", string(Scale(0).CSS()))
}
