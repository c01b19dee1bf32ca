package site

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/benbrougher/benbrougher-tech/app/feed"
)

type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

// Config is the site definition loaded from site.yml.
type Config struct {
	Title            string      `yaml:"title"`
	Description      string      `yaml:"description"`
	SiteURL          string      `yaml:"site_url"`
	PathPrefix       string      `yaml:"path_prefix"`
	Language         string      `yaml:"language"`
	Author           string      `yaml:"author"`
	BoardURL         string      `yaml:"board_url"`
	BoardScriptURL   string      `yaml:"board_script_url"`
	KnowledgeBaseURL string      `yaml:"knowledge_base_url"`
	BuiltWith        Link        `yaml:"built_with"`
	IndexPostLimit   int         `yaml:"index_post_limit"`
	Style            StyleValues `yaml:"style"`
}

func DefaultConfig() *Config {
	return &Config{
		Title: "benbrougher.tech",
		Description: "Written by Ben Brougher who lives and works in the Pacific Northwest developing solutions to problems " +
			"(usually with software). He graduated 2020 from Eastern Washington University as a Computer Science Major, " +
			"Bachelor of Science (BS), and works engineering and developing software solutions in the enterprise " +
			"telecommunications industry.",
		SiteURL:          "https://benbrougher.tech",
		Language:         "en-us",
		Author:           "Ben Brougher",
		BoardURL:         "https://trello.com/b/qo1G8apM",
		BoardScriptURL:   "https://p.trellocdn.com/embed.min.js",
		KnowledgeBaseURL: "https://www.notion.so/msyke/Knowledge-Base-c10ec00792df48c48a044d01d4348d88",
		BuiltWith:        Link{Label: "Go", URL: "https://go.dev"},
		Style:            DefaultStyleValues(),
	}
}

// LoadConfig reads the site definition at path over the defaults. A missing
// file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		slog.Debug("Site definition not found, using defaults", "path", path)
		return config, config.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read site definition: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse site definition: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid site definition %s: %w", path, err)
	}

	return config, nil
}

func (c *Config) Validate() error {
	c.SiteURL = strings.TrimRight(c.SiteURL, "/")
	c.PathPrefix = strings.TrimRight(c.PathPrefix, "/")

	if c.Title == "" {
		return fmt.Errorf("title is required")
	}
	if c.SiteURL == "" {
		return fmt.Errorf("site_url is required")
	}
	u, err := url.Parse(c.SiteURL)
	if err != nil {
		return fmt.Errorf("invalid site_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site_url must be absolute: %s", c.SiteURL)
	}
	if c.PathPrefix != "" && !strings.HasPrefix(c.PathPrefix, "/") {
		return fmt.Errorf("path_prefix must start with '/': %s", c.PathPrefix)
	}
	if c.BoardURL == "" {
		return fmt.Errorf("board_url is required")
	}
	if c.IndexPostLimit < 0 {
		return fmt.Errorf("index_post_limit must be non-negative")
	}
	return nil
}

// RootPath is the route that renders the large heading.
func (c *Config) RootPath() string {
	return c.Path("/")
}

// Path prefixes a site-absolute path with the configured path prefix.
func (c *Config) Path(p string) string {
	return c.PathPrefix + p
}

func (c *Config) RSSURL() string {
	return c.SiteURL + c.PathPrefix + "/rss.xml"
}

// FeedConfig is the channel description for the site feed.
func (c *Config) FeedConfig() feed.Config {
	var custom string
	if c.Language != "" {
		var buf bytes.Buffer
		buf.WriteString("<language>")
		xml.EscapeText(&buf, []byte(c.Language))
		buf.WriteString("</language>")
		custom = buf.String()
	}

	return feed.Config{
		Title:       c.Title,
		Description: c.Description,
		Site:        c.SiteURL + c.PathPrefix,
		CustomData:  custom,
	}
}
