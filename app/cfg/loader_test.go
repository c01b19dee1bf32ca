package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestLoadArgs(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--port", "9090",
		"--posts-dir", "/srv/posts",
		"--site-config", "/srv/site.yml",
		"--db-path", "/srv/site.db",
		"--base-url", "https://example.com",
		"--worker-count", "3",
		"--scheduler-interval", "15",
		"--api-key", "secret",
		"--debug",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected config, got nil")
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.PostsDir != "/srv/posts" {
		t.Errorf("Expected posts dir '/srv/posts', got '%s'", cfg.PostsDir)
	}
	if cfg.SiteConfig != "/srv/site.yml" {
		t.Errorf("Expected site config '/srv/site.yml', got '%s'", cfg.SiteConfig)
	}
	if cfg.DBPath != "/srv/site.db" {
		t.Errorf("Expected db path '/srv/site.db', got '%s'", cfg.DBPath)
	}
	if cfg.BaseUrl != "https://example.com" {
		t.Errorf("Expected base URL 'https://example.com', got '%s'", cfg.BaseUrl)
	}
	if cfg.WorkerCount != 3 {
		t.Errorf("Expected worker count 3, got %d", cfg.WorkerCount)
	}
	if cfg.GetSchedulerInterval() != 15*time.Second {
		t.Errorf("Expected scheduler interval 15s, got %v", cfg.GetSchedulerInterval())
	}
	if cfg.APIAccessKey != "secret" {
		t.Errorf("Expected API key 'secret', got '%s'", cfg.APIAccessKey)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.BuildMode() {
		t.Error("Expected build mode to be disabled without --build-dir")
	}
}

func TestLoadArgsBuildMode(t *testing.T) {
	cfg, err := LoadArgs([]string{"--build-dir", "/tmp/public"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !cfg.BuildMode() {
		t.Error("Expected build mode to be enabled")
	}
	if cfg.BuildDir != "/tmp/public" {
		t.Errorf("Expected build dir '/tmp/public', got '%s'", cfg.BuildDir)
	}
}

func TestLoadArgsRejectsInvalidWorkerCount(t *testing.T) {
	_, err := LoadArgs([]string{"--worker-count", "0"})
	if err == nil {
		t.Error("Expected error for zero worker count")
	}
}

func TestLoadArgsUnknownFlag(t *testing.T) {
	_, err := LoadArgs([]string{"--no-such-flag"})
	if err == nil {
		t.Error("Expected error for unknown flag")
	}
}

func TestLoadArgsCache(t *testing.T) {
	cfg, err := LoadArgs([]string{"--redis-addr", "localhost:6379", "--cache-ttl", "45"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("Expected redis addr 'localhost:6379', got '%s'", cfg.RedisAddr)
	}
	if cfg.GetCacheTTL() != 45*time.Second {
		t.Errorf("Expected cache TTL 45s, got %v", cfg.GetCacheTTL())
	}

	if _, err := LoadArgs([]string{"--cache-ttl", "-1"}); err == nil {
		t.Error("Expected error for negative cache TTL")
	}
}
