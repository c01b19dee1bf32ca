package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbrougher/benbrougher-tech/app/api"
	"github.com/benbrougher/benbrougher-tech/app/build"
	"github.com/benbrougher/benbrougher-tech/app/cache"
	"github.com/benbrougher/benbrougher-tech/app/cfg"
	"github.com/benbrougher/benbrougher-tech/app/content"
	"github.com/benbrougher/benbrougher-tech/app/database"
	"github.com/benbrougher/benbrougher-tech/app/feed"
	"github.com/benbrougher/benbrougher-tech/app/site"
	"github.com/benbrougher/benbrougher-tech/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	if err := run(appCfg); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run(appCfg *cfg.Cfg) error {
	siteConfig, err := site.LoadConfig(appCfg.SiteConfig)
	if err != nil {
		return err
	}
	if appCfg.BaseUrl != "" {
		siteConfig.SiteURL = appCfg.BaseUrl
		if err := siteConfig.Validate(); err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}
	}

	renderer, err := site.NewRenderer(siteConfig)
	if err != nil {
		return err
	}

	generator := feed.NewGenerator(appCfg.Version)
	loader := content.NewLoader(appCfg.PostsDir, appCfg.PostsGlob)

	if appCfg.BuildMode() {
		slog.Info("Exporting static site", "posts_dir", loader.Dir(), "build_dir", appCfg.BuildDir)
		_, err := build.NewExporter(loader, content.NewGlobSource(loader), renderer, generator).Run(context.Background(), appCfg.BuildDir)
		return err
	}

	return serve(appCfg, siteConfig, renderer, generator, loader)
}

func serve(appCfg *cfg.Cfg, siteConfig *site.Config, renderer *site.Renderer, generator *feed.Generator, loader *content.Loader) error {
	slog.Info("Starting site server", "version", appCfg.Version, "site", siteConfig.SiteURL)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	postRepo := database.NewPostRepository(db)

	feedBuilder, err := feed.NewBuilder(siteConfig.FeedConfig(), postRepo, generator)
	if err != nil {
		return fmt.Errorf("invalid feed configuration: %w", err)
	}

	var (
		feedCache   cache.FeedCacheInterface
		invalidator cache.InvalidatorInterface
	)
	if appCfg.RedisAddr != "" {
		redisCache, err := cache.NewCache(context.Background(), appCfg.RedisAddr, "benbrougher-tech:")
		if err != nil {
			return err
		}
		defer redisCache.Close()

		feedCache, invalidator = redisCache, redisCache
	} else {
		slog.Info("Feed cache disabled (REDIS_ADDR not set)")
	}

	scheduler := tasks.NewScheduler(loader, postRepo, invalidator, appCfg.GetSchedulerInterval(), appCfg.WorkerCount)
	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.GetSchedulerInterval())
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(renderer, postRepo, feedBuilder, scheduler, appCfg.Version)
	if feedCache != nil {
		handler.WithFeedCache(feedCache, appCfg.GetCacheTTL())
	}
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
		slog.Error("Server error", "error", serveErr)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return serveErr
}
