package api

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/benbrougher/benbrougher-tech/app/cache"
	"github.com/benbrougher/benbrougher-tech/app/database"
	"github.com/benbrougher/benbrougher-tech/app/site"
	"github.com/benbrougher/benbrougher-tech/app/tasks"
)

type healthChecker interface {
	Health(ctx context.Context) map[string]interface{}
}

const (
	htmlContentType = "text/html; charset=utf-8"
	rssContentType  = "application/rss+xml; charset=utf-8"
)

func NewHandler(renderer *site.Renderer, postRepo database.PostRepository,
	feedBuilder FeedBuilderInterface, scheduler tasks.TaskSchedulerInterface, version string) *Handler {
	return &Handler{
		renderer:    renderer,
		postRepo:    postRepo,
		feedBuilder: feedBuilder,
		scheduler:   scheduler,
		version:     version,
	}
}

// WithFeedCache serves /rss.xml from feedCache, rebuilding it after ttl.
func (h *Handler) WithFeedCache(feedCache cache.FeedCacheInterface, ttl time.Duration) *Handler {
	h.feedCache = feedCache
	h.cacheTTL = ttl
	return h
}

func (h *Handler) GetIndex(c *gin.Context) {
	posts, err := h.postRepo.GetPublishedPosts(c.Request.Context(), h.renderer.Config().IndexPostLimit)
	if err != nil {
		slog.Error("Database error", "operation", "get_published_posts", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	page, err := h.renderer.IndexPage(lo.Map(posts, func(p database.Post, _ int) site.PostView {
		return postView(p)
	}))
	if err != nil {
		slog.Error("Page render error", "page", "index", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, htmlContentType, page)
}

func (h *Handler) GetArticles(c *gin.Context) {
	page, err := h.renderer.ArticlesPage()
	if err != nil {
		slog.Error("Page render error", "page", "articles", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, htmlContentType, page)
}

func (h *Handler) GetPost(c *gin.Context) {
	slug := c.Param("slug")

	post, err := h.postRepo.GetPost(c.Request.Context(), slug)
	if errors.Is(err, database.ErrPostNotFound) || (err == nil && post.Draft) {
		h.NotFound(c)
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "get_post", "slug", slug, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	page, err := h.renderer.PostPage(postView(*post))
	if err != nil {
		slog.Error("Page render error", "page", "post", "slug", slug, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, htmlContentType, page)
}

func (h *Handler) NotFound(c *gin.Context) {
	page, err := h.renderer.NotFoundPage(c.Request.URL.Path)
	if err != nil {
		slog.Error("Page render error", "page", "not_found", "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	c.Data(http.StatusNotFound, htmlContentType, page)
}

func (h *Handler) GetFeed(c *gin.Context) {
	ctx := c.Request.Context()
	siteURL := h.renderer.Config().SiteURL

	if h.feedCache != nil {
		entry, ok, err := h.feedCache.GetFeed(ctx, siteURL)
		if err != nil {
			slog.Warn("Feed cache read failed", "error", err)
		}
		if ok {
			c.Header("X-Feed-Items", strconv.Itoa(entry.ItemCount))
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, rssContentType, []byte(entry.XML))
			return
		}
	}

	result, err := h.feedBuilder.Run(ctx)
	if err != nil {
		feedBuildErrors.Inc()
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	feedBuildDuration.Observe(result.Duration.Seconds())

	if h.feedCache != nil {
		entry := cache.FeedEntry{XML: result.XML, ItemCount: result.ItemCount}
		if err := h.feedCache.SetFeed(ctx, siteURL, entry, h.cacheTTL); err != nil {
			slog.Warn("Feed cache write failed", "error", err)
		}
		c.Header("X-Cache", "MISS")
	}

	c.Header("X-Feed-Items", strconv.Itoa(result.ItemCount))
	c.Data(http.StatusOK, rssContentType, []byte(result.XML))
}

func (h *Handler) GetHealth(c *gin.Context) {
	config := h.renderer.Config()

	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"config": map[string]interface{}{
			"title":       config.Title,
			"site_url":    config.SiteURL,
			"path_prefix": config.PathPrefix,
			"board_url":   config.BoardURL,
		},
	}

	if checker, ok := h.feedCache.(healthChecker); ok {
		health["cache"] = checker.Health(c.Request.Context())
	}

	if postCount, err := h.postRepo.GetPostCount(c.Request.Context()); err == nil {
		health["posts"] = postCount
	} else {
		slog.Warn("Failed to count posts for health check", "error", err)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListPosts(c *gin.Context) {
	ctx := c.Request.Context()

	posts, err := h.postRepo.GetAllPosts(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "get_all_posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	list := lo.Map(posts, func(p database.Post, _ int) map[string]interface{} {
		return map[string]interface{}{
			"id":          p.ID,
			"slug":        p.Slug,
			"title":       p.Title,
			"link":        h.renderer.Config().Path("/posts/" + p.Slug),
			"draft":       p.Draft,
			"tags":        p.Tags,
			"pub_date":    p.PubDate,
			"source_path": p.SourcePath,
			"updated_at":  p.UpdatedAt,
		}
	})

	response := map[string]interface{}{
		"posts": list,
		"total": len(list),
	}

	if stats, err := h.postRepo.GetPostStats(ctx); err == nil {
		response["stats"] = map[string]interface{}{
			"total":     stats.Total,
			"published": stats.Published,
			"drafts":    stats.Drafts,
		}
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) APISyncPosts(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Background sync is not running"})
		return
	}

	taskID, err := h.scheduler.EnqueueSync()
	if err != nil {
		slog.Error("Error enqueueing sync task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Post sync enqueued",
		"task": gin.H{
			"id":   taskID,
			"type": tasks.TaskTypeSyncPosts,
		},
	})
}

func postView(p database.Post) site.PostView {
	return site.PostView{
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		ContentHTML: template.HTML(p.ContentHTML),
		PubDate:     p.PubDate,
		Tags:        p.Tags,
	}
}
