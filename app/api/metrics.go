package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "site_http_requests_total",
		Help: "Requests served by route and status",
	}, []string{"route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "site_http_request_duration_seconds",
		Help:    "Request latency by route",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
	}, []string{"route"})

	feedBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "site_feed_build_duration_seconds",
		Help:    "Time spent building the RSS feed",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
	})

	feedBuildErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "site_feed_build_errors_total",
		Help: "RSS feed builds that failed",
	})
)

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		requestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
