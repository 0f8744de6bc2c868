package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MetricsCollector is the slice of monitoring.Collector the router mounts.
type MetricsCollector interface {
	Middleware() gin.HandlerFunc
	Handler() gin.HandlerFunc
}

type RouterConfig struct {
	GinMode string
	Version string
}

func NewRouter(cfg RouterConfig, handler *Handler, webhook *WebhookHandler, metrics MetricsCollector, logger *zap.Logger) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	router := gin.New()
	router.Use(RequestID())
	router.Use(Logging(logger))
	router.Use(Recovery(logger))
	if metrics != nil {
		router.Use(metrics.Middleware())
		router.GET("/metrics", metrics.Handler())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "yt-analytics",
			"version": cfg.Version,
		})
	})

	yt := router.Group("/api/youtube", BearerCredential())
	{
		yt.GET("/report", handler.Report)
		yt.GET("/analytics", handler.Analytics)
		yt.GET("/video-analytics", handler.VideoAnalytics)
		yt.GET("/video-compare", handler.VideoCompare)
		yt.GET("/video-stats", handler.VideoStats)
		yt.GET("/analytics-summary", handler.AnalyticsSummary)
		yt.GET("/me", handler.Me)
		yt.GET("/channel", handler.Me)
		yt.GET("/videos", handler.Videos)
	}

	hook := router.Group("/api/webhook")
	{
		hook.GET("/youtube", webhook.Verify)
		hook.POST("/youtube", webhook.Notify)
	}

	return router
}
