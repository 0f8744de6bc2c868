package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kapu/yt-analytics-go/internal/api"
	"github.com/kapu/yt-analytics-go/internal/config"
	"github.com/kapu/yt-analytics-go/internal/constants"
	"github.com/kapu/yt-analytics-go/internal/monitoring"
	"github.com/kapu/yt-analytics-go/internal/service/report"
	"github.com/kapu/yt-analytics-go/internal/service/youtube"
	"github.com/kapu/yt-analytics-go/internal/util"
	"go.uber.org/zap"
)

// Container bundles the assembled services behind the HTTP surface.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Metrics   *monitoring.Collector
	YouTube   *youtube.Client
	Assembler *report.Assembler
	Router    *gin.Engine
}

// NewServer wraps the router in an http.Server using the configured port.
func (c *Container) NewServer() (*http.Server, error) {
	if c == nil || c.Router == nil {
		return nil, fmt.Errorf("router not initialized")
	}
	return &http.Server{
		Addr:         ":" + c.Config.Server.Port,
		Handler:      c.Router,
		ReadTimeout:  constants.ServerConfig.ReadTimeout,
		WriteTimeout: constants.ServerConfig.WriteTimeout,
		IdleTimeout:  constants.ServerConfig.IdleTimeout,
	}, nil
}

// Build wires config into the upstream client, the report assembler and the router.
// Nothing here opens a connection; every upstream call is made per request.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics := monitoring.NewCollector(constants.AppVersion)

	ytClient := youtube.NewClient(youtube.ClientConfig{
		FallbackChannelID: cfg.YouTube.FallbackChannelID,
		DataEndpoint:      cfg.YouTube.DataEndpoint,
		AnalyticsEndpoint: cfg.YouTube.AnalyticsEndpoint,
		Timeout:           cfg.YouTube.Timeout,
		Observer:          metrics,
	}, logger)

	assembler := report.NewAssembler(ytClient, ytClient, ytClient, report.Options{
		MaxEntities:       cfg.Report.MaxEntities,
		LookbackDays:      cfg.Report.LookbackDays,
		FanoutConcurrency: cfg.Report.FanoutConcurrency,
		Location:          util.LoadLocation(cfg.Report.Timezone),
		Prepare:           youtube.BuildMetricQuery,
		Recorder:          metrics,
	}, logger)

	handler := api.NewHandler(assembler, ytClient, logger)
	webhook := api.NewWebhookHandler(cfg.Webhook.VerifyToken, logger)
	if cfg.Webhook.VerifyToken == "" {
		logger.Warn("YOUTUBE_PUBSUB_VERIFY_TOKEN not set, webhook verification will be rejected")
	}

	router := api.NewRouter(api.RouterConfig{
		GinMode: cfg.Server.GinMode,
		Version: constants.AppVersion,
	}, handler, webhook, metrics, logger)

	logger.Info("Application services assembled",
		zap.Int("max_entities", cfg.Report.MaxEntities),
		zap.Int("lookback_days", cfg.Report.LookbackDays),
		zap.Int("fanout_concurrency", cfg.Report.FanoutConcurrency),
		zap.String("timezone", cfg.Report.Timezone))

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
		YouTube:   ytClient,
		Assembler: assembler,
		Router:    router,
	}, nil
}
