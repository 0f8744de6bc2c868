package youtube

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kapu/yt-analytics-go/internal/constants"
	"github.com/kapu/yt-analytics-go/internal/util"
	"github.com/kapu/yt-analytics-go/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	ytanalytics "google.golang.org/api/youtubeanalytics/v2"
	ytdata "google.golang.org/api/youtube/v3"
)

// Observer receives one event per upstream call. Implemented by monitoring.Collector.
type Observer interface {
	ObserveUpstream(call, outcome string, duration time.Duration)
}

type ClientConfig struct {
	// FallbackChannelID is tried when the "mine" lookup returns no channel.
	FallbackChannelID string
	// DataEndpoint and AnalyticsEndpoint override the SDK base URLs when set.
	DataEndpoint      string
	AnalyticsEndpoint string
	Timeout           time.Duration
	// Transport is the base round tripper under the bearer token; nil uses http.DefaultTransport.
	Transport http.RoundTripper
	Observer  Observer
}

// Client talks to the YouTube Data and Analytics APIs with the bearer credential passed to each call.
// It holds no per-user state.
type Client struct {
	cfg    ClientConfig
	logger *zap.Logger
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.APIConfig.UpstreamTimeout
	}

	logger = util.OrNop(logger)
	logger.Info("YouTube client initialized",
		zap.Bool("fallback_channel", cfg.FallbackChannelID != ""),
		zap.String("data_endpoint", endpointOrDefault(cfg.DataEndpoint)),
		zap.String("analytics_endpoint", endpointOrDefault(cfg.AnalyticsEndpoint)),
		zap.Duration("timeout", cfg.Timeout))

	return &Client{
		cfg:    cfg,
		logger: logger,
	}
}

func endpointOrDefault(endpoint string) string {
	if endpoint == "" {
		return "default"
	}
	return endpoint
}

func (c *Client) httpClient(ctx context.Context, credential string) *http.Client {
	base := &http.Client{Transport: c.cfg.Transport}
	if base.Transport == nil {
		base.Transport = http.DefaultTransport
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: credential,
		TokenType:   "Bearer",
	})
	client := oauth2.NewClient(ctx, src)
	client.Timeout = c.cfg.Timeout
	return client
}

func (c *Client) options(ctx context.Context, credential, endpoint string) []option.ClientOption {
	opts := []option.ClientOption{option.WithHTTPClient(c.httpClient(ctx, credential))}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(trimSlash(endpoint)+"/"))
	}
	return opts
}

func (c *Client) dataService(ctx context.Context, credential string) (*ytdata.Service, error) {
	if credential == "" {
		return nil, errors.NewUnauthenticatedError()
	}
	svc, err := ytdata.NewService(ctx, c.options(ctx, credential, c.cfg.DataEndpoint)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube data service: %w", err)
	}
	return svc, nil
}

func (c *Client) analyticsService(ctx context.Context, credential string) (*ytanalytics.Service, error) {
	if credential == "" {
		return nil, errors.NewUnauthenticatedError()
	}
	svc, err := ytanalytics.NewService(ctx, c.options(ctx, credential, c.cfg.AnalyticsEndpoint)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube analytics service: %w", err)
	}
	return svc, nil
}

// reportsURL is the base for diagnostic request URLs.
func (c *Client) reportsURL() string {
	if c.cfg.AnalyticsEndpoint == "" {
		return constants.APIConfig.AnalyticsReportsURL
	}
	return trimSlash(c.cfg.AnalyticsEndpoint) + "/v2/reports"
}

func (c *Client) observe(call string, start time.Time, err error) {
	if c.cfg.Observer == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.cfg.Observer.ObserveUpstream(call, outcome, time.Since(start))
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
