package constants

import "time"

const AppVersion = "1.0.0"

// Metric names understood by the analytics reports API.
const (
	MetricViews                   = "views"
	MetricEstimatedMinutesWatched = "estimatedMinutesWatched"
	MetricAverageViewDuration     = "averageViewDuration"
	MetricAverageViewPercentage   = "averageViewPercentage"
	MetricSubscribersGained       = "subscribersGained"
	MetricSubscribersLost         = "subscribersLost"
)

// Dimension names.
const (
	DimensionDay   = "day"
	DimensionVideo = "video"
)

// DefaultMetrics is the canonical metric set, in decode order.
var DefaultMetrics = []string{
	MetricViews,
	MetricEstimatedMinutesWatched,
	MetricAverageViewDuration,
	MetricSubscribersGained,
	MetricSubscribersLost,
}

// AverageMetrics are never summed across rows.
var AverageMetrics = map[string]struct{}{
	MetricAverageViewDuration:   {},
	MetricAverageViewPercentage: {},
}

var ReportConfig = struct {
	MaxEntities         int
	DefaultLookbackDays int
	MaxSummaryDays      int
	FanoutConcurrency   int
	DateLayout          string
}{
	MaxEntities:         20,
	DefaultLookbackDays: 28,
	MaxSummaryDays:      365,
	FanoutConcurrency:   5,
	DateLayout:          "2006-01-02",
}

var VideoListConfig = struct {
	DefaultPageSize int64
	MaxPageSize     int64
	MetadataBatch   int
}{
	DefaultPageSize: 25,
	MaxPageSize:     50, // videos.list / search.list hard limit
	MetadataBatch:   50,
}

var APIConfig = struct {
	AnalyticsReportsURL string
	UpstreamTimeout     time.Duration
	ChannelPrefix       string
	FilterPrefix        string
}{
	AnalyticsReportsURL: "https://youtubeanalytics.googleapis.com/v2/reports",
	UpstreamTimeout:     15 * time.Second,
	ChannelPrefix:       "channel==",
	FilterPrefix:        "video==",
}

var ServerConfig = struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}{
	ReadTimeout:     30 * time.Second,
	WriteTimeout:    60 * time.Second,
	IdleTimeout:     120 * time.Second,
	ShutdownTimeout: 10 * time.Second,
}
