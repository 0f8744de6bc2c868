package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "yt_analytics"

// Collector owns the service's Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	inFlight            prometheus.Gauge

	reportsTotal     *prometheus.CounterVec
	upstreamTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
}

// NewCollector creates a collector on a private registry, so collectors can be built repeatedly in tests.
func NewCollector(version string) *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	c.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	c.inFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests being served",
		},
	)

	c.reportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Assembled reports by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	c.upstreamTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_calls_total",
			Help:      "YouTube API calls by call and outcome",
		},
		[]string{"call", "outcome"},
	)

	c.upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_call_duration_seconds",
			Help:      "YouTube API call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"call"},
	)

	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information",
		},
		[]string{"version"},
	)
	buildInfo.WithLabelValues(version).Set(1)

	c.registry.MustRegister(
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.inFlight,
		c.reportsTotal,
		c.upstreamTotal,
		c.upstreamDuration,
		buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Middleware records request counts and latency by route template.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		c.inFlight.Inc()
		defer c.inFlight.Dec()

		ctx.Next()

		endpoint := ctx.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		method := ctx.Request.Method
		status := strconv.Itoa(ctx.Writer.Status())

		c.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() gin.HandlerFunc {
	handler := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
	return func(ctx *gin.Context) {
		handler.ServeHTTP(ctx.Writer, ctx.Request)
	}
}

func (c *Collector) RecordReport(mode, outcome string) {
	c.reportsTotal.WithLabelValues(mode, outcome).Inc()
}

func (c *Collector) ObserveUpstream(call, outcome string, duration time.Duration) {
	c.upstreamTotal.WithLabelValues(call, outcome).Inc()
	c.upstreamDuration.WithLabelValues(call).Observe(duration.Seconds())
}
