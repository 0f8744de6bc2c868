package youtube

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kapu/yt-analytics-go/internal/constants"
	"github.com/kapu/yt-analytics-go/internal/domain"
	"github.com/kapu/yt-analytics-go/internal/util"
	"github.com/kapu/yt-analytics-go/pkg/errors"
	"go.uber.org/zap"
	ytanalytics "google.golang.org/api/youtubeanalytics/v2"
)

// BuildMetricQuery applies the metric and sort defaults to q and returns a new query.
// Channel scope, date bounds and the entity filter are copied as given.
func BuildMetricQuery(q domain.MetricQuery) *domain.MetricQuery {
	out := q
	out.Metrics = util.UniqueStrings(q.Metrics)
	if len(out.Metrics) == 0 {
		out.Metrics = append([]string(nil), constants.DefaultMetrics...)
	}
	out.Dimensions = util.UniqueStrings(q.Dimensions)
	out.Filter = util.UniqueStrings(q.Filter)
	if out.Sort == "" {
		out.Sort = DefaultSort(out.Dimensions, out.Filter, out.Metrics)
	}
	return &out
}

// DefaultSort orders day series chronologically and filtered entity lists by the first metric, descending.
func DefaultSort(dimensions, filter, metrics []string) string {
	if util.Contains(dimensions, constants.DimensionDay) {
		return constants.DimensionDay
	}
	if len(filter) > 0 && len(metrics) > 0 {
		return "-" + metrics[0]
	}
	return ""
}

// QueryValues encodes q the way the reports endpoint expects it.
func QueryValues(q *domain.MetricQuery) url.Values {
	v := url.Values{}
	v.Set("ids", constants.APIConfig.ChannelPrefix+q.ChannelID)
	v.Set("startDate", q.StartDate)
	v.Set("endDate", q.EndDate)
	v.Set("metrics", strings.Join(q.Metrics, ","))
	if len(q.Dimensions) > 0 {
		v.Set("dimensions", strings.Join(q.Dimensions, ","))
	}
	if filter := domain.FilterExpression(constants.APIConfig.FilterPrefix, q.Filter); filter != "" {
		v.Set("filters", filter)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

// RequestURL renders q as a full reports URL, for diagnostics only.
func (c *Client) RequestURL(q *domain.MetricQuery) string {
	return c.reportsURL() + "?" + QueryValues(q).Encode()
}

// RunQuery issues q once. Failures come back as *errors.UpstreamQueryError with the upstream status and body.
func (c *Client) RunQuery(ctx context.Context, credential string, q *domain.MetricQuery) (*domain.QueryResult, error) {
	requestURL := c.RequestURL(q)

	svc, err := c.analyticsService(ctx, credential)
	if err != nil {
		return nil, err
	}

	values := QueryValues(q)
	call := svc.Reports.Query().
		Ids(values.Get("ids")).
		StartDate(q.StartDate).
		EndDate(q.EndDate).
		Metrics(values.Get("metrics"))
	if d := values.Get("dimensions"); d != "" {
		call = call.Dimensions(d)
	}
	if f := values.Get("filters"); f != "" {
		call = call.Filters(f)
	}
	if q.Sort != "" {
		call = call.Sort(q.Sort)
	}

	start := time.Now()
	resp, err := call.Context(ctx).Do()
	c.observe("reports.query", start, err)
	if err != nil {
		status, body := upstreamStatus(err)
		c.logger.Warn("Metric query failed",
			zap.String("channel_id", q.ChannelID),
			zap.Int("status", status),
			zap.String("request_url", requestURL),
			zap.Error(err))
		return nil, errors.NewUpstreamQueryError(status, body, requestURL)
	}

	report := toRawReport(resp)
	c.logger.Debug("Metric query completed",
		zap.String("channel_id", q.ChannelID),
		zap.Int("columns", len(report.ColumnHeaders)),
		zap.Int("rows", len(report.Rows)))

	status := resp.HTTPStatusCode
	if status == 0 {
		status = http.StatusOK
	}
	return &domain.QueryResult{
		Report:     report,
		RequestURL: requestURL,
		Status:     status,
	}, nil
}

func toRawReport(resp *ytanalytics.QueryResponse) *domain.RawReport {
	report := &domain.RawReport{
		Kind:          resp.Kind,
		ColumnHeaders: make([]domain.ColumnHeader, 0, len(resp.ColumnHeaders)),
		Rows:          make([][]any, 0, len(resp.Rows)),
	}
	for _, h := range resp.ColumnHeaders {
		if h == nil {
			// keep positions aligned with the row arrays
			report.ColumnHeaders = append(report.ColumnHeaders, domain.ColumnHeader{})
			continue
		}
		report.ColumnHeaders = append(report.ColumnHeaders, domain.ColumnHeader{
			Name:       h.Name,
			ColumnType: h.ColumnType,
			DataType:   h.DataType,
		})
	}
	for _, row := range resp.Rows {
		report.Rows = append(report.Rows, append([]any(nil), row...))
	}
	return report
}
