package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kapu/yt-analytics-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headers(names ...string) []domain.ColumnHeader {
	out := make([]domain.ColumnHeader, 0, len(names))
	for _, n := range names {
		h := domain.ColumnHeader{Name: n, ColumnType: "METRIC"}
		if n == "video" || n == "day" || n == "country" {
			h.ColumnType = "DIMENSION"
		}
		out = append(out, h)
	}
	return out
}

func f(v float64) *float64 { return &v }

func TestReshapeDecodesByHeaderName(t *testing.T) {
	metrics := []string{"views", "estimatedMinutesWatched"}

	withDimension := &domain.RawReport{
		ColumnHeaders: headers("video", "estimatedMinutesWatched", "views"),
		Rows:          [][]any{{"v1", 12.5, 100.0}},
	}
	withoutDimension := &domain.RawReport{
		ColumnHeaders: headers("views", "estimatedMinutesWatched"),
		Rows:          [][]any{{100.0, 12.5}},
	}

	rows, missing := Reshape(withDimension, metrics)
	require.Len(t, rows, 1)
	assert.Empty(t, missing)
	assert.Equal(t, "v1", rows[0].EntityID)
	assert.Equal(t, f(100), rows[0].Metrics["views"])
	assert.Equal(t, f(12.5), rows[0].Metrics["estimatedMinutesWatched"])

	rows, _ = Reshape(withoutDimension, metrics)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].EntityID)
	assert.Equal(t, f(100), rows[0].Metrics["views"])
	assert.Equal(t, f(12.5), rows[0].Metrics["estimatedMinutesWatched"])
}

func TestReshapeFlagsMissingColumns(t *testing.T) {
	report := &domain.RawReport{
		ColumnHeaders: headers("day", "views"),
		Rows:          [][]any{{"2024-01-01", 3.0}, {"2024-01-02"}},
	}

	rows, missing := Reshape(report, []string{"views", "subscribersLost"})
	assert.Equal(t, []string{"subscribersLost"}, missing)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-01", rows[0].Day)
	assert.Nil(t, rows[0].Metrics["subscribersLost"])
	assert.Nil(t, rows[1].Metrics["views"])
}

func TestReshapeKeepsExtraDimensionsAndCoercesValues(t *testing.T) {
	report := &domain.RawReport{
		ColumnHeaders: headers("country", "views", "likes"),
		Rows:          [][]any{{"KR", json.Number("42"), "7"}, {"JP", "n/a", nil}},
	}

	rows, _ := Reshape(report, []string{"views", "likes"})
	require.Len(t, rows, 2)
	assert.Equal(t, "KR", rows[0].Dimensions["country"])
	assert.Equal(t, f(42), rows[0].Metrics["views"])
	assert.Equal(t, f(7), rows[0].Metrics["likes"])
	assert.Nil(t, rows[1].Metrics["views"])
	assert.Nil(t, rows[1].Metrics["likes"])
}

func TestReshapeNilReport(t *testing.T) {
	rows, missing := Reshape(nil, []string{"views"})
	assert.Empty(t, rows)
	assert.Equal(t, []string{"views"}, missing)
}

func TestSortByMetricIsStableWithNilsLast(t *testing.T) {
	items := []domain.ComparisonItem{
		{ID: "a", Metrics: map[string]*float64{"views": f(5)}},
		{ID: "b", Metrics: map[string]*float64{"views": nil}},
		{ID: "c", Metrics: map[string]*float64{"views": f(9)}},
		{ID: "d", Metrics: map[string]*float64{"views": f(5)}},
		{ID: "e"},
	}

	SortByMetric(items, "views")
	assert.Equal(t, []string{"c", "a", "d", "b", "e"}, ids(items))
}

func TestJoinAndDedupe(t *testing.T) {
	rows := []domain.MetricRow{
		{EntityID: "v1", Metrics: map[string]*float64{"views": f(1)}},
		{EntityID: "v1", Day: "2024-01-02", Metrics: map[string]*float64{"views": f(2)}},
		{EntityID: "v1", Metrics: map[string]*float64{"views": f(3)}},
		{Day: "2024-01-03"},
		{},
	}
	meta := map[string]*domain.EntityMeta{"v1": {ID: "v1", Title: "First", ThumbnailURL: "t.jpg"}}

	items := Dedupe(Join(rows, meta, "UC1"))
	assert.Equal(t, []string{"v1", "v1@2024-01-02", "2024-01-03", "UC1"}, ids(items))
	assert.Equal(t, f(1), items[0].Value("views"))
	assert.Equal(t, "First", items[1].Title)
	assert.Equal(t, "t.jpg", items[1].ThumbnailURL)
	assert.Equal(t, "2024-01-03", items[2].Title)
	assert.True(t, items[3].OK)
}

func TestSummarizeSkipsAverages(t *testing.T) {
	items := []domain.ComparisonItem{
		{Metrics: map[string]*float64{"views": f(10), "averageViewDuration": f(30), "subscribersGained": f(5), "subscribersLost": f(2)}},
		{Metrics: map[string]*float64{"views": nil, "averageViewDuration": f(60), "subscribersGained": f(1), "subscribersLost": nil}},
	}
	r := domain.DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
	}

	summary := Summarize(items, []string{"views", "averageViewDuration", "subscribersGained", "subscribersLost"}, r)
	assert.Equal(t, 7, summary.Days)
	assert.Equal(t, f(10), summary.Totals["views"])
	assert.Nil(t, summary.Totals["averageViewDuration"])
	assert.Equal(t, f(6), summary.Totals["subscribersGained"])
	assert.Equal(t, f(2), summary.Totals["subscribersLost"])
	assert.Equal(t, f(4), summary.NetSubscribers)
}

func TestSummarizeWithoutSubscriberMetrics(t *testing.T) {
	summary := Summarize(nil, []string{"views"}, domain.DateRange{})
	assert.Equal(t, 1, summary.Days)
	assert.Equal(t, f(0), summary.Totals["views"])
	assert.Nil(t, summary.NetSubscribers)
}
