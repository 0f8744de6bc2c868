package report

import (
	"net/http"
	"sort"

	"github.com/kapu/yt-analytics-go/internal/domain"
)

// Join pairs each row with its metadata. A row without metadata keeps its id as title.
func Join(rows []domain.MetricRow, meta map[string]*domain.EntityMeta, channelID string) []domain.ComparisonItem {
	items := make([]domain.ComparisonItem, 0, len(rows))
	for _, row := range rows {
		item := domain.ComparisonItem{
			ID:      itemKey(row, channelID),
			VideoID: row.EntityID,
			Day:     row.Day,
			Metrics: row.Metrics,
			OK:      true,
			Status:  http.StatusOK,
		}
		item.Title = item.ID
		if row.EntityID != "" {
			item.Title = row.EntityID
			applyMeta(&item, meta[row.EntityID])
		}
		items = append(items, item)
	}
	return items
}

func applyMeta(item *domain.ComparisonItem, meta *domain.EntityMeta) {
	if meta == nil {
		return
	}
	if meta.Title != "" {
		item.Title = meta.Title
	}
	item.PublishedAt = meta.PublishedAt
	item.ThumbnailURL = meta.ThumbnailURL
}

// itemKey is the entity id, the day, video@day for per-video series, or the channel for a plain aggregate.
func itemKey(row domain.MetricRow, channelID string) string {
	switch {
	case row.EntityID != "" && row.Day != "":
		return row.EntityID + "@" + row.Day
	case row.EntityID != "":
		return row.EntityID
	case row.Day != "":
		return row.Day
	default:
		return channelID
	}
}

// Dedupe drops repeated ids, keeping the first occurrence.
func Dedupe(items []domain.ComparisonItem) []domain.ComparisonItem {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, item := range items {
		if _, exists := seen[item.ID]; exists {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}

// SortByMetric orders items by metric descending. Ties keep input order and nil values go last.
func SortByMetric(items []domain.ComparisonItem, metric string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Value(metric), items[j].Value(metric)
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
}
