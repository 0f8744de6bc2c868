package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Mode selects how the assembler queries the reports API.
type Mode string

const (
	ModeAggregate      Mode = "aggregate"
	ModeCompareBatched Mode = "compare-batched"
	ModeCompareFanout  Mode = "compare-fanout"
)

func (m Mode) String() string {
	return string(m)
}

func (m Mode) IsValid() bool {
	switch m {
	case ModeAggregate, ModeCompareBatched, ModeCompareFanout:
		return true
	default:
		return false
	}
}

// IsCompare reports whether the mode requires an entity filter.
func (m Mode) IsCompare() bool {
	return m == ModeCompareBatched || m == ModeCompareFanout
}

// DateRange is an inclusive calendar-day range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Normalize swaps the bounds when Start is after End.
func (r DateRange) Normalize() DateRange {
	if r.Start.After(r.End) {
		return DateRange{Start: r.End, End: r.Start}
	}
	return r
}

// MetricQuery is one fully-resolved reports query.
type MetricQuery struct {
	ChannelID  string
	StartDate  string
	EndDate    string
	Metrics    []string
	Dimensions []string
	Filter     []string
	Sort       string
}

func (q *MetricQuery) HasDimension(name string) bool {
	for _, d := range q.Dimensions {
		if d == name {
			return true
		}
	}
	return false
}

// ColumnHeader describes one positional column of a RawReport.
type ColumnHeader struct {
	Name       string `json:"name"`
	ColumnType string `json:"columnType,omitempty"`
	DataType   string `json:"dataType,omitempty"`
}

// RawReport is the column-oriented upstream response. It is never mutated.
type RawReport struct {
	Kind          string         `json:"kind,omitempty"`
	ColumnHeaders []ColumnHeader `json:"columnHeaders"`
	Rows          [][]any        `json:"rows"`
}

// QueryResult pairs an upstream report with the request that produced it.
type QueryResult struct {
	Report     *RawReport
	RequestURL string
	Status     int
}

// MetricRow is one decoded upstream row. Nil metric values mean the upstream sent null or omitted the column.
type MetricRow struct {
	EntityID   string
	Day        string
	Dimensions map[string]string
	Metrics    map[string]*float64
}

type EntityMeta struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	PublishedAt  string `json:"publishedAt,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// ComparisonItem is a MetricRow joined with its EntityMeta.
type ComparisonItem struct {
	ID           string
	Title        string
	VideoID      string
	Day          string
	PublishedAt  string
	ThumbnailURL string
	Metrics      map[string]*float64
	OK           bool
	Status       int
	Error        string
}

// Value returns the metric value, nil when absent.
func (i *ComparisonItem) Value(metric string) *float64 {
	if i == nil || i.Metrics == nil {
		return nil
	}
	return i.Metrics[metric]
}

// MarshalJSON flattens metrics into the item so every field is addressable by name.
func (i ComparisonItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Metrics)+8)
	for name, value := range i.Metrics {
		if value == nil {
			out[name] = nil
			continue
		}
		out[name] = *value
	}

	out["id"] = i.ID
	out["title"] = i.Title
	out["ok"] = i.OK
	out["status"] = i.Status
	if i.VideoID != "" {
		out["videoId"] = i.VideoID
	}
	if i.Day != "" {
		out["day"] = i.Day
	}
	if i.PublishedAt != "" {
		out["publishedAt"] = i.PublishedAt
	}
	if i.ThumbnailURL != "" {
		out["thumbnailUrl"] = i.ThumbnailURL
	}
	if i.Error != "" {
		out["error"] = i.Error
	}
	return json.Marshal(out)
}

// Summary holds channel-level totals over a date range. Average-type metrics stay nil.
type Summary struct {
	Days           int                 `json:"days"`
	Totals         map[string]*float64 `json:"totals"`
	NetSubscribers *float64            `json:"netSubscribers"`
}

// SubQueryOutcome records one per-video query of the fan-out variant.
type SubQueryOutcome struct {
	VideoID    string     `json:"videoId"`
	OK         bool       `json:"ok"`
	Status     int        `json:"status"`
	RequestURL string     `json:"requestUrl"`
	Error      string     `json:"error,omitempty"`
	Raw        *RawReport `json:"raw,omitempty"`
}

type Diagnostics struct {
	MetadataDegraded bool              `json:"metadataDegraded"`
	MetadataError    string            `json:"metadataError,omitempty"`
	MissingColumns   []string          `json:"missingColumns,omitempty"`
	RequestedCount   int               `json:"requestedCount"`
	UsedCount        int               `json:"usedCount"`
	SubQueries       []SubQueryOutcome `json:"subQueries,omitempty"`
}

type ComparisonResult struct {
	OK          bool             `json:"ok"`
	Status      int              `json:"status"`
	Mode        Mode             `json:"mode"`
	ChannelID   string           `json:"channelId"`
	StartDate   string           `json:"startDate"`
	EndDate     string           `json:"endDate"`
	Metrics     []string         `json:"metrics"`
	Dimensions  []string         `json:"dimensions"`
	Filters     string           `json:"filters,omitempty"`
	Items       []ComparisonItem `json:"items"`
	Summary     *Summary         `json:"summary,omitempty"`
	RequestURL  string           `json:"requestUrl"`
	Raw         *RawReport       `json:"raw,omitempty"`
	Diagnostics Diagnostics      `json:"diagnostics"`
}

// FilterExpression encodes ids as the reports API equality-OR filter.
func FilterExpression(prefix string, ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return prefix + strings.Join(ids, ",")
}
