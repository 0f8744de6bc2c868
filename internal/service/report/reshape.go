package report

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kapu/yt-analytics-go/internal/constants"
	"github.com/kapu/yt-analytics-go/internal/domain"
)

// Reshape decodes report rows by header name. Column order in the report is
// never assumed. Requested metrics absent from the headers decode as nil and are
// returned in missing.
func Reshape(report *domain.RawReport, metrics []string) (rows []domain.MetricRow, missing []string) {
	rows = []domain.MetricRow{}
	if report == nil {
		return rows, append([]string(nil), metrics...)
	}

	index := make(map[string]int, len(report.ColumnHeaders))
	for i, h := range report.ColumnHeaders {
		if h.Name == "" {
			continue
		}
		if _, exists := index[h.Name]; !exists {
			index[h.Name] = i
		}
	}

	for _, m := range metrics {
		if _, ok := index[m]; !ok {
			missing = append(missing, m)
		}
	}

	requested := make(map[string]struct{}, len(metrics))
	for _, m := range metrics {
		requested[m] = struct{}{}
	}

	for _, raw := range report.Rows {
		row := domain.MetricRow{Metrics: make(map[string]*float64, len(metrics))}

		for _, m := range metrics {
			pos, ok := index[m]
			if !ok || pos >= len(raw) {
				row.Metrics[m] = nil
				continue
			}
			row.Metrics[m] = toFloat(raw[pos])
		}

		for name, pos := range index {
			if _, isMetric := requested[name]; isMetric || pos >= len(raw) {
				continue
			}
			if !isDimension(report.ColumnHeaders[pos], name) {
				continue
			}
			value := toString(raw[pos])
			switch name {
			case constants.DimensionVideo:
				row.EntityID = value
			case constants.DimensionDay:
				row.Day = value
			default:
				if row.Dimensions == nil {
					row.Dimensions = make(map[string]string)
				}
				row.Dimensions[name] = value
			}
		}

		rows = append(rows, row)
	}
	return rows, missing
}

// isDimension trusts columnType when present, else treats the known grouping axes as dimensions.
func isDimension(h domain.ColumnHeader, name string) bool {
	if h.ColumnType != "" {
		return h.ColumnType == "DIMENSION"
	}
	return name == constants.DimensionVideo || name == constants.DimensionDay
}

func toFloat(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}
