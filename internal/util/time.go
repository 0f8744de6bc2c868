package util

import (
	"time"

	"github.com/kapu/yt-analytics-go/internal/constants"
)

// LoadLocation resolves a zone name, falling back to UTC when the zone database lacks it.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// FormatDate renders t as YYYY-MM-DD in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(constants.ReportConfig.DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar day in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(constants.ReportConfig.DateLayout, value, loc)
}
