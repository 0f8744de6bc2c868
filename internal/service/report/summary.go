package report

import (
	"github.com/kapu/yt-analytics-go/internal/constants"
	"github.com/kapu/yt-analytics-go/internal/domain"
)

// Summarize totals additive metrics across items, counting nil as zero.
// Average-type metrics are left nil.
func Summarize(items []domain.ComparisonItem, metrics []string, r domain.DateRange) *domain.Summary {
	summary := &domain.Summary{
		Days:   int(r.End.Sub(r.Start).Hours()/24+0.5) + 1,
		Totals: make(map[string]*float64, len(metrics)),
	}

	for _, m := range metrics {
		if _, average := constants.AverageMetrics[m]; average {
			summary.Totals[m] = nil
			continue
		}
		var total float64
		for i := range items {
			if v := items[i].Value(m); v != nil {
				total += *v
			}
		}
		summary.Totals[m] = &total
	}

	gained, hasGained := summary.Totals[constants.MetricSubscribersGained]
	lost, hasLost := summary.Totals[constants.MetricSubscribersLost]
	if hasGained || hasLost {
		var net float64
		if gained != nil {
			net += *gained
		}
		if lost != nil {
			net -= *lost
		}
		summary.NetSubscribers = &net
	}
	return summary
}
