package report

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/kapu/yt-analytics-go/internal/constants"
	"github.com/kapu/yt-analytics-go/internal/domain"
	"github.com/kapu/yt-analytics-go/pkg/errors"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

type subQueryResult struct {
	id       string
	query    *domain.MetricQuery
	response *domain.QueryResult
	err      error
}

// assembleFanout issues one query per id and waits for every one of them to settle.
// A failed sub-query only marks its own item.
func (a *Assembler) assembleFanout(ctx context.Context, credential string, identity *domain.ChannelIdentity, p *plan) *domain.ComparisonResult {
	results := make([]subQueryResult, len(p.ids))

	var (
		wg      conc.WaitGroup
		meta    map[string]*domain.EntityMeta
		metaErr error
	)
	wg.Go(func() {
		meta, metaErr = a.meta.FetchMeta(ctx, credential, p.ids)
	})
	wg.Go(func() {
		queries := pool.New().WithMaxGoroutines(a.opts.FanoutConcurrency)
		for idx, id := range p.ids {
			idx, id := idx, id
			q := a.query(identity, p, []string{id})
			queries.Go(func() {
				resp, err := a.runner.RunQuery(ctx, credential, q)
				results[idx] = subQueryResult{id: id, query: q, response: resp, err: err}
			})
		}
		queries.Wait()
	})
	wg.Wait()

	combined := a.query(identity, p, p.ids)
	result := a.newResult(identity, p, combined)
	a.applyMetaOutcome(result, metaErr)
	if metaErr != nil {
		meta = nil
	}

	var (
		rows   []domain.MetricRow
		failed []domain.ComparisonItem
	)
	for _, r := range results {
		outcome := domain.SubQueryOutcome{VideoID: r.id, OK: r.err == nil}

		if r.err != nil {
			outcome.Status, outcome.Error, outcome.RequestURL = subQueryFailure(r.err)
			a.logger.Warn("Per-video metric query failed",
				zap.String("video_id", r.id),
				zap.Int("status", outcome.Status),
				zap.Error(r.err))

			item := domain.ComparisonItem{
				ID:      r.id,
				Title:   r.id,
				VideoID: r.id,
				Status:  outcome.Status,
				Error:   outcome.Error,
			}
			applyMeta(&item, meta[r.id])
			failed = append(failed, item)
			result.Diagnostics.SubQueries = append(result.Diagnostics.SubQueries, outcome)
			continue
		}

		outcome.Status = r.response.Status
		outcome.RequestURL = r.response.RequestURL
		outcome.Raw = r.response.Report
		result.Diagnostics.SubQueries = append(result.Diagnostics.SubQueries, outcome)

		subRows, missing := Reshape(r.response.Report, r.query.Metrics)
		result.Diagnostics.MissingColumns = appendUnique(result.Diagnostics.MissingColumns, missing...)
		if len(subRows) == 0 {
			subRows = []domain.MetricRow{emptyRow(r.id, r.query.Metrics)}
		}
		for i := range subRows {
			if subRows[i].EntityID == "" {
				subRows[i].EntityID = r.id
			}
		}
		rows = append(rows, subRows...)
	}

	items := Join(rows, meta, identity.ChannelID)
	items = Dedupe(append(items, failed...))
	if !combined.HasDimension(constants.DimensionDay) {
		SortByMetric(items, combined.Metrics[0])
	}
	result.Items = items

	if len(failed) > 0 {
		result.OK = false
		result.Status = http.StatusMultiStatus
	}
	return result
}

func subQueryFailure(err error) (status int, body, requestURL string) {
	var upstream *errors.UpstreamQueryError
	if stderrors.As(err, &upstream) {
		return upstream.Status, upstream.Body, upstream.RequestURL
	}
	return errors.StatusCode(err), err.Error(), ""
}

// emptyRow stands in for a sub-query that succeeded without data.
func emptyRow(id string, metrics []string) domain.MetricRow {
	values := make(map[string]*float64, len(metrics))
	for _, m := range metrics {
		values[m] = nil
	}
	return domain.MetricRow{EntityID: id, Metrics: values}
}

func appendUnique(existing []string, values ...string) []string {
	for _, v := range values {
		dup := false
		for _, e := range existing {
			if e == v {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, v)
		}
	}
	return existing
}
