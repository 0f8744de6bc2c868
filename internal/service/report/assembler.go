package report

import (
	"context"
	"net/http"
	"time"

	"github.com/kapu/yt-analytics-go/internal/constants"
	"github.com/kapu/yt-analytics-go/internal/domain"
	"github.com/kapu/yt-analytics-go/internal/util"
	"github.com/kapu/yt-analytics-go/pkg/errors"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// IdentityResolver maps a bearer credential to the caller's channel.
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (*domain.ChannelIdentity, error)
}

// MetricRunner issues one reports query.
type MetricRunner interface {
	RunQuery(ctx context.Context, credential string, q *domain.MetricQuery) (*domain.QueryResult, error)
}

// MetadataFetcher resolves display metadata. A returned error means no metadata at all.
type MetadataFetcher interface {
	FetchMeta(ctx context.Context, credential string, ids []string) (map[string]*domain.EntityMeta, error)
}

// Recorder counts assembled reports by mode and outcome.
type Recorder interface {
	RecordReport(mode, outcome string)
}

// QueryPreparer fills metric and sort defaults. youtube.BuildMetricQuery satisfies it.
type QueryPreparer func(q domain.MetricQuery) *domain.MetricQuery

type Options struct {
	MaxEntities       int
	LookbackDays      int
	FanoutConcurrency int
	Location          *time.Location
	Now               func() time.Time
	Prepare           QueryPreparer
	Recorder          Recorder
}

// Assembler runs the report pipeline: resolve, query, enrich, reshape, join, sort.
// It keeps no state between calls.
type Assembler struct {
	identity IdentityResolver
	runner   MetricRunner
	meta     MetadataFetcher
	opts     Options
	logger   *zap.Logger
}

func NewAssembler(identity IdentityResolver, runner MetricRunner, meta MetadataFetcher, opts Options, logger *zap.Logger) *Assembler {
	if opts.MaxEntities <= 0 {
		opts.MaxEntities = constants.ReportConfig.MaxEntities
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = constants.ReportConfig.DefaultLookbackDays
	}
	if opts.FanoutConcurrency <= 0 {
		opts.FanoutConcurrency = constants.ReportConfig.FanoutConcurrency
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Prepare == nil {
		opts.Prepare = func(q domain.MetricQuery) *domain.MetricQuery { return &q }
	}

	return &Assembler{
		identity: identity,
		runner:   runner,
		meta:     meta,
		opts:     opts,
		logger:   util.OrNop(logger),
	}
}

// Request is one assemble invocation. Dates are YYYY-MM-DD; empty means the default bound.
// A nil Metrics slice selects the canonical set, an empty non-nil one is rejected.
type Request struct {
	Credential string
	Mode       domain.Mode
	StartDate  string
	EndDate    string
	// Days overrides the default lookback when StartDate is empty.
	Days       int
	Metrics    []string
	VideoIDs   []string
	Dimensions []string
	Sort       string
}

// plan is a validated request with every default applied.
type plan struct {
	mode           domain.Mode
	dateRange      domain.DateRange
	metrics        []string
	ids            []string
	requestedCount int
	dimensions     []string
	sort           string
}

func (a *Assembler) Assemble(ctx context.Context, req Request) (*domain.ComparisonResult, error) {
	p, err := a.validate(req)
	if err != nil {
		a.record(req.Mode, "invalid")
		return nil, err
	}

	identity, err := a.identity.Resolve(ctx, req.Credential)
	if err != nil {
		a.logger.Warn("Identity resolution failed",
			zap.String("mode", p.mode.String()),
			zap.Error(err))
		a.record(p.mode, "error")
		return nil, err
	}

	var result *domain.ComparisonResult
	if p.mode == domain.ModeCompareFanout {
		result = a.assembleFanout(ctx, req.Credential, identity, p)
	} else {
		result, err = a.assembleBatched(ctx, req.Credential, identity, p)
		if err != nil {
			a.logger.Error("Metric query failed",
				zap.String("mode", p.mode.String()),
				zap.String("channel_id", identity.ChannelID),
				zap.Error(err))
			a.record(p.mode, "error")
			return nil, err
		}
	}

	outcome := "ok"
	if !result.OK {
		outcome = "partial"
	}
	a.record(p.mode, outcome)

	a.logger.Info("Report assembled",
		zap.String("mode", p.mode.String()),
		zap.String("channel_id", identity.ChannelID),
		zap.String("start", result.StartDate),
		zap.String("end", result.EndDate),
		zap.Int("items", len(result.Items)),
		zap.Int("status", result.Status),
		zap.Bool("metadata_degraded", result.Diagnostics.MetadataDegraded))

	return result, nil
}

// validate rejects bad input before any upstream call is made.
func (a *Assembler) validate(req Request) (*plan, error) {
	if req.Credential == "" {
		return nil, errors.NewUnauthenticatedError()
	}

	mode := req.Mode
	if mode == "" {
		mode = domain.ModeAggregate
	}
	if !mode.IsValid() {
		return nil, errors.NewInvalidRequestError("unknown report mode", "mode", string(req.Mode))
	}

	var metrics []string
	if req.Metrics != nil {
		metrics = util.UniqueStrings(req.Metrics)
		if len(metrics) == 0 {
			return nil, errors.NewInvalidRequestError("metrics must not be empty", "metrics", "")
		}
	} else {
		metrics = append([]string(nil), constants.DefaultMetrics...)
	}

	ids := util.UniqueStrings(req.VideoIDs)
	requested := len(ids)
	if mode.IsCompare() && requested == 0 {
		return nil, errors.NewInvalidRequestError("videoIds is required", "videoIds", "")
	}
	if requested > a.opts.MaxEntities {
		ids = ids[:a.opts.MaxEntities]
	}

	dateRange, err := a.dateRange(req)
	if err != nil {
		return nil, err
	}

	dimensions := util.UniqueStrings(req.Dimensions)
	if mode.IsCompare() && !util.Contains(dimensions, constants.DimensionVideo) {
		dimensions = append(dimensions, constants.DimensionVideo)
	}

	return &plan{
		mode:           mode,
		dateRange:      dateRange,
		metrics:        metrics,
		ids:            ids,
		requestedCount: requested,
		dimensions:     dimensions,
		sort:           req.Sort,
	}, nil
}

func (a *Assembler) dateRange(req Request) (domain.DateRange, error) {
	loc := a.opts.Location
	today := util.StartOfDay(a.opts.Now(), loc)

	end := today
	if req.EndDate != "" {
		parsed, err := util.ParseDate(req.EndDate, loc)
		if err != nil {
			return domain.DateRange{}, errors.NewInvalidRequestError("endDate must be YYYY-MM-DD", "endDate", req.EndDate)
		}
		end = parsed
	}

	lookback := a.opts.LookbackDays
	if req.Days > 0 {
		lookback = req.Days
	}
	start := today.AddDate(0, 0, -lookback)
	if req.StartDate != "" {
		parsed, err := util.ParseDate(req.StartDate, loc)
		if err != nil {
			return domain.DateRange{}, errors.NewInvalidRequestError("startDate must be YYYY-MM-DD", "startDate", req.StartDate)
		}
		start = parsed
	}

	return domain.DateRange{Start: start, End: end}.Normalize(), nil
}

func (a *Assembler) query(identity *domain.ChannelIdentity, p *plan, filter []string) *domain.MetricQuery {
	return a.opts.Prepare(domain.MetricQuery{
		ChannelID:  identity.ChannelID,
		StartDate:  util.FormatDate(p.dateRange.Start, a.opts.Location),
		EndDate:    util.FormatDate(p.dateRange.End, a.opts.Location),
		Metrics:    p.metrics,
		Dimensions: p.dimensions,
		Filter:     filter,
		Sort:       p.sort,
	})
}

func (a *Assembler) newResult(identity *domain.ChannelIdentity, p *plan, q *domain.MetricQuery) *domain.ComparisonResult {
	return &domain.ComparisonResult{
		OK:         true,
		Status:     http.StatusOK,
		Mode:       p.mode,
		ChannelID:  identity.ChannelID,
		StartDate:  q.StartDate,
		EndDate:    q.EndDate,
		Metrics:    q.Metrics,
		Dimensions: q.Dimensions,
		Filters:    domain.FilterExpression(constants.APIConfig.FilterPrefix, p.ids),
		Items:      []domain.ComparisonItem{},
		Diagnostics: domain.Diagnostics{
			RequestedCount: p.requestedCount,
			UsedCount:      len(p.ids),
		},
	}
}

// assembleBatched serves aggregate and compare-batched: a single query, metadata alongside it.
func (a *Assembler) assembleBatched(ctx context.Context, credential string, identity *domain.ChannelIdentity, p *plan) (*domain.ComparisonResult, error) {
	q := a.query(identity, p, p.ids)
	videoKeyed := q.HasDimension(constants.DimensionVideo)

	var (
		wg       conc.WaitGroup
		queryRes *domain.QueryResult
		queryErr error
		meta     map[string]*domain.EntityMeta
		metaErr  error
	)
	wg.Go(func() {
		queryRes, queryErr = a.runner.RunQuery(ctx, credential, q)
	})
	if videoKeyed && len(p.ids) > 0 {
		wg.Go(func() {
			meta, metaErr = a.meta.FetchMeta(ctx, credential, p.ids)
		})
	}
	wg.Wait()

	if queryErr != nil {
		return nil, queryErr
	}

	rows, missing := Reshape(queryRes.Report, q.Metrics)

	// Without an id filter the entities are only known once the rows are in.
	if videoKeyed && len(p.ids) == 0 && len(rows) > 0 {
		meta, metaErr = a.meta.FetchMeta(ctx, credential, rowEntityIDs(rows))
	}

	result := a.newResult(identity, p, q)
	result.RequestURL = queryRes.RequestURL
	result.Raw = queryRes.Report
	result.Diagnostics.MissingColumns = missing
	a.applyMetaOutcome(result, metaErr)
	if metaErr != nil {
		meta = nil
	}

	items := Join(rows, meta, identity.ChannelID)
	items = Dedupe(items)
	if !q.HasDimension(constants.DimensionDay) {
		SortByMetric(items, q.Metrics[0])
	}
	result.Items = items

	if p.mode == domain.ModeAggregate {
		result.Summary = Summarize(items, q.Metrics, p.dateRange)
	}
	return result, nil
}

func (a *Assembler) applyMetaOutcome(result *domain.ComparisonResult, metaErr error) {
	if metaErr == nil {
		return
	}
	a.logger.Warn("Metadata unavailable, falling back to ids",
		zap.String("channel_id", result.ChannelID),
		zap.Error(metaErr))
	result.Diagnostics.MetadataDegraded = true
	result.Diagnostics.MetadataError = metaErr.Error()
}

func rowEntityIDs(rows []domain.MetricRow) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.EntityID != "" {
			ids = append(ids, row.EntityID)
		}
	}
	return util.UniqueStrings(ids)
}

func (a *Assembler) record(mode domain.Mode, outcome string) {
	if a.opts.Recorder == nil {
		return
	}
	if mode == "" {
		mode = domain.ModeAggregate
	}
	a.opts.Recorder.RecordReport(mode.String(), outcome)
}
