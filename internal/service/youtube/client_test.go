package youtube

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kapu/yt-analytics-go/internal/domain"
	"github.com/kapu/yt-analytics-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testToken = "tok-123"

type recordedCall struct {
	path  string
	query map[string]string
	auth  string
}

type fakeUpstream struct {
	mu     sync.Mutex
	calls  []recordedCall
	routes map[string]http.HandlerFunc
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := map[string]string{}
	for k := range r.URL.Query() {
		q[k] = strings.Join(r.URL.Query()[k], ",")
	}
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{path: r.URL.Path, query: q, auth: r.Header.Get("Authorization")})
	f.mu.Unlock()

	key := r.URL.Path
	if r.URL.Path == "/youtube/v3/channels" {
		if r.URL.Query().Get("mine") == "true" {
			key += "?mine"
		} else {
			key += "?id"
		}
	}
	if h, ok := f.routes[key]; ok {
		h(w, r)
		return
	}
	http.NotFound(w, r)
}

func (f *fakeUpstream) callsTo(path string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, c := range f.calls {
		if c.path == path {
			out = append(out, c)
		}
	}
	return out
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

type countingObserver struct {
	mu    sync.Mutex
	calls map[string]int
}

func (o *countingObserver) ObserveUpstream(call, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.calls == nil {
		o.calls = map[string]int{}
	}
	o.calls[call+":"+outcome]++
}

func newTestClient(t *testing.T, routes map[string]http.HandlerFunc, fallback string) (*Client, *fakeUpstream, *countingObserver) {
	t.Helper()
	upstream := &fakeUpstream{routes: routes}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	observer := &countingObserver{}
	client := NewClient(ClientConfig{
		FallbackChannelID: fallback,
		DataEndpoint:      srv.URL,
		AnalyticsEndpoint: srv.URL,
		Timeout:           5 * time.Second,
		Observer:          observer,
	}, zap.NewNop())
	return client, upstream, observer
}

const mineChannel = `{"items":[{"id":"UCmine","snippet":{"title":"My Channel","thumbnails":{"default":{"url":"d.jpg"},"medium":{"url":"m.jpg"}}},"statistics":{"subscriberCount":"120","viewCount":"5000","videoCount":"12"}}]}`

func TestResolveUsesMineLookup(t *testing.T) {
	client, upstream, observer := newTestClient(t, map[string]http.HandlerFunc{
		"/youtube/v3/channels?mine": jsonHandler(http.StatusOK, mineChannel),
	}, "UCfallback")

	identity, err := client.Resolve(context.Background(), testToken)
	require.NoError(t, err)

	assert.Equal(t, "UCmine", identity.ChannelID)
	assert.Equal(t, domain.IdentitySourceMine, identity.Source)
	assert.Equal(t, "My Channel", identity.Profile.Title)
	assert.Equal(t, "m.jpg", identity.Profile.Thumbnail)
	assert.Equal(t, uint64(120), identity.Profile.SubscriberCount)

	calls := upstream.callsTo("/youtube/v3/channels")
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer "+testToken, calls[0].auth)
	assert.Equal(t, 1, observer.calls["channels.list:ok"])
}

func TestResolveFallsBackToConfiguredChannel(t *testing.T) {
	client, upstream, _ := newTestClient(t, map[string]http.HandlerFunc{
		"/youtube/v3/channels?mine": jsonHandler(http.StatusOK, `{"items":[]}`),
		"/youtube/v3/channels?id":   jsonHandler(http.StatusOK, `{"items":[{"id":"UCfallback","snippet":{"title":"Fallback"}}]}`),
	}, "UCfallback")

	identity, err := client.Resolve(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, "UCfallback", identity.ChannelID)
	assert.Equal(t, domain.IdentitySourceFallback, identity.Source)

	calls := upstream.callsTo("/youtube/v3/channels")
	require.Len(t, calls, 2)
	assert.Equal(t, "UCfallback", calls[1].query["id"])
}

func TestResolveIdentityNotFoundCarriesBothBodies(t *testing.T) {
	client, _, _ := newTestClient(t, map[string]http.HandlerFunc{
		"/youtube/v3/channels?mine": jsonHandler(http.StatusOK, `{"items":[]}`),
		"/youtube/v3/channels?id":   jsonHandler(http.StatusForbidden, `{"error":{"code":403,"message":"forbidden"}}`),
	}, "UCfallback")

	_, err := client.Resolve(context.Background(), testToken)
	require.Error(t, err)

	var notFound *errors.IdentityNotFoundError
	require.True(t, stderrors.As(err, &notFound))
	assert.Equal(t, http.StatusOK, notFound.Mine.Status)
	require.NotNil(t, notFound.Fallback)
	assert.Equal(t, http.StatusForbidden, notFound.Fallback.Status)
	assert.Contains(t, notFound.Fallback.Body, "forbidden")
	assert.Equal(t, http.StatusBadRequest, errors.StatusCode(err))
}

func TestResolveWithoutFallbackFailsAfterMine(t *testing.T) {
	client, upstream, _ := newTestClient(t, map[string]http.HandlerFunc{
		"/youtube/v3/channels?mine": jsonHandler(http.StatusOK, `{"items":[]}`),
	}, "")

	_, err := client.Resolve(context.Background(), testToken)
	assert.Equal(t, errors.CodeIdentityNotFound, errors.Code(err))
	assert.Len(t, upstream.callsTo("/youtube/v3/channels"), 1)
}

func TestResolveWithoutCredential(t *testing.T) {
	client, upstream, _ := newTestClient(t, nil, "")

	_, err := client.Resolve(context.Background(), "")
	assert.Equal(t, http.StatusUnauthorized, errors.StatusCode(err))
	assert.Empty(t, upstream.callsTo("/youtube/v3/channels"))
}

func TestRunQueryEncodesFilterAndSort(t *testing.T) {
	client, upstream, _ := newTestClient(t, map[string]http.HandlerFunc{
		"/v2/reports": jsonHandler(http.StatusOK, `{"kind":"youtubeAnalytics#resultTable",
			"columnHeaders":[{"name":"video","columnType":"DIMENSION","dataType":"STRING"},{"name":"views","columnType":"METRIC","dataType":"INTEGER"}],
			"rows":[["v1",100],["v2",300]]}`),
	}, "")

	q := BuildMetricQuery(domain.MetricQuery{
		ChannelID:  "UCmine",
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-07",
		Metrics:    []string{"views"},
		Dimensions: []string{"video"},
		Filter:     []string{"v1", "v2", "v1"},
	})

	result, err := client.RunQuery(context.Background(), testToken, q)
	require.NoError(t, err)

	calls := upstream.callsTo("/v2/reports")
	require.Len(t, calls, 1)
	assert.Equal(t, "channel==UCmine", calls[0].query["ids"])
	assert.Equal(t, "video==v1,v2", calls[0].query["filters"])
	assert.Equal(t, "-views", calls[0].query["sort"])
	assert.Equal(t, "video", calls[0].query["dimensions"])

	require.Len(t, result.Report.ColumnHeaders, 2)
	assert.Equal(t, "video", result.Report.ColumnHeaders[0].Name)
	require.Len(t, result.Report.Rows, 2)
	assert.Equal(t, "v2", result.Report.Rows[1][0])
	assert.Equal(t, 300.0, result.Report.Rows[1][1])
	assert.True(t, strings.HasSuffix(strings.SplitN(result.RequestURL, "?", 2)[0], "/v2/reports"))
	assert.Contains(t, result.RequestURL, "filters=video%3D%3Dv1%2Cv2")
}

func TestRunQueryPropagatesUpstreamFailure(t *testing.T) {
	body := `{"error":{"code":400,"message":"Unknown identifier (video==nope) given in field parameters.filters."}}`
	client, _, observer := newTestClient(t, map[string]http.HandlerFunc{
		"/v2/reports": jsonHandler(http.StatusBadRequest, body),
	}, "")

	q := BuildMetricQuery(domain.MetricQuery{ChannelID: "UCmine", StartDate: "2024-01-01", EndDate: "2024-01-07", Filter: []string{"nope"}})
	_, err := client.RunQuery(context.Background(), testToken, q)
	require.Error(t, err)

	var upstreamErr *errors.UpstreamQueryError
	require.True(t, stderrors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusBadRequest, upstreamErr.Status)
	assert.Contains(t, upstreamErr.Body, "Unknown identifier")
	assert.Equal(t, 1, observer.calls["reports.query:error"])
}

func TestFetchMetaReturnsKnownIDsOnly(t *testing.T) {
	client, upstream, _ := newTestClient(t, map[string]http.HandlerFunc{
		"/youtube/v3/videos": jsonHandler(http.StatusOK, `{"items":[
			{"id":"v1","snippet":{"title":"A","publishedAt":"2024-01-01T00:00:00Z","thumbnails":{"high":{"url":"h1.jpg"}}}},
			{"id":"v2","snippet":{"title":""}}]}`),
	}, "")

	meta, err := client.FetchMeta(context.Background(), testToken, []string{"v1", "v2", "v3"})
	require.NoError(t, err)

	require.Len(t, meta, 2)
	assert.Equal(t, "A", meta["v1"].Title)
	assert.Equal(t, "h1.jpg", meta["v1"].ThumbnailURL)
	assert.Equal(t, "v2", meta["v2"].Title)
	assert.NotContains(t, meta, "v3")

	calls := upstream.callsTo("/youtube/v3/videos")
	require.Len(t, calls, 1)
	assert.Equal(t, "v1,v2,v3", calls[0].query["id"])
}

func TestFetchMetaDegradesToEmptyMap(t *testing.T) {
	client, _, _ := newTestClient(t, map[string]http.HandlerFunc{
		"/youtube/v3/videos": jsonHandler(http.StatusInternalServerError, `{"error":{"code":500,"message":"backend"}}`),
	}, "")

	meta, err := client.FetchMeta(context.Background(), testToken, []string{"v1"})
	require.Error(t, err)
	assert.NotNil(t, meta)
	assert.Empty(t, meta)
}

func TestListVideosPage(t *testing.T) {
	client, upstream, _ := newTestClient(t, map[string]http.HandlerFunc{
		"/youtube/v3/search": jsonHandler(http.StatusOK, `{"nextPageToken":"NEXT","items":[
			{"id":{"videoId":"v9"},"snippet":{"title":"Newest","publishedAt":"2024-02-01T00:00:00Z","thumbnails":{"default":{"url":"d.jpg"}}}},
			{"id":{},"snippet":{"title":"broken"}}]}`),
	}, "")

	page, err := client.ListVideos(context.Background(), testToken, 500, "TOKEN")
	require.NoError(t, err)

	assert.Equal(t, "NEXT", page.NextPageToken)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "v9", page.Items[0].ID)
	assert.Equal(t, "d.jpg", page.Items[0].ThumbnailURL)

	calls := upstream.callsTo("/youtube/v3/search")
	require.Len(t, calls, 1)
	assert.Equal(t, "50", calls[0].query["maxResults"])
	assert.Equal(t, "true", calls[0].query["forMine"])
	assert.Equal(t, "TOKEN", calls[0].query["pageToken"])
}

func TestDefaultSort(t *testing.T) {
	assert.Equal(t, "day", DefaultSort([]string{"day", "video"}, []string{"v1"}, []string{"views"}))
	assert.Equal(t, "-estimatedMinutesWatched", DefaultSort([]string{"video"}, []string{"v1"}, []string{"estimatedMinutesWatched", "views"}))
	assert.Empty(t, DefaultSort(nil, nil, []string{"views"}))
}

func TestBuildMetricQueryDefaultsMetrics(t *testing.T) {
	q := BuildMetricQuery(domain.MetricQuery{ChannelID: "UC1"})
	assert.Equal(t, []string{"views", "estimatedMinutesWatched", "averageViewDuration", "subscribersGained", "subscribersLost"}, q.Metrics)
	assert.Empty(t, q.Sort)

	values := QueryValues(q)
	assert.Equal(t, "channel==UC1", values.Get("ids"))
	assert.Empty(t, values.Get("filters"))
	assert.Empty(t, values.Get("dimensions"))
}
