package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video_trend_ranker/config"
	"video_trend_ranker/internal/domain"
	"video_trend_ranker/internal/metrics"
	"video_trend_ranker/internal/repository/memory"
	"video_trend_ranker/internal/usecase"
)

type fakeSource struct {
	videos     []domain.VideoRecord
	audiences  []domain.ChannelAudience
	err        error
	lastRegion string
	lastRange  domain.DateRange
}

func (f *fakeSource) FetchTrending(_ context.Context, _, regionCode string) ([]domain.VideoRecord, error) {
	f.lastRegion = regionCode
	return f.videos, f.err
}

func (f *fakeSource) SearchVideos(_ context.Context, _, _ string, dateRange domain.DateRange) ([]domain.VideoRecord, error) {
	f.lastRange = dateRange
	return f.videos, f.err
}

func (f *fakeSource) FetchChannelAudiences(context.Context, string, []string) ([]domain.ChannelAudience, error) {
	return f.audiences, nil
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(context.Context, []domain.EnrichedVideo) (*domain.TrendAnalysis, error) {
	return &domain.TrendAnalysis{Summary: "music dominates", KeyThemes: []domain.KeyTheme{{Theme: "K-pop"}}}, nil
}

func newTestServer(t *testing.T, source *fakeSource) *Server {
	t.Helper()
	credentials := usecase.NewCredentialManager(memory.NewCredentialRepository(), "")
	require.NoError(t, credentials.Set("test-key-1234"))
	collection := usecase.NewCollectionService(source, credentials, memory.NewFetchRunRepository(), "KR")
	analysis := usecase.NewAnalysisService(collection, fakeSummarizer{})
	return NewServer(&config.Config{ServerPort: "0"}, collection, analysis, credentials)
}

func sampleSource() *fakeSource {
	now := time.Now()
	return &fakeSource{
		videos: []domain.VideoRecord{
			{ID: "v1", ChannelID: "c1", ChannelTitle: "Music Co", Title: "Song", ViewCount: 10000, LikeCount: 100, PublishedAt: now.Add(-time.Hour), CategoryID: "10"},
			{ID: "v2", ChannelID: "c2", ChannelTitle: "Gamer", Title: "Speedrun", ViewCount: 500, LikeCount: 50, PublishedAt: now},
		},
		audiences: []domain.ChannelAudience{
			{ChannelID: "c1", SubscriberCount: 100000},
			{ChannelID: "c2", SubscriberCount: 100000},
		},
	}
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, sampleSource())
	rec := do(t, s.Handler(), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRefreshTrendingThenList(t *testing.T) {
	source := sampleSource()
	s := newTestServer(t, source)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/api/videos/trending", `{"region_code":"us"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "US", source.lastRegion)

	var refreshed refreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	assert.Equal(t, 2, refreshed.Run.VideoCount)
	assert.Equal(t, domain.GradeCounts{Total: 2, Good: 1, NeedsImprovement: 1}, refreshed.Counts)

	rec = do(t, h, http.MethodGet, "/api/videos?sort=views&direction=asc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list listVideosResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Videos, 2)
	assert.Equal(t, "v2", list.Videos[0].ID)
	assert.Equal(t, "v1", list.Videos[1].ID)
	assert.Equal(t, "음악", list.Videos[1].CategoryName)
	assert.InDelta(t, 0.1, list.Videos[1].VSRatio, 1e-9)
	assert.Equal(t, "good", list.Videos[1].Grade)
	require.NotNil(t, list.Source)
	assert.Equal(t, "trending", list.Source.Mode)

	rec = do(t, h, http.MethodGet, "/api/videos?filter=good&search=MUSIC", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Videos, 1)
	assert.Equal(t, "v1", list.Videos[0].ID)
	assert.Equal(t, 2, list.Counts.Total)
}

func TestListVideos_Toggle(t *testing.T) {
	s := newTestServer(t, sampleSource())
	h := s.Handler()
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/videos/trending", "").Code)

	rec := do(t, h, http.MethodGet, "/api/videos?sort=views&direction=desc&toggle=views", "")
	var list listVideosResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, sortResponse{Key: "views", Direction: "asc"}, list.Sort)

	rec = do(t, h, http.MethodGet, "/api/videos?sort=views&direction=asc&toggle=subscribers", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, sortResponse{Key: "subscribers", Direction: "desc"}, list.Sort)
}

func TestListVideos_BadParams(t *testing.T) {
	s := newTestServer(t, sampleSource())
	assert.Equal(t, http.StatusBadRequest, do(t, s.Handler(), http.MethodGet, "/api/videos?filter=stellar", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s.Handler(), http.MethodGet, "/api/videos?direction=up", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s.Handler(), http.MethodGet, "/api/videos?sort=bogus", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s.Handler(), http.MethodGet, "/api/videos?toggle=bogus", "").Code)
}

func TestRefreshSearch(t *testing.T) {
	source := sampleSource()
	s := newTestServer(t, source)

	rec := do(t, s.Handler(), http.MethodPost, "/api/videos/search", `{"keyword":"kpop","start_date":"2026-01-01","end_date":"2026-01-31"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, source.lastRange.Start.Day())
	assert.Equal(t, 31, source.lastRange.End.Day())

	rec = do(t, s.Handler(), http.MethodPost, "/api/videos/search", `{"keyword":"kpop","start_date":"01/01/2026"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s.Handler(), http.MethodPost, "/api/videos/search", `{"keyword":"kpop","start_date":"2026-02-01","end_date":"2026-01-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefresh_UpstreamErrorVerbatim(t *testing.T) {
	source := sampleSource()
	source.err = errors.New("The request cannot be completed because you have exceeded your quota.")
	s := newTestServer(t, source)

	rec := do(t, s.Handler(), http.MethodPost, "/api/videos/trending", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"The request cannot be completed because you have exceeded your quota."}`, rec.Body.String())

	rec = do(t, s.Handler(), http.MethodGet, "/api/videos", "")
	var list listVideosResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Contains(t, list.Error, "exceeded your quota")
	assert.Empty(t, list.Videos)
}

func TestAnalysis(t *testing.T) {
	s := newTestServer(t, sampleSource())
	h := s.Handler()

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/analysis", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/analysis", "").Code)

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/videos/trending", "").Code)

	rec := do(t, h, http.MethodPost, "/api/analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"summary":"music dominates"`)

	rec = do(t, h, http.MethodGet, "/api/analysis", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCredentialEndpoints(t *testing.T) {
	s := newTestServer(t, sampleSource())
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/api/credential", "")
	assert.JSONEq(t, `{"configured":true,"api_key":"*********1234"}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/credential", `{"api_key":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/credential", `{"api_key":" newkey9876 "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "newkey")
	assert.Contains(t, rec.Body.String(), "9876")

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/credential", "").Code)

	rec = do(t, h, http.MethodGet, "/api/credential", "")
	assert.JSONEq(t, `{"configured":false}`, rec.Body.String())
}

func TestCategory(t *testing.T) {
	s := newTestServer(t, sampleSource())
	rec := do(t, s.Handler(), http.MethodGet, "/api/categories/20", "")
	assert.JSONEq(t, `{"id":"20","name":"게임"}`, rec.Body.String())
}

func TestFetchRuns(t *testing.T) {
	s := newTestServer(t, sampleSource())
	h := s.Handler()
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/videos/trending", "").Code)

	rec := do(t, h, http.MethodGet, "/api/fetch-runs?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []fetchRunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "KR", runs[0].Query)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/fetch-runs?limit=-1", "").Code)
}

func TestRefreshRateLimit(t *testing.T) {
	s := newTestServer(t, sampleSource())
	h := s.Handler()

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/videos/trending", "").Code)
	}
	rec := do(t, h, http.MethodPost, "/api/videos/trending", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, sampleSource())
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s.Handler(), http.MethodDelete, "/api/health", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, sampleSource())
	rec := do(t, s.Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownPathsShareOneMetricSeries(t *testing.T) {
	s := newTestServer(t, sampleSource())
	h := s.Handler()
	unmatched := metrics.HTTPRequestsTotal.WithLabelValues("unmatched", http.MethodGet, "404")

	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nope/0", "").Code)
	before := testutil.ToFloat64(unmatched)
	series := testutil.CollectAndCount(metrics.HTTPRequestsTotal)

	do(t, h, http.MethodGet, "/nope/1", "")
	do(t, h, http.MethodGet, "/nope/2?x=y", "")

	assert.Equal(t, before+2, testutil.ToFloat64(unmatched))
	assert.Equal(t, series, testutil.CollectAndCount(metrics.HTTPRequestsTotal))
}
