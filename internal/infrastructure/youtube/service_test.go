package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video_trend_ranker/config"
	"video_trend_ranker/internal/domain"
	httpclient "video_trend_ranker/internal/infrastructure/http"
)

type fakeAPI struct {
	mu       sync.Mutex
	requests []*http.Request
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()
	f.handler(w, r)
}

func newTestService(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Service, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{handler: handler}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg := &config.Config{YouTubeBaseURL: srv.URL + "/youtube/v3"}
	return NewService(cfg, httpclient.NewHTTPClientWith(srv.Client(), 0)), api
}

const detailsJSON = `{"items":[
 {"id":"v1","snippet":{"publishedAt":"2026-01-02T03:04:05Z","channelId":"c1","title":"Camping Tips","description":"desc","channelTitle":"Outdoor",
   "tags":["camp","tips"],"categoryId":"19","thumbnails":{"medium":{"url":"m1"},"high":{"url":"h1"}}},
  "statistics":{"viewCount":"1000","likeCount":"50","commentCount":"7"}},
 {"id":"v2","snippet":{"publishedAt":"bad","channelId":"c2","title":"Tech Review","channelTitle":"Gadgets","categoryId":"28"},
  "statistics":{"viewCount":"50"}}
]}`

func TestFetchTrending(t *testing.T) {
	svc, api := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case r.URL.Path == "/youtube/v3/videos" && q.Get("chart") == "mostPopular":
			fmt.Fprint(w, `{"items":[{"id":"v1"},{"id":"v2"}]}`)
		case r.URL.Path == "/youtube/v3/videos" && q.Get("part") == "snippet,statistics":
			fmt.Fprint(w, detailsJSON)
		default:
			http.NotFound(w, r)
		}
	})

	videos, err := svc.FetchTrending(context.Background(), "key-1", "KR")
	require.NoError(t, err)
	require.Len(t, videos, 2)

	first := videos[0]
	assert.Equal(t, "v1", first.ID)
	assert.Equal(t, "c1", first.ChannelID)
	assert.Equal(t, "Outdoor", first.ChannelTitle)
	assert.Equal(t, []string{"camp", "tips"}, first.Tags)
	assert.Equal(t, "h1", first.Thumbnails.High)
	assert.Equal(t, int64(1000), first.ViewCount)
	assert.Equal(t, int64(50), first.LikeCount)
	assert.Equal(t, int64(7), first.CommentCount)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), first.PublishedAt.UTC())

	second := videos[1]
	assert.Zero(t, second.LikeCount, "missing counters coerce to zero")
	assert.True(t, second.PublishedAt.IsZero())

	require.Len(t, api.requests, 2)
	listing := api.requests[0].URL.Query()
	assert.Equal(t, "KR", listing.Get("regionCode"))
	assert.Equal(t, "25", listing.Get("maxResults"))
	assert.Equal(t, "key-1", listing.Get("key"))
	assert.Equal(t, "v1,v2", api.requests[1].URL.Query().Get("id"))
}

func TestFetchTrending_EmptyListingSkipsDetails(t *testing.T) {
	svc, api := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	})

	videos, err := svc.FetchTrending(context.Background(), "key", "KR")
	require.NoError(t, err)
	assert.Empty(t, videos)
	assert.Len(t, api.requests, 1)
}

func TestFetchTrending_MissingKey(t *testing.T) {
	svc, api := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := svc.FetchTrending(context.Background(), "", "KR")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Empty(t, api.requests)
}

func TestSearchVideos_DateBoundsAndUpstreamMessage(t *testing.T) {
	svc, api := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":{"code":403,"message":"The request cannot be completed because you have exceeded your quota."}}`)
	})

	loc := time.FixedZone("KST", 9*3600)
	dr := domain.DateRange{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, loc),
		End:   time.Date(2026, 1, 31, 0, 0, 0, 0, loc),
	}
	_, err := svc.SearchVideos(context.Background(), "key", "캠핑 tips", dr)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "The request cannot be completed because you have exceeded your quota.", err.Error())

	require.Len(t, api.requests, 1)
	q := api.requests[0].URL.Query()
	assert.Equal(t, "/youtube/v3/search", api.requests[0].URL.Path)
	assert.Equal(t, "캠핑 tips", q.Get("q"))
	assert.Equal(t, "video", q.Get("type"))
	assert.Equal(t, "2025-12-31T15:00:00Z", q.Get("publishedAfter"))
	assert.Equal(t, "2026-01-31T14:59:59Z", q.Get("publishedBefore"))
}

func TestSearchVideos_Success(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/search") {
			assert.Empty(t, r.URL.Query().Get("publishedAfter"))
			fmt.Fprint(w, `{"items":[{"id":{"kind":"youtube#video","videoId":"v1"}},{"id":{"kind":"youtube#channel"}}]}`)
			return
		}
		assert.Equal(t, "v1", r.URL.Query().Get("id"))
		fmt.Fprint(w, detailsJSON)
	})

	videos, err := svc.SearchVideos(context.Background(), "key", "camping", domain.DateRange{})
	require.NoError(t, err)
	assert.Len(t, videos, 2)
}

func TestSearchVideos_FallbackMessage(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "oops")
	})

	_, err := svc.SearchVideos(context.Background(), "key", "x", domain.DateRange{})
	require.Error(t, err)
	assert.Equal(t, "YouTube search failed", err.Error())
}

func TestFetchChannelAudiences(t *testing.T) {
	svc, api := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("id"), ",")
		var items []string
		for _, id := range ids {
			if id == "hidden" {
				items = append(items, `{"id":"hidden","statistics":{"hiddenSubscriberCount":true}}`)
				continue
			}
			if id == "gone" {
				continue
			}
			items = append(items, fmt.Sprintf(`{"id":%q,"statistics":{"subscriberCount":"%d"}}`, id, len(id)*100))
		}
		fmt.Fprintf(w, `{"items":[%s]}`, strings.Join(items, ","))
	})

	ids := []string{"hidden", "gone"}
	for i := 0; i < 60; i++ {
		ids = append(ids, fmt.Sprintf("ch%02d", i))
	}

	audiences, err := svc.FetchChannelAudiences(context.Background(), "key", ids)
	require.NoError(t, err)

	assert.Len(t, api.requests, 2, "ids are chunked by 50")
	assert.Len(t, audiences, 61)
	assert.Equal(t, domain.ChannelAudience{ChannelID: "hidden", SubscriberCount: 0}, audiences[0])
	assert.Equal(t, domain.ChannelAudience{ChannelID: "ch00", SubscriberCount: 400}, audiences[1])
}

func TestFetchChannelAudiences_Failure(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"API key not valid. Please pass a valid API key."}}`)
	})

	_, err := svc.FetchChannelAudiences(context.Background(), "bad", []string{"c1"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "channels", apiErr.Endpoint)
	assert.Equal(t, "API key not valid. Please pass a valid API key.", apiErr.Message)
}

func TestSearchBounds(t *testing.T) {
	after, before := SearchBounds(domain.DateRange{})
	assert.True(t, after.IsZero())
	assert.True(t, before.IsZero())

	day := time.Date(2026, 5, 5, 13, 45, 0, 0, time.UTC)
	after, before = SearchBounds(domain.DateRange{Start: day, End: day})
	assert.Equal(t, time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), after)
	assert.Equal(t, time.Date(2026, 5, 5, 23, 59, 59, 0, time.UTC), before)
}

func TestCategoryName(t *testing.T) {
	assert.Equal(t, "음악", CategoryName("10"))
	assert.Equal(t, "과학기술", CategoryName("28"))
	assert.Equal(t, OtherCategory, CategoryName("999"))
	assert.Equal(t, OtherCategory, CategoryName(""))
}
