package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"video_trend_ranker/config"
	"video_trend_ranker/internal/domain"
	httpclient "video_trend_ranker/internal/infrastructure/http"
)

// PageSize is the fixed number of videos a listing returns
const PageSize = 25

// maxIDsPerRequest is the platform limit on ids per lookup
const maxIDsPerRequest = 50

// ErrMissingAPIKey is returned when a call is made without a credential
var ErrMissingAPIKey = errors.New("YouTube API Key is required")

// APIError is a non-2xx response from the Data API. Message is the
// upstream error message when one was returned.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Service handles YouTube Data API interactions
type Service struct {
	client  *httpclient.HTTPClient
	baseURL string
}

// NewService creates a new YouTube service
func NewService(cfg *config.Config, httpClient *httpclient.HTTPClient) *Service {
	baseURL := cfg.YouTubeBaseURL
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/youtube/v3"
	}
	return &Service{
		client:  httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type thumbnail struct {
	URL string `json:"url"`
}

// videoItem represents a video item from the videos endpoint
type videoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		PublishedAt  string   `json:"publishedAt"`
		ChannelID    string   `json:"channelId"`
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		ChannelTitle string   `json:"channelTitle"`
		Tags         []string `json:"tags"`
		CategoryID   string   `json:"categoryId"`
		Thumbnails   struct {
			Medium thumbnail `json:"medium"`
			High   thumbnail `json:"high"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
}

func (item videoItem) toRecord() domain.VideoRecord {
	published, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
	return domain.VideoRecord{
		ID:           item.ID,
		PublishedAt:  published,
		ChannelID:    item.Snippet.ChannelID,
		ChannelTitle: item.Snippet.ChannelTitle,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		Thumbnails: domain.Thumbnails{
			Medium: item.Snippet.Thumbnails.Medium.URL,
			High:   item.Snippet.Thumbnails.High.URL,
		},
		Tags:         item.Snippet.Tags,
		CategoryID:   item.Snippet.CategoryID,
		ViewCount:    domain.ParseCount(item.Statistics.ViewCount),
		LikeCount:    domain.ParseCount(item.Statistics.LikeCount),
		CommentCount: domain.ParseCount(item.Statistics.CommentCount),
	}
}

// FetchTrending lists the most popular videos of a region with statistics
func (s *Service) FetchTrending(ctx context.Context, apiKey, regionCode string) ([]domain.VideoRecord, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("part", "id")
	params.Set("chart", "mostPopular")
	params.Set("regionCode", regionCode)
	params.Set("maxResults", fmt.Sprintf("%d", PageSize))
	params.Set("key", apiKey)

	var result struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := s.getJSON(ctx, "videos", params, "failed to load trending videos", &result); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		ids = append(ids, item.ID)
	}
	return s.fetchVideoDetails(ctx, apiKey, ids)
}

// SearchVideos lists videos matching keyword, optionally bounded by a
// calendar date range, with statistics
func (s *Service) SearchVideos(ctx context.Context, apiKey, keyword string, dateRange domain.DateRange) ([]domain.VideoRecord, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("part", "id")
	params.Set("q", keyword)
	params.Set("type", "video")
	params.Set("maxResults", fmt.Sprintf("%d", PageSize))
	params.Set("key", apiKey)

	after, before := SearchBounds(dateRange)
	if !after.IsZero() {
		params.Set("publishedAfter", after.UTC().Format(time.RFC3339))
	}
	if !before.IsZero() {
		params.Set("publishedBefore", before.UTC().Format(time.RFC3339))
	}

	var result struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}
	if err := s.getJSON(ctx, "search", params, "YouTube search failed", &result); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return s.fetchVideoDetails(ctx, apiKey, ids)
}

// SearchBounds converts a calendar date range to instant bounds: the start
// date at 00:00:00 and the end date at 23:59:59, both in the dates' own
// location.
func SearchBounds(dateRange domain.DateRange) (after, before time.Time) {
	if s := dateRange.Start; !s.IsZero() {
		after = time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, s.Location())
	}
	if e := dateRange.End; !e.IsZero() {
		before = time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 0, e.Location())
	}
	return after, before
}

// fetchVideoDetails loads snippet and statistics for ids, keeping the
// platform's response order
func (s *Service) fetchVideoDetails(ctx context.Context, apiKey string, ids []string) ([]domain.VideoRecord, error) {
	if len(ids) == 0 {
		return []domain.VideoRecord{}, nil
	}

	videos := make([]domain.VideoRecord, 0, len(ids))
	for _, chunk := range chunkIDs(ids) {
		params := url.Values{}
		params.Set("part", "snippet,statistics")
		params.Set("id", strings.Join(chunk, ","))
		params.Set("key", apiKey)

		var result struct {
			Items []videoItem `json:"items"`
		}
		if err := s.getJSON(ctx, "videos", params, "failed to fetch video details", &result); err != nil {
			return nil, err
		}
		for _, item := range result.Items {
			videos = append(videos, item.toRecord())
		}
	}
	return videos, nil
}

// FetchChannelAudiences looks up subscriber counts for the given channel
// ids. Channels the platform does not return are simply absent.
func (s *Service) FetchChannelAudiences(ctx context.Context, apiKey string, channelIDs []string) ([]domain.ChannelAudience, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if len(channelIDs) == 0 {
		return []domain.ChannelAudience{}, nil
	}

	audiences := make([]domain.ChannelAudience, 0, len(channelIDs))
	for _, chunk := range chunkIDs(channelIDs) {
		params := url.Values{}
		params.Set("part", "statistics")
		params.Set("id", strings.Join(chunk, ","))
		params.Set("key", apiKey)

		var result struct {
			Items []struct {
				ID         string `json:"id"`
				Statistics struct {
					SubscriberCount string `json:"subscriberCount"`
				} `json:"statistics"`
			} `json:"items"`
		}
		if err := s.getJSON(ctx, "channels", params, "failed to fetch channel statistics", &result); err != nil {
			return nil, err
		}
		for _, item := range result.Items {
			audiences = append(audiences, domain.ChannelAudience{
				ChannelID:       item.ID,
				SubscriberCount: domain.ParseCount(item.Statistics.SubscriberCount),
			})
		}
	}
	return audiences, nil
}

// getJSON performs a GET against endpoint and decodes the body into out.
// Non-2xx responses become *APIError carrying the upstream message, or
// fallback when the body has none.
func (s *Service) getJSON(ctx context.Context, endpoint string, params url.Values, fallback string, out any) error {
	apiURL := fmt.Sprintf("%s/%s?%s", s.baseURL, endpoint, params.Encode())

	resp, err := s.client.Get(ctx, apiURL)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: fallback}
		var body struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)); readErr == nil {
			if json.Unmarshal(data, &body) == nil && body.Error.Message != "" {
				apiErr.Message = body.Error.Message
			}
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func chunkIDs(ids []string) [][]string {
	var chunks [][]string
	for len(ids) > maxIDsPerRequest {
		chunks = append(chunks, ids[:maxIDsPerRequest])
		ids = ids[maxIDsPerRequest:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
