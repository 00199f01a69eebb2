package ranking

import (
	"sort"
	"strings"

	"video_trend_ranker/internal/domain"
)

// Query applies search, grade filter and sort to collection, in that order.
// The collection is not modified and the result is a new slice.
func Query(collection []domain.EnrichedVideo, state domain.QueryState) []domain.EnrichedVideo {
	needle := strings.ToLower(state.Search)

	result := make([]domain.EnrichedVideo, 0, len(collection))
	for _, v := range collection {
		if !matchesSearch(v, needle) || !state.Filter.Matches(v.Grade) {
			continue
		}
		result = append(result, v)
	}

	if state.Sort.Active() {
		sortVideos(result, state.Sort)
	}
	return result
}

func matchesSearch(v domain.EnrichedVideo, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(v.Title), needle) ||
		strings.Contains(strings.ToLower(v.ChannelTitle), needle)
}

func sortVideos(videos []domain.EnrichedVideo, cfg domain.SortConfig) {
	value := sortValue(cfg.Key)
	if value == nil {
		return
	}

	asc := cfg.Direction == domain.SortAsc
	sort.SliceStable(videos, func(i, j int) bool {
		a, b := value(videos[i]), value(videos[j])
		if asc {
			return a < b
		}
		return a > b
	})
}

// sortValue returns the comparable value for a key, or nil when the key is
// not recognized.
func sortValue(key domain.SortKey) func(domain.EnrichedVideo) float64 {
	switch key {
	case domain.SortPublishedAt:
		return func(v domain.EnrichedVideo) float64 { return float64(v.PublishedAt.UnixMilli()) }
	case domain.SortSubscribers:
		return func(v domain.EnrichedVideo) float64 { return float64(v.SubscriberCount) }
	case domain.SortViews:
		return func(v domain.EnrichedVideo) float64 { return float64(v.ViewCount) }
	case domain.SortVSRatio:
		return func(v domain.EnrichedVideo) float64 { return Ratio(v.ViewCount, v.SubscriberCount) }
	case domain.SortLVRatio:
		return func(v domain.EnrichedVideo) float64 { return LikeRatio(v.LikeCount, v.ViewCount) }
	}
	return nil
}
