package ranking

import "video_trend_ranker/internal/domain"

// UniqueChannelIDs returns the distinct channel IDs referenced by videos in
// first-seen order.
func UniqueChannelIDs(videos []domain.VideoRecord) []string {
	seen := make(map[string]struct{}, len(videos))
	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		if _, ok := seen[v.ChannelID]; ok {
			continue
		}
		seen[v.ChannelID] = struct{}{}
		ids = append(ids, v.ChannelID)
	}
	return ids
}

// Enrich attaches each video's channel audience and grade. Output has the
// same order and length as videos. A channel missing from audiences, or a
// nil audiences slice after a failed lookup, gives audience 0.
func Enrich(videos []domain.VideoRecord, audiences []domain.ChannelAudience) []domain.EnrichedVideo {
	subscribers := make(map[string]int64, len(audiences))
	for _, a := range audiences {
		subscribers[a.ChannelID] = a.SubscriberCount
	}

	enriched := make([]domain.EnrichedVideo, len(videos))
	for i, v := range videos {
		subs, known := subscribers[v.ChannelID]
		enriched[i] = domain.EnrichedVideo{
			VideoRecord:     v,
			SubscriberCount: subs,
			AudienceKnown:   known,
			Grade:           Classify(v.ViewCount, subs),
		}
	}
	return enriched
}
