// Package ranking merges fetched videos with channel audiences, grades them,
// and runs search, filter and sort over the resulting collection.
package ranking

import "video_trend_ranker/internal/domain"

const (
	excellentThreshold = 0.15
	goodThreshold      = 0.05
)

// Ratio divides views by subscribers, flooring subscribers at 1 so an
// unknown audience yields the raw view count.
func Ratio(views, subscribers int64) float64 {
	if subscribers < 1 {
		subscribers = 1
	}
	return float64(views) / float64(subscribers)
}

// Classify grades a video by its view-to-subscriber ratio
func Classify(views, subscribers int64) domain.Grade {
	ratio := Ratio(views, subscribers)
	switch {
	case ratio > excellentThreshold:
		return domain.GradeExcellent
	case ratio > goodThreshold:
		return domain.GradeGood
	default:
		return domain.GradeNeedsImprovement
	}
}

// LikeRatio divides likes by views, flooring views at 1
func LikeRatio(likes, views int64) float64 {
	if views < 1 {
		views = 1
	}
	return float64(likes) / float64(views)
}

// CountGrades tallies a collection by grade
func CountGrades(videos []domain.EnrichedVideo) domain.GradeCounts {
	counts := domain.GradeCounts{Total: len(videos)}
	for _, v := range videos {
		switch v.Grade {
		case domain.GradeExcellent:
			counts.Excellent++
		case domain.GradeGood:
			counts.Good++
		case domain.GradeNeedsImprovement:
			counts.NeedsImprovement++
		}
	}
	return counts
}
