package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"video_trend_ranker/internal/domain"
	"video_trend_ranker/internal/logger"
	"video_trend_ranker/internal/metrics"
)

// ErrNoVideos is returned when there is nothing to analyze
var ErrNoVideos = errors.New("no videos to analyze")

// Summarizer produces a trend analysis for a set of videos
type Summarizer interface {
	Summarize(ctx context.Context, videos []domain.EnrichedVideo) (*domain.TrendAnalysis, error)
}

// AnalysisService runs AI trend analysis over the working collection
type AnalysisService struct {
	collection *CollectionService
	summarizer Summarizer

	mu         sync.RWMutex
	last       *domain.TrendAnalysis
	analyzedAt time.Time
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(collection *CollectionService, summarizer Summarizer) *AnalysisService {
	return &AnalysisService{
		collection: collection,
		summarizer: summarizer,
	}
}

// Analyze summarizes the working collection in fetch order. Failures leave
// the previous analysis and the collection untouched.
func (s *AnalysisService) Analyze(ctx context.Context) (*domain.TrendAnalysis, error) {
	videos := s.collection.Snapshot()
	if len(videos) == 0 {
		metrics.RecordAnalysis("empty")
		return nil, ErrNoVideos
	}

	start := time.Now()
	analysis, err := s.summarizer.Summarize(ctx, videos)
	if err != nil {
		metrics.RecordAnalysis("error")
		logger.Error().Err(err).Int("videos", len(videos)).Msg("Trend analysis failed")
		return nil, err
	}

	s.mu.Lock()
	s.last = analysis
	s.analyzedAt = time.Now()
	s.mu.Unlock()

	metrics.RecordAnalysis("ok")
	logger.Info().Int("videos", len(videos)).Int("themes", len(analysis.KeyThemes)).Dur("elapsed", time.Since(start)).Msg("Trend analysis completed")
	return analysis, nil
}

// Last returns the most recent successful analysis, if any
func (s *AnalysisService) Last() (*domain.TrendAnalysis, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil, time.Time{}, false
	}
	return s.last, s.analyzedAt, true
}
