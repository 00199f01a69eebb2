package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"video_trend_ranker/internal/domain"
	"video_trend_ranker/internal/logger"
	"video_trend_ranker/internal/metrics"
	"video_trend_ranker/internal/ranking"
)

// ErrSuperseded is returned by a refresh that was replaced by a newer one
// before it finished. Its result is discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer request")

// VideoSource lists videos and looks up channel audiences
type VideoSource interface {
	FetchTrending(ctx context.Context, apiKey, regionCode string) ([]domain.VideoRecord, error)
	SearchVideos(ctx context.Context, apiKey, keyword string, dateRange domain.DateRange) ([]domain.VideoRecord, error)
	FetchChannelAudiences(ctx context.Context, apiKey string, channelIDs []string) ([]domain.ChannelAudience, error)
}

// CollectionService owns the working collection of enriched videos
type CollectionService struct {
	source      VideoSource
	credentials *CredentialManager
	runs        domain.FetchRunRepository
	now         func() time.Time
	log         zerolog.Logger

	mu            sync.RWMutex
	defaultRegion string
	videos        []domain.EnrichedVideo
	request       *domain.FetchRequest
	updatedAt     time.Time
	lastErr       string
	generation    uint64
	cancel        context.CancelFunc
}

// NewCollectionService creates a new collection service
func NewCollectionService(
	source VideoSource,
	credentials *CredentialManager,
	runs domain.FetchRunRepository,
	defaultRegion string,
) *CollectionService {
	if defaultRegion == "" {
		defaultRegion = "KR"
	}
	return &CollectionService{
		source:        source,
		credentials:   credentials,
		runs:          runs,
		defaultRegion: defaultRegion,
		now:           time.Now,
		log:           logger.WithComponent("collection"),
	}
}

// Refresh fetches a new collection and replaces the working one.
// A refresh started while another is in flight cancels the older one.
// On failure the working collection is left unchanged and the error
// message is kept for display.
func (s *CollectionService) Refresh(ctx context.Context, req domain.FetchRequest) (*domain.FetchRun, error) {
	req = s.normalize(req)
	runCtx, gen, done := s.begin(ctx)
	defer done()

	run := &domain.FetchRun{
		Mode:      req.Mode,
		Query:     req.Keyword,
		StartedAt: s.now(),
	}
	if req.Mode == domain.FetchModeTrending {
		run.Query = req.RegionCode
	}

	s.log.Info().Str("mode", string(req.Mode)).Str("query", run.Query).Msg("Refreshing video collection")

	apiKey, err := s.credentials.APIKey()
	if err != nil {
		return s.fail(gen, run, err)
	}

	videos, err := s.fetch(runCtx, apiKey, req)
	if err != nil {
		return s.fail(gen, run, err)
	}

	channelIDs := ranking.UniqueChannelIDs(videos)
	run.ChannelCount = len(channelIDs)

	var audiences []domain.ChannelAudience
	if len(channelIDs) > 0 {
		audiences, err = s.source.FetchChannelAudiences(runCtx, apiKey, channelIDs)
		if err != nil {
			s.log.Warn().Err(err).Int("channels", len(channelIDs)).Msg("Channel lookup failed, continuing without audiences")
			audiences = nil
			run.Degraded = true
		}
	}

	enriched := ranking.Enrich(videos, audiences)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return s.superseded(run)
	}
	s.videos = enriched
	s.request = &req
	s.updatedAt = s.now()
	s.mu.Unlock()

	if run.Degraded {
		metrics.RecordDegraded()
	}
	counts := ranking.CountGrades(enriched)
	metrics.SetCollection(counts)

	run.VideoCount = len(enriched)
	run.FinishedAt = s.now()
	s.record(run, "ok")

	s.log.Info().
		Str("mode", string(req.Mode)).
		Int("videos", counts.Total).
		Int("excellent", counts.Excellent).
		Int("good", counts.Good).
		Int("needs_improvement", counts.NeedsImprovement).
		Bool("degraded", run.Degraded).
		Dur("elapsed", run.FinishedAt.Sub(run.StartedAt)).
		Msg("Video collection refreshed")

	return run, nil
}

func (s *CollectionService) normalize(req domain.FetchRequest) domain.FetchRequest {
	req.Keyword = strings.TrimSpace(req.Keyword)
	req.RegionCode = strings.ToUpper(strings.TrimSpace(req.RegionCode))

	if req.Mode == domain.FetchModeSearch && req.Keyword == "" {
		req.Mode = domain.FetchModeTrending
	}
	if req.Mode != domain.FetchModeSearch {
		req.Mode = domain.FetchModeTrending
		req.Keyword = ""
		req.DateRange = domain.DateRange{}
		if req.RegionCode == "" {
			s.mu.RLock()
			req.RegionCode = s.defaultRegion
			s.mu.RUnlock()
		}
		return req
	}

	req.RegionCode = ""
	if req.DateRange.IsZero() {
		req.DateRange = domain.DefaultDateRange(s.now())
	}
	return req
}

// begin cancels any in-flight refresh and claims a new generation
func (s *CollectionService) begin(ctx context.Context) (context.Context, uint64, func()) {
	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	s.cancel = cancel
	s.lastErr = ""
	s.mu.Unlock()

	return runCtx, gen, func() {
		s.mu.Lock()
		if s.generation == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}
}

func (s *CollectionService) fetch(ctx context.Context, apiKey string, req domain.FetchRequest) ([]domain.VideoRecord, error) {
	if req.Mode == domain.FetchModeSearch {
		return s.source.SearchVideos(ctx, apiKey, req.Keyword, req.DateRange)
	}
	return s.source.FetchTrending(ctx, apiKey, req.RegionCode)
}

func (s *CollectionService) fail(gen uint64, run *domain.FetchRun, err error) (*domain.FetchRun, error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return s.superseded(run)
	}
	s.lastErr = err.Error()
	s.mu.Unlock()

	run.ErrorMessage = err.Error()
	run.FinishedAt = s.now()
	s.record(run, "error")

	logger.Error().Str("component", "collection").Err(err).Str("mode", string(run.Mode)).Str("query", run.Query).Msg("Video collection refresh failed")
	return run, err
}

func (s *CollectionService) superseded(run *domain.FetchRun) (*domain.FetchRun, error) {
	run.ErrorMessage = ErrSuperseded.Error()
	run.FinishedAt = s.now()
	s.record(run, "superseded")

	s.log.Info().Str("mode", string(run.Mode)).Str("query", run.Query).Msg("Discarding superseded refresh")
	return run, ErrSuperseded
}

func (s *CollectionService) record(run *domain.FetchRun, outcome string) {
	metrics.RecordRefresh(run.Mode, outcome, run.FinishedAt.Sub(run.StartedAt))
	if s.runs == nil {
		return
	}
	if err := s.runs.Save(run); err != nil {
		logger.Error().Str("component", "collection").Err(err).Msg("Failed to save fetch run")
	}
}

// SetDefaultRegion changes the region used by trending refreshes without one
func (s *CollectionService) SetDefaultRegion(region string) {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultRegion = region
}

// Query runs the search, filter and sort pipeline over the working collection
func (s *CollectionService) Query(state domain.QueryState) []domain.EnrichedVideo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ranking.Query(s.videos, state)
}

// CollectionView is one consistent read of the working collection
type CollectionView struct {
	Videos    []domain.EnrichedVideo
	Counts    domain.GradeCounts
	LastError string
	// Request is nil until a refresh has succeeded
	Request   *domain.FetchRequest
	UpdatedAt time.Time
}

// View runs the query and reads counts, error and source under a single lock
func (s *CollectionService) View(state domain.QueryState) CollectionView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := CollectionView{
		Videos:    ranking.Query(s.videos, state),
		Counts:    ranking.CountGrades(s.videos),
		LastError: s.lastErr,
	}
	if s.request != nil {
		req := *s.request
		view.Request = &req
		view.UpdatedAt = s.updatedAt
	}
	return view
}

// Stats returns grade counts over the whole working collection
func (s *CollectionService) Stats() domain.GradeCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ranking.CountGrades(s.videos)
}

// Snapshot returns a copy of the working collection in fetch order
func (s *CollectionService) Snapshot() []domain.EnrichedVideo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.EnrichedVideo, len(s.videos))
	copy(out, s.videos)
	return out
}

// FetchRuns returns recent refresh history, newest first
func (s *CollectionService) FetchRuns(limit int) ([]*domain.FetchRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	runs, err := s.runs.ListRecent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list fetch runs: %w", err)
	}
	return runs, nil
}
