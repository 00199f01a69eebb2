package cron

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	cron "github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"video_trend_ranker/config"
	"video_trend_ranker/internal/domain"
	"video_trend_ranker/internal/logger"
	"video_trend_ranker/internal/usecase"
)

// Refresher replaces the working collection
type Refresher interface {
	Refresh(ctx context.Context, req domain.FetchRequest) (*domain.FetchRun, error)
}

// KeyChecker reports whether an API key is available
type KeyChecker interface {
	HasKey() bool
}

// Scheduler manages cron jobs for the application
type Scheduler struct {
	cron        *cron.Cron
	config      *config.Config
	collection  Refresher
	credentials KeyChecker
	ctx         context.Context
	cancel      context.CancelFunc
	started     bool
	log         zerolog.Logger
}

// NewScheduler creates a new cron scheduler
func NewScheduler(cfg *config.Config, collection Refresher, credentials KeyChecker) *Scheduler {
	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	// Create cron with seconds support
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		cron:        c,
		config:      cfg,
		collection:  collection,
		credentials: credentials,
		ctx:         ctx,
		cancel:      cancel,
		log:         logger.WithComponent("scheduler"),
	}
}

// Enabled reports whether a trending refresh schedule is configured
func (s *Scheduler) Enabled() bool {
	schedule := strings.TrimSpace(s.config.CronSchedule)
	return schedule != "" && !strings.EqualFold(schedule, "off")
}

// Start starts the cron scheduler. It is a no-op when no schedule is configured.
func (s *Scheduler) Start() error {
	if !s.Enabled() {
		s.log.Info().Msg("Scheduled trending refresh disabled")
		return nil
	}

	schedule := normalizeSchedule(s.config.CronSchedule)
	jobID, err := s.cron.AddFunc(schedule, s.refreshTrendingJob)
	if err != nil {
		return fmt.Errorf("failed to schedule trending refresh job: %w", err)
	}
	s.log.Info().Msgf("Scheduled trending refresh job with ID: %d, schedule: %s", jobID, schedule)

	s.cron.Start()
	s.started = true
	s.log.Info().Msg("Cron scheduler started")
	return nil
}

// Stop stops the cron scheduler and waits for a running job to return
func (s *Scheduler) Stop() {
	s.log.Info().Msg("Stopping cron scheduler...")
	s.cancel()
	if s.started {
		<-s.cron.Stop().Done()
	}
	s.log.Info().Msg("Cron scheduler stopped")
}

// refreshTrendingJob refreshes the working collection from the trending chart
func (s *Scheduler) refreshTrendingJob() {
	if !s.credentials.HasKey() {
		s.log.Info().Msg("Skipping trending refresh: no API key stored")
		return
	}

	s.log.Info().Msg("Starting trending refresh job...")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Minute)
	defer cancel()

	// No region: the collection applies its live default, which follows config reloads
	req := domain.FetchRequest{Mode: domain.FetchModeTrending}
	run, err := s.collection.Refresh(ctx, req)
	if errors.Is(err, usecase.ErrSuperseded) {
		s.log.Info().Msg("Trending refresh job superseded by a newer refresh")
		return
	}
	if err != nil {
		logger.Error().Str("component", "scheduler").Err(err).Msg("Trending refresh job failed")
		return
	}

	s.log.Info().Msgf("Trending refresh job completed in %v (%d videos)", time.Since(startTime), run.VideoCount)
}

// normalizeSchedule ensures cron expressions are compatible with cron.WithSeconds
func normalizeSchedule(expr string) string {
	expr = strings.TrimSpace(expr)
	fields := strings.Fields(expr)
	if len(fields) == 5 {
		return "0 " + expr
	}
	return expr
}
