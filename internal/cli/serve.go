package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video_trend_ranker/config"
	"video_trend_ranker/internal/delivery/cron"
	"video_trend_ranker/internal/delivery/httpapi"
	"video_trend_ranker/internal/domain"
	"video_trend_ranker/internal/logger"
	"video_trend_ranker/internal/usecase"
)

// Execute runs the HTTP API and scheduler until SIGINT or SIGTERM.
func (c *ServeCommand) Execute(args []string) error {
	a, err := c.env.open(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if c.Port != "" {
		a.cfg.ServerPort = c.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize and start cron scheduler
	scheduler := cron.NewScheduler(a.cfg, a.collection, a.credentials)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	// Start HTTP API server
	apiServer := httpapi.NewServer(a.cfg, a.collection, a.analysis, a.credentials)
	if err := apiServer.Start(); err != nil {
		return err
	}

	if c.WatchConfig {
		go func() {
			err := config.GetManager().Watch(ctx, func(cfg *config.Config) {
				a.collection.SetDefaultRegion(cfg.YouTubeRegionCode)
				a.credentials.SetFallback(cfg.YouTubeAPIKey)
				logger.Info().Str("region", cfg.YouTubeRegionCode).Msg("Configuration reloaded")
			}, func(err error) {
				logger.Error().Err(err).Msg("Configuration reload failed")
			})
			if err != nil {
				logger.Error().Err(err).Msg("Configuration watcher stopped")
			}
		}()
	}

	if !c.NoInitial {
		go initialLoad(ctx, a.collection, a.credentials)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info().Str("version", c.env.version).Msg("Application started. Press Ctrl+C to stop.")
	<-sigChan

	// Graceful shutdown
	logger.Info().Msg("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP API shutdown error")
	}
	logger.Info().Msg("Application stopped.")
	return nil
}

// initialLoad fills the working collection with trending videos when a key exists
func initialLoad(ctx context.Context, collection *usecase.CollectionService, credentials *usecase.CredentialManager) {
	if !credentials.HasKey() {
		logger.Info().Msg("No API key stored; skipping initial trending load")
		return
	}
	req := domain.FetchRequest{Mode: domain.FetchModeTrending}
	if _, err := collection.Refresh(ctx, req); err != nil && !errors.Is(err, usecase.ErrSuperseded) {
		logger.Error().Err(err).Msg("Initial trending load failed")
	}
}
