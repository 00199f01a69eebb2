package cli

import (
	"context"
	"fmt"
	"io"

	"video_trend_ranker/config"
	"video_trend_ranker/internal/infrastructure/gemini"
	httpclient "video_trend_ranker/internal/infrastructure/http"
	"video_trend_ranker/internal/infrastructure/youtube"
	"video_trend_ranker/internal/logger"
	sqliterepo "video_trend_ranker/internal/repository/sqlite"
	"video_trend_ranker/internal/usecase"
)

// environment is shared by every subcommand
type environment struct {
	globals *GlobalFlags
	version string
	out     io.Writer

	// newApp replaces openApp in tests
	newApp func(quiet bool) (*app, error)
}

// app is the wired set of services a command runs against
type app struct {
	cfg         *config.Config
	credentials *usecase.CredentialManager
	collection  *usecase.CollectionService
	analysis    *usecase.AnalysisService
	closers     []func() error
}

func (e *environment) open(quiet bool) (*app, error) {
	if e.newApp != nil {
		return e.newApp(quiet)
	}
	return openApp(e.globals.Config, quiet)
}

// openApp loads configuration, initializes logging and wires the services
// over the sqlite database.
func openApp(configPath string, quiet bool) (*app, error) {
	if configPath != "" {
		config.UseManager(config.NewManager(configPath))
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	initLogger := logger.Initialize
	if quiet {
		initLogger = logger.InitializeQuiet
	}
	if _, err := initLogger(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	db, err := sqliterepo.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	summarizer, err := gemini.NewService(context.Background(), cfg)
	if err != nil {
		db.Close()
		logger.Close()
		return nil, err
	}

	httpClient := httpclient.NewHTTPClient(cfg)
	youtubeService := youtube.NewService(cfg, httpClient)

	credentials := usecase.NewCredentialManager(sqliterepo.NewCredentialRepository(db), cfg.YouTubeAPIKey)
	collection := usecase.NewCollectionService(
		youtubeService,
		credentials,
		sqliterepo.NewFetchRunRepository(db),
		cfg.YouTubeRegionCode,
	)

	return &app{
		cfg:         cfg,
		credentials: credentials,
		collection:  collection,
		analysis:    usecase.NewAnalysisService(collection, summarizer),
		closers:     []func() error{db.Close, logger.Close},
	}, nil
}

// Close releases the database and log files
func (a *app) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
