package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"video_trend_ranker/config"
	"video_trend_ranker/internal/logger"
	"video_trend_ranker/internal/usecase"
)

// Server exposes the REST API used by the dashboard.
type Server struct {
	cfg         *config.Config
	collection  *usecase.CollectionService
	analysis    *usecase.AnalysisService
	credentials *usecase.CredentialManager
	router      chi.Router
	server      *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(
	cfg *config.Config,
	collection *usecase.CollectionService,
	analysis *usecase.AnalysisService,
	credentials *usecase.CredentialManager,
) *Server {
	s := &Server{
		cfg:         cfg,
		collection:  collection,
		analysis:    analysis,
		credentials: credentials,
	}
	s.router = s.routes()
	s.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(RefreshRateLimit())
			r.Post("/videos/trending", s.handleRefreshTrending)
			r.Post("/videos/search", s.handleRefreshSearch)
			r.Post("/analysis", s.handleAnalyze)
		})

		r.Group(func(r chi.Router) {
			r.Use(APIRateLimit())
			r.Get("/videos", s.handleListVideos)
			r.Get("/videos/stats", s.handleStats)
			r.Get("/fetch-runs", s.handleFetchRuns)
			r.Get("/analysis", s.handleLastAnalysis)
			r.Get("/credential", s.handleGetCredential)
			r.Put("/credential", s.handleSetCredential)
			r.Delete("/credential", s.handleClearCredential)
			r.Get("/categories/{id}", s.handleCategory)
		})
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		methodNotAllowed(w)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	return r
}

// Handler returns the routed handler, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving HTTP requests in a separate goroutine.
func (s *Server) Start() error {
	if s.cfg.ServerPort == "" {
		return fmt.Errorf("server port is not configured")
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http api server stopped with error")
		}
	}()
	logger.Info().Msgf("HTTP API server listening on %s", s.server.Addr)
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
