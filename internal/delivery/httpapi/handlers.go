package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"video_trend_ranker/internal/domain"
	"video_trend_ranker/internal/infrastructure/gemini"
	"video_trend_ranker/internal/infrastructure/youtube"
	"video_trend_ranker/internal/usecase"
)

const (
	defaultFetchRunLimit = 20
	maxFetchRunLimit     = 100
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	state, err := parseQueryState(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	view := s.collection.View(state)
	resp := listVideosResponse{
		Videos: make([]*videoResponse, 0, len(view.Videos)),
		Counts: view.Counts,
		Sort:   sortResponse{Key: string(state.Sort.Key), Direction: string(state.Sort.Direction)},
		Error:  view.LastError,
	}
	for i := range view.Videos {
		resp.Videos = append(resp.Videos, toVideoResponse(&view.Videos[i]))
	}
	if view.Request != nil {
		resp.Source = toSourceResponse(*view.Request, view.UpdatedAt)
	}
	respondJSON(w, http.StatusOK, resp)
}

// parseQueryState reads search, filter, sort and direction. toggle applies a
// column-header click on top of the given sort.
func parseQueryState(r *http.Request) (domain.QueryState, error) {
	q := r.URL.Query()
	state := domain.DefaultQueryState(time.Now())
	state.Search = q.Get("search")

	filter, err := domain.ParseGradeFilter(q.Get("filter"))
	if err != nil {
		return state, err
	}
	state.Filter = filter

	if key := q.Get("sort"); key != "" {
		if state.Sort.Key, err = domain.ParseSortKey(key); err != nil {
			return state, err
		}
	}
	direction, err := domain.ParseSortDirection(q.Get("direction"))
	if err != nil {
		return state, err
	}
	state.Sort.Direction = direction

	if toggle := q.Get("toggle"); toggle != "" {
		key, err := domain.ParseSortKey(toggle)
		if err != nil {
			return state, err
		}
		state.Sort = state.Sort.Toggle(key)
	}
	return state, nil
}

type trendingRequest struct {
	RegionCode string `json:"region_code"`
}

func (s *Server) handleRefreshTrending(w http.ResponseWriter, r *http.Request) {
	var req trendingRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.refresh(w, r, domain.FetchRequest{
		Mode:       domain.FetchModeTrending,
		RegionCode: req.RegionCode,
	})
}

type searchRequest struct {
	Keyword   string `json:"keyword"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (s *Server) handleRefreshSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dateRange, err := domain.ParseDateRange(req.StartDate, req.EndDate, time.Local)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.refresh(w, r, domain.FetchRequest{
		Mode:      domain.FetchModeSearch,
		Keyword:   req.Keyword,
		DateRange: dateRange,
	})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request, req domain.FetchRequest) {
	run, err := s.collection.Refresh(r.Context(), req)
	switch {
	case errors.Is(err, usecase.ErrSuperseded):
		respondError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, youtube.ErrMissingAPIKey):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, refreshResponse{
		Run:    toFetchRunResponse(run),
		Counts: s.collection.Stats(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.collection.Stats())
}

func (s *Server) handleFetchRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultFetchRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxFetchRunLimit)
	}

	runs, err := s.collection.FetchRuns(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]*fetchRunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, toFetchRunResponse(run))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.analysis.Analyze(r.Context())
	switch {
	case errors.Is(err, usecase.ErrNoVideos):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, gemini.ErrMissingAPIKey):
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, analysisResponse{TrendAnalysis: analysis, AnalyzedAt: time.Now()})
}

func (s *Server) handleLastAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, analyzedAt, ok := s.analysis.Last()
	if !ok {
		respondError(w, http.StatusNotFound, "no analysis available")
		return
	}
	respondJSON(w, http.StatusOK, analysisResponse{TrendAnalysis: analysis, AnalyzedAt: analyzedAt})
}

type credentialRequest struct {
	APIKey string `json:"api_key"`
}

func (s *Server) handleGetCredential(w http.ResponseWriter, r *http.Request) {
	masked, err := s.credentials.Masked()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, credentialResponse{Configured: masked != "", APIKey: masked})
}

func (s *Server) handleSetCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.credentials.Set(req.APIKey); err != nil {
		if errors.Is(err, usecase.ErrEmptyCredential) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, credentialResponse{
		Configured: true,
		APIKey:     usecase.MaskKey(strings.TrimSpace(req.APIKey)),
	})
}

func (s *Server) handleClearCredential(w http.ResponseWriter, r *http.Request) {
	if err := s.credentials.Clear(); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	respondJSON(w, http.StatusOK, map[string]string{
		"id":   id,
		"name": youtube.CategoryName(id),
	})
}

// decodeOptionalJSON decodes the body into v, treating an empty body as {}
func decodeOptionalJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
