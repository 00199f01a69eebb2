package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"video_trend_ranker/internal/domain"
)

// FetchRunRepository is an in-memory implementation of FetchRunRepository
type FetchRunRepository struct {
	mu   sync.RWMutex
	runs map[string]domain.FetchRun
}

// NewFetchRunRepository creates a new in-memory fetch run repository
func NewFetchRunRepository() *FetchRunRepository {
	return &FetchRunRepository{
		runs: make(map[string]domain.FetchRun),
	}
}

// Save records a run
func (r *FetchRunRepository) Save(run *domain.FetchRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	r.runs[run.ID] = *run
	return nil
}

// ListRecent returns up to limit runs, newest first
func (r *FetchRunRepository) ListRecent(limit int) ([]*domain.FetchRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*domain.FetchRun, 0, len(r.runs))
	for _, run := range r.runs {
		run := run
		runs = append(runs, &run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit >= 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
