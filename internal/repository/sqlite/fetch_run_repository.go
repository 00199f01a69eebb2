package sqlite

import (
	"database/sql"

	"github.com/google/uuid"

	"video_trend_ranker/internal/domain"
)

// FetchRunRepository is a SQLite implementation of domain.FetchRunRepository.
type FetchRunRepository struct {
	db *sql.DB
}

// NewFetchRunRepository creates a new FetchRunRepository backed by SQLite.
func NewFetchRunRepository(db *sql.DB) *FetchRunRepository {
	return &FetchRunRepository{db: db}
}

// Save records a run, assigning an ID when missing.
func (r *FetchRunRepository) Save(run *domain.FetchRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := r.db.Exec(`INSERT INTO fetch_runs
		(id, mode, query, video_count, channel_count, degraded, error_message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			video_count = excluded.video_count,
			channel_count = excluded.channel_count,
			degraded = excluded.degraded,
			error_message = excluded.error_message,
			finished_at = excluded.finished_at`,
		run.ID, string(run.Mode), run.Query, run.VideoCount, run.ChannelCount, boolToInt(run.Degraded),
		run.ErrorMessage, run.StartedAt.UTC(), run.FinishedAt.UTC())
	return err
}

// ListRecent returns up to limit runs, newest first.
func (r *FetchRunRepository) ListRecent(limit int) ([]*domain.FetchRun, error) {
	rows, err := r.db.Query(`SELECT id, mode, query, video_count, channel_count, degraded, error_message,
		started_at, finished_at
		FROM fetch_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.FetchRun
	for rows.Next() {
		run, err := scanFetchRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanFetchRun(scanner interface {
	Scan(dest ...any) error
}) (*domain.FetchRun, error) {
	var (
		run      domain.FetchRun
		mode     string
		query    sql.NullString
		degraded int
		errorMsg sql.NullString
	)

	if err := scanner.Scan(
		&run.ID,
		&mode,
		&query,
		&run.VideoCount,
		&run.ChannelCount,
		&degraded,
		&errorMsg,
		&run.StartedAt,
		&run.FinishedAt,
	); err != nil {
		return nil, err
	}

	run.Mode = domain.FetchMode(mode)
	run.Degraded = degraded != 0
	if query.Valid {
		run.Query = query.String
	}
	if errorMsg.Valid {
		run.ErrorMessage = errorMsg.String
	}
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
