package domain

import "time"

// FetchMode is the upstream listing a refresh uses
type FetchMode string

const (
	// FetchModeTrending lists the most popular videos of a region
	FetchModeTrending FetchMode = "trending"

	// FetchModeSearch lists videos matching a keyword
	FetchModeSearch FetchMode = "search"
)

// FetchRequest describes one refresh of the working collection
type FetchRequest struct {
	Mode       FetchMode
	RegionCode string
	Keyword    string
	DateRange  DateRange
}

// FetchRun records the outcome of one refresh
type FetchRun struct {
	// ID is the unique identifier for the run
	ID string

	// Mode is the listing used
	Mode FetchMode

	// Query is the keyword for search runs or the region code for trending runs
	Query string

	// VideoCount is the number of videos in the resulting collection
	VideoCount int

	// ChannelCount is the number of distinct channels looked up
	ChannelCount int

	// Degraded is true when channel audiences could not be fetched
	Degraded bool

	// ErrorMessage is set when the run failed
	ErrorMessage string

	// StartedAt is when the run began
	StartedAt time.Time

	// FinishedAt is when the run ended
	FinishedAt time.Time
}

// Succeeded reports whether the run replaced the working collection
func (r *FetchRun) Succeeded() bool {
	return r.ErrorMessage == ""
}

// FetchRunRepository defines the interface for fetch history operations
type FetchRunRepository interface {
	// Save records a run
	Save(run *FetchRun) error

	// ListRecent returns the most recent runs, newest first
	ListRecent(limit int) ([]*FetchRun, error)
}
