package domain

import (
	"errors"
	"fmt"
	"time"
)

// GradeFilter selects which grades a query keeps
type GradeFilter string

// FilterAll keeps every grade
const FilterAll GradeFilter = "all"

// ParseGradeFilter validates a filter string. Empty means all.
func ParseGradeFilter(s string) (GradeFilter, error) {
	if s == "" || s == string(FilterAll) {
		return FilterAll, nil
	}
	if Grade(s).Valid() {
		return GradeFilter(s), nil
	}
	return "", fmt.Errorf("unknown grade filter %q", s)
}

// Matches reports whether a video with grade g passes the filter
func (f GradeFilter) Matches(g Grade) bool {
	return f == "" || f == FilterAll || Grade(f) == g
}

// SortKey identifies the value a query sorts by
type SortKey string

const (
	SortPublishedAt SortKey = "publishedAt"
	SortSubscribers SortKey = "subscribers"
	SortViews       SortKey = "views"
	SortVSRatio     SortKey = "vsRatio"
	SortLVRatio     SortKey = "lvRatio"
)

// ParseSortKey accepts the sortable columns; empty means publishedAt
func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(s); key {
	case "":
		return SortPublishedAt, nil
	case SortPublishedAt, SortSubscribers, SortViews, SortVSRatio, SortLVRatio:
		return key, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// SortDirection is asc or desc
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection validates a direction string. Empty means desc.
func ParseSortDirection(s string) (SortDirection, error) {
	switch SortDirection(s) {
	case "", SortDesc:
		return SortDesc, nil
	case SortAsc:
		return SortAsc, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", s)
}

// SortConfig is the single active sort. A zero Key means unsorted.
type SortConfig struct {
	Key       SortKey
	Direction SortDirection
}

// Active reports whether a sort key is set
func (s SortConfig) Active() bool {
	return s.Key != ""
}

// Toggle returns the sort after the user selects key: the same key flips
// direction, a different key starts descending.
func (s SortConfig) Toggle(key SortKey) SortConfig {
	if s.Key == key && s.Direction == SortDesc {
		return SortConfig{Key: key, Direction: SortAsc}
	}
	return SortConfig{Key: key, Direction: SortDesc}
}

// DateRange is an inclusive calendar-date window used by keyword search
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether neither bound is set
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// DefaultDateRange covers the last 30 days through today
func DefaultDateRange(now time.Time) DateRange {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return DateRange{Start: today.AddDate(0, 0, -30), End: today}
}

// DateLayout is the calendar date format used for search bounds
const DateLayout = "2006-01-02"

// ParseDateRange parses optional YYYY-MM-DD bounds in loc. An empty string
// leaves that bound unset.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	var r DateRange
	if start != "" {
		t, err := time.ParseInLocation(DateLayout, start, loc)
		if err != nil {
			return r, errors.New("start date must be YYYY-MM-DD")
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.ParseInLocation(DateLayout, end, loc)
		if err != nil {
			return r, errors.New("end date must be YYYY-MM-DD")
		}
		r.End = t
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return r, errors.New("end date must not be before start date")
	}
	return r, nil
}

// QueryState holds the presentation layer's query parameters
type QueryState struct {
	Search    string
	Filter    GradeFilter
	Sort      SortConfig
	DateRange DateRange
}

// DefaultQueryState returns the initial query: no search, all grades,
// newest first.
func DefaultQueryState(now time.Time) QueryState {
	return QueryState{
		Filter:    FilterAll,
		Sort:      SortConfig{Key: SortPublishedAt, Direction: SortDesc},
		DateRange: DefaultDateRange(now),
	}
}
