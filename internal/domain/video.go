package domain

import "time"

// Grade is the performance tier assigned to a video
type Grade string

const (
	// GradeExcellent indicates a view-to-subscriber ratio above 0.15
	GradeExcellent Grade = "excellent"

	// GradeGood indicates a view-to-subscriber ratio above 0.05
	GradeGood Grade = "good"

	// GradeNeedsImprovement covers everything else
	GradeNeedsImprovement Grade = "needs-improvement"
)

// Grades lists every grade in display order
var Grades = []Grade{GradeExcellent, GradeGood, GradeNeedsImprovement}

// Valid reports whether g is one of the known grades
func (g Grade) Valid() bool {
	switch g {
	case GradeExcellent, GradeGood, GradeNeedsImprovement:
		return true
	}
	return false
}

// Thumbnails holds the thumbnail URLs of a video
type Thumbnails struct {
	Medium string
	High   string
}

// VideoRecord represents a video as fetched from the platform
type VideoRecord struct {
	// ID is the platform video ID
	ID string

	// PublishedAt is the upload time reported by the platform
	PublishedAt time.Time

	// ChannelID identifies the uploading channel
	ChannelID string

	// ChannelTitle is the display name of the uploading channel
	ChannelTitle string

	// Title is the video title
	Title string

	// Description is the video description
	Description string

	// Thumbnails holds the medium and high resolution thumbnails
	Thumbnails Thumbnails

	// Tags are the optional free-text tags set by the uploader
	Tags []string

	// CategoryID is the platform category code
	CategoryID string

	// ViewCount is the number of views
	ViewCount int64

	// LikeCount is the number of likes
	LikeCount int64

	// CommentCount is the number of comments
	CommentCount int64
}

// ChannelAudience represents the audience size of a channel
type ChannelAudience struct {
	// ChannelID is the platform channel ID
	ChannelID string

	// SubscriberCount is the number of subscribers at fetch time
	SubscriberCount int64
}

// EnrichedVideo is a VideoRecord merged with its channel audience and grade
type EnrichedVideo struct {
	VideoRecord

	// SubscriberCount is the audience size of the uploading channel, 0 when unknown
	SubscriberCount int64

	// AudienceKnown is false when the channel was missing from the audience lookup
	AudienceKnown bool

	// Grade is derived from ViewCount and SubscriberCount
	Grade Grade
}

// GradeCounts summarizes a collection by grade
type GradeCounts struct {
	Total            int `json:"total"`
	Excellent        int `json:"excellent"`
	Good             int `json:"good"`
	NeedsImprovement int `json:"needs_improvement"`
}

// Count returns the number of videos with grade g
func (c GradeCounts) Count(g Grade) int {
	switch g {
	case GradeExcellent:
		return c.Excellent
	case GradeGood:
		return c.Good
	case GradeNeedsImprovement:
		return c.NeedsImprovement
	}
	return 0
}
