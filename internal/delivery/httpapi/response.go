package httpapi

import (
	"time"

	"video_trend_ranker/internal/domain"
	"video_trend_ranker/internal/infrastructure/youtube"
	"video_trend_ranker/internal/ranking"
)

const watchURL = "https://www.youtube.com/watch?v="

type sortResponse struct {
	Key       string `json:"key"`
	Direction string `json:"direction"`
}

type sourceResponse struct {
	Mode       string    `json:"mode"`
	RegionCode string    `json:"region_code,omitempty"`
	Keyword    string    `json:"keyword,omitempty"`
	StartDate  string    `json:"start_date,omitempty"`
	EndDate    string    `json:"end_date,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type listVideosResponse struct {
	Videos []*videoResponse   `json:"videos"`
	Counts domain.GradeCounts `json:"counts"`
	Sort   sortResponse       `json:"sort"`
	Source *sourceResponse    `json:"source,omitempty"`
	Error  string             `json:"error,omitempty"`
}

type refreshResponse struct {
	Run    *fetchRunResponse  `json:"run"`
	Counts domain.GradeCounts `json:"counts"`
}

type analysisResponse struct {
	*domain.TrendAnalysis
	AnalyzedAt time.Time `json:"analyzedAt"`
}

type credentialResponse struct {
	Configured bool   `json:"configured"`
	APIKey     string `json:"api_key,omitempty"`
}

type videoResponse struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ChannelID       string    `json:"channel_id"`
	ChannelTitle    string    `json:"channel_title"`
	PublishedAt     time.Time `json:"published_at"`
	ThumbnailMedium string    `json:"thumbnail_medium,omitempty"`
	ThumbnailHigh   string    `json:"thumbnail_high,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	CategoryID      string    `json:"category_id,omitempty"`
	CategoryName    string    `json:"category_name"`
	ViewCount       int64     `json:"view_count"`
	LikeCount       int64     `json:"like_count"`
	CommentCount    int64     `json:"comment_count"`
	SubscriberCount int64     `json:"subscriber_count"`
	AudienceKnown   bool      `json:"audience_known"`
	VSRatio         float64   `json:"vs_ratio"`
	LVRatio         float64   `json:"lv_ratio"`
	Grade           string    `json:"grade"`
}

func toVideoResponse(video *domain.EnrichedVideo) *videoResponse {
	return &videoResponse{
		ID:              video.ID,
		URL:             watchURL + video.ID,
		Title:           video.Title,
		Description:     video.Description,
		ChannelID:       video.ChannelID,
		ChannelTitle:    video.ChannelTitle,
		PublishedAt:     video.PublishedAt,
		ThumbnailMedium: video.Thumbnails.Medium,
		ThumbnailHigh:   video.Thumbnails.High,
		Tags:            video.Tags,
		CategoryID:      video.CategoryID,
		CategoryName:    youtube.CategoryName(video.CategoryID),
		ViewCount:       video.ViewCount,
		LikeCount:       video.LikeCount,
		CommentCount:    video.CommentCount,
		SubscriberCount: video.SubscriberCount,
		AudienceKnown:   video.AudienceKnown,
		VSRatio:         ranking.Ratio(video.ViewCount, video.SubscriberCount),
		LVRatio:         ranking.LikeRatio(video.LikeCount, video.ViewCount),
		Grade:           string(video.Grade),
	}
}

type fetchRunResponse struct {
	ID           string    `json:"id"`
	Mode         string    `json:"mode"`
	Query        string    `json:"query"`
	VideoCount   int       `json:"video_count"`
	ChannelCount int       `json:"channel_count"`
	Degraded     bool      `json:"degraded"`
	ErrorMessage string    `json:"error_message,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

func toFetchRunResponse(run *domain.FetchRun) *fetchRunResponse {
	return &fetchRunResponse{
		ID:           run.ID,
		Mode:         string(run.Mode),
		Query:        run.Query,
		VideoCount:   run.VideoCount,
		ChannelCount: run.ChannelCount,
		Degraded:     run.Degraded,
		ErrorMessage: run.ErrorMessage,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
	}
}

func toSourceResponse(req domain.FetchRequest, updatedAt time.Time) *sourceResponse {
	resp := &sourceResponse{
		Mode:       string(req.Mode),
		RegionCode: req.RegionCode,
		Keyword:    req.Keyword,
		UpdatedAt:  updatedAt,
	}
	if !req.DateRange.Start.IsZero() {
		resp.StartDate = req.DateRange.Start.Format(domain.DateLayout)
	}
	if !req.DateRange.End.IsZero() {
		resp.EndDate = req.DateRange.End.Format(domain.DateLayout)
	}
	return resp
}
