package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"video_trend_ranker/internal/domain"
	"video_trend_ranker/internal/ranking"
)

const (
	publishedLayout = "2006-01-02"
	maxTitleRunes   = 48
)

var printer = message.NewPrinter(language.English)

type videoRow struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Channel     string  `json:"channel"`
	PublishedAt string  `json:"published_at"`
	Subscribers int64   `json:"subscribers"`
	Views       int64   `json:"views"`
	Likes       int64   `json:"likes"`
	Ratio       float64 `json:"ratio"`
	Grade       string  `json:"grade"`
}

// printVideos writes the ranked videos as an aligned table or a JSON array
func printVideos(w io.Writer, videos []domain.EnrichedVideo, counts domain.GradeCounts, asJSON bool) error {
	if asJSON {
		rows := make([]videoRow, 0, len(videos))
		for _, v := range videos {
			rows = append(rows, videoRow{
				ID:          v.ID,
				Title:       v.Title,
				Channel:     v.ChannelTitle,
				PublishedAt: v.PublishedAt.Format(publishedLayout),
				Subscribers: v.SubscriberCount,
				Views:       v.ViewCount,
				Likes:       v.LikeCount,
				Ratio:       ranking.Ratio(v.ViewCount, v.SubscriberCount),
				Grade:       string(v.Grade),
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tCHANNEL\tPUBLISHED\tSUBSCRIBERS\tVIEWS\tRATIO\tGRADE")
	for _, v := range videos {
		subscribers := printer.Sprintf("%d", v.SubscriberCount)
		if !v.AudienceKnown {
			subscribers = "?"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2fx\t%s\n",
			truncate(v.Title, maxTitleRunes),
			v.ChannelTitle,
			v.PublishedAt.Format(publishedLayout),
			subscribers,
			printer.Sprintf("%d", v.ViewCount),
			ranking.Ratio(v.ViewCount, v.SubscriberCount),
			v.Grade,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := printer.Fprintf(w, "\n%d videos: %d excellent, %d good, %d needs improvement\n",
		counts.Total, counts.Excellent, counts.Good, counts.NeedsImprovement)
	return err
}

// printAnalysis writes a trend analysis as text or JSON
func printAnalysis(w io.Writer, analysis *domain.TrendAnalysis, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	fmt.Fprintf(w, "Summary\n  %s\n\nKey themes\n", analysis.Summary)
	for _, theme := range analysis.KeyThemes {
		fmt.Fprintf(w, "  - %s: %s\n", theme.Theme, theme.Explanation)
	}
	_, err := fmt.Fprintf(w, "\nAudience insights\n  %s\n\nPrediction\n  %s\n", analysis.AudienceInsights, analysis.Prediction)
	return err
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
