// Package metrics provides Prometheus metrics for the video trend ranker.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"video_trend_ranker/internal/domain"
)

var (
	// RefreshTotal counts collection refreshes by mode and outcome.
	RefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtr_refresh_total",
		Help: "Total number of collection refreshes, by mode and outcome (ok/error/superseded).",
	}, []string{"mode", "outcome"})

	// RefreshDuration observes refresh latency by mode.
	RefreshDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vtr_refresh_duration_seconds",
		Help:    "Duration of collection refreshes, by mode.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	// DegradedEnrichmentTotal counts refreshes whose channel lookup failed.
	DegradedEnrichmentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vtr_degraded_enrichment_total",
		Help: "Total number of refreshes enriched without channel audiences.",
	})

	// CollectionVideos tracks the working collection size by grade.
	CollectionVideos = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vtr_collection_videos",
		Help: "Current number of videos in the working collection, by grade.",
	}, []string{"grade"})

	// AnalysisTotal counts trend analysis requests by outcome.
	AnalysisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtr_analysis_total",
		Help: "Total number of trend analysis requests, by outcome.",
	}, []string{"outcome"})

	// HTTPRequestsTotal counts API requests by route pattern, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vtr_http_requests_total",
		Help: "Total number of HTTP API requests.",
	}, []string{"route", "method", "status"})
)

// RecordRefresh records a finished refresh.
func RecordRefresh(mode domain.FetchMode, outcome string, elapsed time.Duration) {
	RefreshTotal.WithLabelValues(string(mode), outcome).Inc()
	RefreshDuration.WithLabelValues(string(mode)).Observe(elapsed.Seconds())
}

// RecordDegraded increments the degraded enrichment counter.
func RecordDegraded() {
	DegradedEnrichmentTotal.Inc()
}

// SetCollection publishes per-grade counts of the working collection.
func SetCollection(counts domain.GradeCounts) {
	for _, g := range domain.Grades {
		CollectionVideos.WithLabelValues(string(g)).Set(float64(counts.Count(g)))
	}
}

// RecordAnalysis records an analysis outcome.
func RecordAnalysis(outcome string) {
	AnalysisTotal.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records a served API request.
func RecordHTTPRequest(route, method string, status int) {
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}
