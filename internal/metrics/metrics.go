// Package metrics exposes Prometheus instrumentation for the video
// processing pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "videotimeline"

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	// VideosTotal counts videos accepted for processing.
	VideosTotal prometheus.Counter
	// VideosFailed counts videos whose processing failed.
	VideosFailed prometheus.Counter
	// ProcessingDuration observes end-to-end processing time in seconds.
	ProcessingDuration prometheus.Histogram
	// TranscriptLines observes the number of transcript lines per video.
	TranscriptLines prometheus.Histogram
	// SegmentsGenerated observes the number of timeline segments per video.
	SegmentsGenerated prometheus.Histogram
	// KeywordExtractions counts keyword extraction runs over segment windows.
	KeywordExtractions prometheus.Counter
}

// New creates the service metrics and registers them with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		VideosTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "videos_total",
			Help:      "Total number of videos accepted for processing.",
		}),
		VideosFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "videos_failed_total",
			Help:      "Total number of videos whose processing failed.",
		}),
		ProcessingDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_duration_seconds",
			Help:      "End-to-end video processing duration in seconds.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		TranscriptLines: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcript_lines",
			Help:      "Number of transcript lines produced per video.",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500},
		}),
		SegmentsGenerated: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "segments_generated",
			Help:      "Number of timeline segments generated per video.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
		KeywordExtractions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keyword_extractions_total",
			Help:      "Total number of keyword extraction runs over segment windows.",
		}),
	}
}
