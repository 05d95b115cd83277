package monitoring

import (
	"time"

	"rtcdiag/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Counters
	analysesTotal *prometheus.CounterVec
	failuresTotal *prometheus.CounterVec
	tracksTotal   *prometheus.CounterVec
	issuesTotal   *prometheus.CounterVec

	// Histograms
	analysisDuration prometheus.Histogram
	dumpSize         prometheus.Histogram
	sessionScore     prometheus.Histogram
	trackScore       *prometheus.HistogramVec
}

// NewPrometheusCollector registers analysis metrics with reg. A nil reg
// registers with the default registry.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	scoreBuckets := prometheus.LinearBuckets(10, 10, 10)

	return &PrometheusCollector{
		analysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rtcdiag_analyses_total",
			Help: "Total number of successfully analyzed stats dumps",
		}, []string{"format"}),

		failuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rtcdiag_analysis_failures_total",
			Help: "Total number of rejected stats dumps by reason",
		}, []string{"reason"}),

		tracksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rtcdiag_tracks_parsed_total",
			Help: "Total number of tracks reconstructed from dumps",
		}, []string{"kind", "direction"}),

		issuesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rtcdiag_issues_reported_total",
			Help: "Total number of ranked issues reported by metric",
		}, []string{"metric"}),

		analysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rtcdiag_analysis_duration_seconds",
			Help:    "Time spent detecting, parsing and summarizing a dump",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),

		dumpSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rtcdiag_dump_size_bytes",
			Help:    "Size of analyzed stats dumps",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}),

		sessionScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rtcdiag_session_score",
			Help:    "Overall session quality score (0-100)",
			Buckets: scoreBuckets,
		}),

		trackScore: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rtcdiag_track_score",
			Help:    "Per-track quality score (0-100)",
			Buckets: scoreBuckets,
		}, []string{"kind"}),
	}
}

func (p *PrometheusCollector) RecordAnalysis(analysis *domain.Analysis, duration time.Duration) {
	p.analysesTotal.WithLabelValues(string(analysis.Format)).Inc()
	p.analysisDuration.Observe(duration.Seconds())
	p.dumpSize.Observe(float64(analysis.SizeBytes))
	p.sessionScore.Observe(float64(analysis.Summary.OverallScore))

	for _, ts := range analysis.Summary.TrackSummaries {
		p.tracksTotal.WithLabelValues(string(ts.Kind), string(ts.Direction)).Inc()
		p.trackScore.WithLabelValues(string(ts.Kind)).Observe(float64(ts.Score))
	}
	for _, issue := range analysis.Summary.Issues {
		p.issuesTotal.WithLabelValues(string(issue.Metric)).Inc()
	}
}

func (p *PrometheusCollector) RecordFailure(reason string) {
	p.failuresTotal.WithLabelValues(reason).Inc()
}
