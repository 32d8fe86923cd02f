package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "factlens_analysis_duration_seconds",
			Help:    "End-to-end analysis pipeline duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"input_type"},
	)

	AnalysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factlens_analysis_total",
			Help: "Total number of analysis runs",
		},
		[]string{"input_type", "status"},
	)

	StageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factlens_stage_failures_total",
			Help: "Fatal pipeline failures by stage",
		},
		[]string{"stage"},
	)

	SourcesFound = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "factlens_verification_sources",
			Help:    "Verification sources attached per completed analysis",
			Buckets: []float64{0, 1, 2, 3},
		},
	)

	PersistenceFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "factlens_history_append_failures_total",
			Help: "History appends that failed and were swallowed",
		},
	)

	FeedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factlens_feedback_total",
			Help: "Analysis feedback submissions",
		},
		[]string{"feedback"},
	)

	LiveFeedCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "factlens_livefeed_cache_hits_total",
			Help: "Live feed requests served from cache",
		},
	)

	LiveFeedCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "factlens_livefeed_cache_misses_total",
			Help: "Live feed requests that hit the upstream news API",
		},
	)

	QuizGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "factlens_quiz_generated_total",
			Help: "Quizzes generated",
		},
	)
)

func Init() {
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(AnalysisTotal)
	prometheus.MustRegister(StageFailures)
	prometheus.MustRegister(SourcesFound)
	prometheus.MustRegister(PersistenceFailures)
	prometheus.MustRegister(FeedbackTotal)
	prometheus.MustRegister(LiveFeedCacheHits)
	prometheus.MustRegister(LiveFeedCacheMisses)
	prometheus.MustRegister(QuizGenerated)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
