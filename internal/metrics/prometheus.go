package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder backed by a private registry so
// tests can run multiple recorders without collisions.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	buildDuration prometheus.Histogram
	stageResults  *prometheus.CounterVec
	buildOutcomes *prometheus.CounterVec
	violations    *prometheus.CounterVec
	sourceFiles   prometheus.Gauge
	declarations  prometheus.Gauge
}

// NewPrometheusRecorder creates a recorder with its own registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schemabuild_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		buildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "schemabuild_build_duration_seconds",
			Help:    "Duration of complete builds.",
			Buckets: prometheus.DefBuckets,
		}),
		stageResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schemabuild_stage_results_total",
			Help: "Stage results by stage and result.",
		}, []string{"stage", "result"}),
		buildOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schemabuild_build_outcomes_total",
			Help: "Build outcomes.",
		}, []string{"outcome"}),
		violations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "schemabuild_violations_total",
			Help: "Constraint violations by kind.",
		}, []string{"kind"}),
		sourceFiles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "schemabuild_source_files",
			Help: "Source files in the last processed tree.",
		}),
		declarations: factory.NewGauge(prometheus.GaugeOpts{
			Name: "schemabuild_declarations",
			Help: "Declarations in the last processed tree.",
		}),
	}
}

func (r *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (r *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	r.buildDuration.Observe(d.Seconds())
}

func (r *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	r.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (r *PrometheusRecorder) IncBuildOutcome(outcome string) {
	r.buildOutcomes.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRecorder) IncViolations(kind string, n int) {
	r.violations.WithLabelValues(kind).Add(float64(n))
}

func (r *PrometheusRecorder) SetSourceFiles(n int) {
	r.sourceFiles.Set(float64(n))
}

func (r *PrometheusRecorder) SetDeclarations(n int) {
	r.declarations.Set(float64(n))
}

// Handler exposes the registry for scraping (watch mode's /metrics).
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
