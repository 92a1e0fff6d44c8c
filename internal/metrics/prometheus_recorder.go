package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "tutorialbuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration  *prom.HistogramVec
	buildDuration  prom.Histogram
	stageResults   *prom.CounterVec
	buildOutcome   *prom.CounterVec
	unitOutcome    *prom.CounterVec
	filesCopied    prom.Counter
	rebuildTrigger *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		unitOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "unit_outcomes_total",
			Help:      "Tutorial unit render outcomes",
		}, []string{"outcome"}),
		filesCopied: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_copied_total",
			Help:      "Asset files copied into the destination tree",
		}),
		rebuildTrigger: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rebuild_triggers_total",
			Help:      "Preview rebuilds by trigger",
		}, []string{"trigger"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
		pr.unitOutcome, pr.filesCopied, pr.rebuildTrigger)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncUnitOutcome(outcome string) {
	if p == nil {
		return
	}
	p.unitOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) AddFilesCopied(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.filesCopied.Add(float64(n))
}

func (p *PrometheusRecorder) IncRebuildTrigger(trigger string) {
	if p == nil {
		return
	}
	p.rebuildTrigger.WithLabelValues(trigger).Inc()
}
