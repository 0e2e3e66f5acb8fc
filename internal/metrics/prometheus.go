package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	conversionDuration *prom.HistogramVec
	conversions        *prom.CounterVec
	transformDuration  *prom.HistogramVec
	blocks             *prom.CounterVec
	degraded           *prom.CounterVec
	fragments          prom.Counter
	jobOutcomes        *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		conversionDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docblocks",
			Name:      "conversion_duration_seconds",
			Help:      "Duration of article conversions",
			Buckets:   prom.DefBuckets,
		}, []string{"page_type"}),
		conversions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docblocks",
			Name:      "conversions_total",
			Help:      "Conversions by page type and outcome",
		}, []string{"page_type", "outcome"}),
		transformDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docblocks",
			Name:      "transform_duration_seconds",
			Help:      "Duration of individual transforms",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}, []string{"transform"}),
		blocks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docblocks",
			Name:      "blocks_total",
			Help:      "Blocks emitted by name",
		}, []string{"block"}),
		degraded: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docblocks",
			Name:      "degraded_blocks_total",
			Help:      "Blocks degraded to tables after failing validation",
		}, []string{"block"}),
		fragments: prom.NewCounter(prom.CounterOpts{
			Namespace: "docblocks",
			Name:      "fragments_written_total",
			Help:      "Image-budget fragments persisted",
		}),
		jobOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docblocks",
			Name:      "batch_jobs_total",
			Help:      "Batch conversion jobs by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.conversionDuration, pr.conversions, pr.transformDuration,
		pr.blocks, pr.degraded, pr.fragments, pr.jobOutcomes)
	return pr
}

func (p *PrometheusRecorder) ObserveConversion(pageType string, d time.Duration, outcome Outcome) {
	if p == nil {
		return
	}
	p.conversionDuration.WithLabelValues(pageType).Observe(d.Seconds())
	p.conversions.WithLabelValues(pageType, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveTransform(name string, d time.Duration) {
	if p == nil {
		return
	}
	p.transformDuration.WithLabelValues(name).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBlocks(name string) {
	if p == nil {
		return
	}
	p.blocks.WithLabelValues(name).Inc()
}

func (p *PrometheusRecorder) IncDegraded(name string) {
	if p == nil {
		return
	}
	p.degraded.WithLabelValues(name).Inc()
}

func (p *PrometheusRecorder) AddFragments(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.fragments.Add(float64(n))
}

func (p *PrometheusRecorder) IncJobOutcome(outcome string) {
	if p == nil {
		return
	}
	p.jobOutcomes.WithLabelValues(outcome).Inc()
}

// HTTPHandler serves the metrics of reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
