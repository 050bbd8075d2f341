package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "resume_builder"

var (
	ExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "exports_total", Help: "Number of export runs by final state."},
		[]string{"state"},
	)
	ExportPages = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: namespace, Name: "export_pages", Help: "Pages per exported PDF.", Buckets: []float64{1, 2, 3, 4, 6, 10}},
	)
	ExportStageSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "export_stage_seconds", Help: "Duration of each export stage.", Buckets: prometheus.DefBuckets},
		[]string{"stage"},
	)
	ImprovementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "text_improvements_total", Help: "Text improvement requests by outcome."},
		[]string{"outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(ExportsTotal)
	reg.MustRegister(ExportPages)
	reg.MustRegister(ExportStageSeconds)
	reg.MustRegister(ImprovementsTotal)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
