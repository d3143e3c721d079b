package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReportMetrics records execution metadata for analytics report builds.
type ReportMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewReportMetrics registers the report metrics on the provided registerer.
func NewReportMetrics(reg prometheus.Registerer) *ReportMetrics {
	if reg == nil {
		return &ReportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_duration_seconds",
		Help:    "Duration of analytics report builds in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_success",
		Help: "Successful analytics report builds.",
	}, []string{"report"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_failure",
		Help: "Failed analytics report builds.",
	}, []string{"report"})
	reg.MustRegister(duration, success, failure)
	return &ReportMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named report.
func (r *ReportMetrics) ObserveDuration(report string, duration time.Duration) {
	if r == nil || r.duration == nil {
		return
	}
	r.duration.WithLabelValues(normalizeLabel(report)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named report.
func (r *ReportMetrics) IncSuccess(report string) {
	if r == nil || r.success == nil {
		return
	}
	r.success.WithLabelValues(normalizeLabel(report)).Inc()
}

// IncFailure increments the failure counter for the named report.
func (r *ReportMetrics) IncFailure(report string) {
	if r == nil || r.failure == nil {
		return
	}
	r.failure.WithLabelValues(normalizeLabel(report)).Inc()
}

func normalizeLabel(report string) string {
	if report == "" {
		return "unknown"
	}
	return report
}
