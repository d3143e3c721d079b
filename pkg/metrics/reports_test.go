package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReportMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewReportMetrics(reg)

	m.IncSuccess("revenue")
	m.IncSuccess("revenue")
	m.IncFailure("geography")
	m.ObserveDuration("revenue", 25*time.Millisecond)

	if got := testutil.ToFloat64(m.success.WithLabelValues("revenue")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("geography")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestReportMetricsNilSafe(t *testing.T) {
	var m *ReportMetrics
	m.IncSuccess("revenue")
	m.IncFailure("revenue")
	m.ObserveDuration("revenue", time.Second)

	empty := NewReportMetrics(nil)
	empty.IncSuccess("")
	empty.ObserveDuration("", time.Second)
}
