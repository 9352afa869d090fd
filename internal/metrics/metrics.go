// Package metrics records per-operation counts, error counts, and latency
// for the gateway, mirroring the teacher's common.MetricHandle surface
// (OpsCount/OpsLatency/OpsErrorCount) but backed by
// github.com/prometheus/client_golang instead of OpenTelemetry, since this
// repo exposes no HTTP scrape endpoint of its own (out of scope per
// spec.md §1) — callers register the Handle's collectors on whatever
// registry the embedding process already runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Handle is the metrics surface the gateway calls on every operation.
type Handle struct {
	opsTotal   *prometheus.CounterVec
	opsErrors  *prometheus.CounterVec
	opsLatency *prometheus.HistogramVec
	bytesRead  prometheus.Counter
	bytesWrite prometheus.Counter
}

// NewHandle builds a Handle and registers its collectors with reg.
func NewHandle(reg prometheus.Registerer) *Handle {
	h := &Handle{
		opsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kvfsfuse",
			Name:      "ops_total",
			Help:      "Count of gateway operations by name.",
		}, []string{"op"}),
		opsErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kvfsfuse",
			Name:      "ops_errors_total",
			Help:      "Count of gateway operation failures by name and error kind.",
		}, []string{"op", "kind"}),
		opsLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kvfsfuse",
			Name:      "ops_latency_seconds",
			Help:      "Gateway operation latency by name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kvfsfuse",
			Name:      "bytes_read_total",
			Help:      "Total bytes returned by read operations.",
		}),
		bytesWrite: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kvfsfuse",
			Name:      "bytes_written_total",
			Help:      "Total bytes accepted by write operations.",
		}),
	}

	reg.MustRegister(h.opsTotal, h.opsErrors, h.opsLatency, h.bytesRead, h.bytesWrite)
	return h
}

// OpsCount increments the total count for op.
func (h *Handle) OpsCount(op string) {
	h.opsTotal.WithLabelValues(op).Inc()
}

// OpsErrorCount increments the failure count for op/kind.
func (h *Handle) OpsErrorCount(op, kind string) {
	h.opsErrors.WithLabelValues(op, kind).Inc()
}

// OpsLatency records how long op took.
func (h *Handle) OpsLatency(op string, d time.Duration) {
	h.opsLatency.WithLabelValues(op).Observe(d.Seconds())
}

// BytesRead adds n to the read byte counter.
func (h *Handle) BytesRead(n int64) {
	h.bytesRead.Add(float64(n))
}

// BytesWritten adds n to the write byte counter.
func (h *Handle) BytesWritten(n int64) {
	h.bytesWrite.Add(float64(n))
}

// Track records OpsCount/OpsLatency/OpsErrorCount for a single gateway
// call: `defer h.Track(op, &err)()`.
func (h *Handle) Track(op string, errp *error) func() {
	start := time.Now()
	h.OpsCount(op)
	return func() {
		h.OpsLatency(op, time.Since(start))
		if errp != nil && *errp != nil {
			h.OpsErrorCount(op, errKind(*errp))
		}
	}
}
