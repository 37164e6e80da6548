package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "persistval"

// Result labels.
const (
	ResultOK     = "ok"
	ResultError  = "error"
	ResultAbsent = "absent"
)

// Rehydration sources.
const (
	SourceOpen     = "open"
	SourceExternal = "external"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	Reads         *prometheus.CounterVec
	Writes        *prometheus.CounterVec
	WriteDuration *prometheus.HistogramVec
	Rehydrations  *prometheus.CounterVec
}

// NewRegistry creates a registry with persistval and Go runtime metrics.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		Reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "reads_total",
			Help:      "Backend reads performed by stores, by result",
		}, []string{"engine", "result"}),
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Backend writes performed by stores, by result",
		}, []string{"engine", "result"}),
		WriteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "write_duration_seconds",
			Help:      "Latency of synchronous backend writes",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"engine"}),
		Rehydrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "rehydrations_total",
			Help:      "Values loaded from persisted state, by source",
		}, []string{"source"}),
	}

	r.registry.MustRegister(
		r.Reads,
		r.Writes,
		r.WriteDuration,
		r.Rehydrations,
		collectors.NewGoCollector(),
	)
	return r
}

// ObserveRead counts one backend read.
func (r *Registry) ObserveRead(engine, result string) {
	if r == nil {
		return
	}
	r.Reads.WithLabelValues(engine, result).Inc()
}

// ObserveWrite counts one backend write and its latency.
func (r *Registry) ObserveWrite(engine string, err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.Writes.WithLabelValues(engine, result).Inc()
	r.WriteDuration.WithLabelValues(engine).Observe(elapsed.Seconds())
}

// ObserveRehydration counts a value taken from persisted state.
func (r *Registry) ObserveRehydration(source string) {
	if r == nil {
		return
	}
	r.Rehydrations.WithLabelValues(source).Inc()
}

// MustRegister registers additional collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// Prometheus returns the underlying registry for components that register
// their own metrics, such as the Badger backend.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
