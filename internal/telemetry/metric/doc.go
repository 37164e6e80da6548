// Package metric provides Prometheus metrics for persistval.
//
//   - prometheus.go: registry, store counters and the /metrics handler
//   - collector.go: collector exposing backend key and byte counts
//
// Metrics are exposed at /metrics in Prometheus format by `persistval watch`.
package metric
