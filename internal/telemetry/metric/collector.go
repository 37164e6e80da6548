package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StatsFunc reports the number of keys and bytes held by a backend.
type StatsFunc func(ctx context.Context) (keys, bytes uint64, err error)

// BackendCollector exposes backend size as gauges, sampled on scrape.
type BackendCollector struct {
	engine string
	stats  StatsFunc

	keysDesc  *prometheus.Desc
	bytesDesc *prometheus.Desc
	upDesc    *prometheus.Desc
}

// NewBackendCollector creates a collector for one backend.
func NewBackendCollector(engine string, stats StatsFunc) *BackendCollector {
	labels := prometheus.Labels{"engine": engine}
	return &BackendCollector{
		engine: engine,
		stats:  stats,
		keysDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "backend", "keys"),
			"Number of keys held by the backend", nil, labels),
		bytesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "backend", "size_bytes"),
			"Bytes held by the backend", nil, labels),
		upDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "backend", "up"),
			"Whether the last stats call succeeded", nil, labels),
	}
}

// Describe implements prometheus.Collector.
func (c *BackendCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keysDesc
	ch <- c.bytesDesc
	ch <- c.upDesc
}

// Collect implements prometheus.Collector.
func (c *BackendCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	keys, size, err := c.stats(ctx)
	if err != nil {
		ch <- prometheus.MustNewConstMetric(c.upDesc, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.upDesc, prometheus.GaugeValue, 1)
	ch <- prometheus.MustNewConstMetric(c.keysDesc, prometheus.GaugeValue, float64(keys))
	ch <- prometheus.MustNewConstMetric(c.bytesDesc, prometheus.GaugeValue, float64(size))
}
