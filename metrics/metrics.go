// Package metrics exposes the engine's dispatcher and handler counters
// as a prometheus.Collector. The engine only provides the collector;
// registering it with a registry, and serving it, is the embedding
// application's job.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/voltlog/voltlog/dispatch"
	"github.com/voltlog/voltlog/handler"
)

var (
	descEnqueued = prometheus.NewDesc(
		"voltlog_dispatcher_enqueued_total",
		"Records accepted onto the dispatch queue",
		nil, nil,
	)
	descDropped = prometheus.NewDesc(
		"voltlog_dispatcher_dropped_total",
		"Records dropped because the dispatch queue was full or stopped",
		nil, nil,
	)
	descFlushed = prometheus.NewDesc(
		"voltlog_dispatcher_flushed_total",
		"Records delivered to handlers",
		nil, nil,
	)
	descBatches = prometheus.NewDesc(
		"voltlog_dispatcher_batches_total",
		"Flush batches executed by the dispatch loop",
		nil, nil,
	)

	descProcessed = prometheus.NewDesc(
		"voltlog_handler_processed_total",
		"Records written by a handler",
		[]string{"handler"}, nil,
	)
	descSkipped = prometheus.NewDesc(
		"voltlog_handler_skipped_total",
		"Records skipped by a handler's severity threshold",
		[]string{"handler"}, nil,
	)
	descWriteErrors = prometheus.NewDesc(
		"voltlog_handler_write_errors_total",
		"Write failures reported by a handler",
		[]string{"handler"}, nil,
	)
	descRotations = prometheus.NewDesc(
		"voltlog_handler_rotations_total",
		"Log file rotations performed by a handler",
		[]string{"handler"}, nil,
	)
)

// Collector reads dispatcher and handler counters on every scrape.
// The dispatcher may be nil when only handler stats are wanted.
type Collector struct {
	dispatcher *dispatch.Dispatcher
	handlers   []handler.StatsProvider
}

// NewCollector builds a collector over the given dispatcher and
// handlers. Handlers that do not implement handler.StatsProvider are
// ignored.
func NewCollector(d *dispatch.Dispatcher, handlers ...handler.Handler) *Collector {
	c := &Collector{dispatcher: d}
	for _, h := range handlers {
		if sp, ok := h.(handler.StatsProvider); ok {
			c.handlers = append(c.handlers, sp)
		}
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- descEnqueued
	ch <- descDropped
	ch <- descFlushed
	ch <- descBatches
	ch <- descProcessed
	ch <- descSkipped
	ch <- descWriteErrors
	ch <- descRotations
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if d := c.dispatcher; d != nil {
		ch <- prometheus.MustNewConstMetric(descEnqueued, prometheus.CounterValue, float64(d.Enqueued()))
		ch <- prometheus.MustNewConstMetric(descDropped, prometheus.CounterValue, float64(d.Dropped()))
		ch <- prometheus.MustNewConstMetric(descFlushed, prometheus.CounterValue, float64(d.Flushed()))
		ch <- prometheus.MustNewConstMetric(descBatches, prometheus.CounterValue, float64(d.Batches()))
	}
	for _, sp := range c.handlers {
		name := sp.Name()
		snap := sp.Stats()
		ch <- prometheus.MustNewConstMetric(descProcessed, prometheus.CounterValue, float64(snap.Processed), name)
		ch <- prometheus.MustNewConstMetric(descSkipped, prometheus.CounterValue, float64(snap.Skipped), name)
		ch <- prometheus.MustNewConstMetric(descWriteErrors, prometheus.CounterValue, float64(snap.WriteErrors), name)
		ch <- prometheus.MustNewConstMetric(descRotations, prometheus.CounterValue, float64(snap.Rotations), name)
	}
}
