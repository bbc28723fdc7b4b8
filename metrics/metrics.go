// SPDX-License-Identifier: MIT

// Package metrics counts read/write operations with Prometheus collectors.
// A nil *Collector is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "anndata"

// Operation names.
const (
	OpRead  = "read"
	OpWrite = "write"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector groups the operation counters and the duration histogram.
type Collector struct {
	ops      *prometheus.CounterVec
	elements *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ prometheus.Collector = (*Collector)(nil)

// New returns an unregistered Collector.
func New() *Collector {
	return &Collector{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Read and write operations by format and outcome.",
		}, []string{"op", "format", "outcome"}),
		elements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "elements_total",
			Help:      "Top-level elements (X, obs, var, uns) processed by format.",
		}, []string{"op", "format", "element"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Wall time of read and write operations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"op", "format"}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.ops.Describe(ch)
	c.elements.Describe(ch)
	c.duration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.ops.Collect(ch)
	c.elements.Collect(ch)
	c.duration.Collect(ch)
}

// Observe records one finished operation started at start.
func (c *Collector) Observe(op, format string, start time.Time, err error) {
	if c == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	c.ops.WithLabelValues(op, format, outcome).Inc()
	c.duration.WithLabelValues(op, format).Observe(time.Since(start).Seconds())
}

// Element counts one element handled by op.
func (c *Collector) Element(op, format, element string) {
	if c == nil {
		return
	}
	c.elements.WithLabelValues(op, format, element).Inc()
}

// Operations returns the operation counter for tests and reporting.
func (c *Collector) Operations() *prometheus.CounterVec { return c.ops }

// Elements returns the element counter.
func (c *Collector) Elements() *prometheus.CounterVec { return c.elements }
