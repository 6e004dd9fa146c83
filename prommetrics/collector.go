// Package prommetrics exports relation index metrics to Prometheus.
package prommetrics

import (
	"errors"
	"time"

	"github.com/hupe1980/relgraph"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "relgraph"

// Collector implements relgraph.MetricsCollector with Prometheus metrics.
type Collector struct {
	opLatency *prometheus.HistogramVec
	indexes   *prometheus.CounterVec
	unindexes *prometheus.CounterVec
	queries   *prometheus.CounterVec
}

var _ relgraph.MetricsCollector = (*Collector)(nil)

type options struct {
	namespace string
	buckets   []float64
}

// Option configures a Collector.
type Option func(*options)

// WithNamespace overrides DefaultNamespace.
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithBuckets sets the latency histogram buckets in seconds.
func WithBuckets(buckets []float64) Option {
	return func(o *options) {
		o.buckets = buckets
	}
}

// New creates a Collector and registers its metrics on reg. Metrics that
// are already registered with the same descriptor are reused.
func New(reg prometheus.Registerer, optFns ...Option) (*Collector, error) {
	o := options{
		namespace: DefaultNamespace,
		buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
	}
	for _, fn := range optFns {
		fn(&o)
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of index mutations.",
			Buckets:   o.buckets,
		}, []string{"op", "status"}),
		indexes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "index_total",
			Help:      "Relations indexed, by kind (insert or reindex) and status.",
		}, []string{"kind", "status"}),
		unindexes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "unindex_total",
			Help:      "Unindex calls, by whether the relation was present.",
		}, []string{"result"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "queries_total",
			Help:      "Queries prepared, by operation and status.",
		}, []string{"op", "status"}),
	}

	if reg != nil {
		var err error
		if c.opLatency, err = register(reg, c.opLatency); err != nil {
			return nil, err
		}
		if c.indexes, err = register(reg, c.indexes); err != nil {
			return nil, err
		}
		if c.unindexes, err = register(reg, c.unindexes); err != nil {
			return nil, err
		}
		if c.queries, err = register(reg, c.queries); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordIndex implements relgraph.MetricsCollector.
func (c *Collector) RecordIndex(d time.Duration, reindexed bool, err error) {
	kind := "insert"
	if reindexed {
		kind = "reindex"
	}
	c.opLatency.WithLabelValues("index", status(err)).Observe(d.Seconds())
	c.indexes.WithLabelValues(kind, status(err)).Inc()
}

// RecordUnindex implements relgraph.MetricsCollector.
func (c *Collector) RecordUnindex(d time.Duration, found bool) {
	result := "miss"
	if found {
		result = "hit"
	}
	c.opLatency.WithLabelValues("unindex", "success").Observe(d.Seconds())
	c.unindexes.WithLabelValues(result).Inc()
}

// RecordQuery implements relgraph.MetricsCollector.
func (c *Collector) RecordQuery(op string, err error) {
	c.queries.WithLabelValues(op, status(err)).Inc()
}
