package relgraph

import (
	"log/slog"

	"github.com/hupe1980/relgraph/tokenset"
)

const (
	// DefaultRebuildThreshold is the largest number of removed values for which
	// a reindex mutates the cached value set in place instead of replacing it.
	DefaultRebuildThreshold = 25

	// DefaultLinearFilterRatio is the size ratio between the larger and the
	// smaller operand above which an intersection filters the smaller set by
	// membership in the larger one instead of running a full intersection.
	DefaultLinearFilterRatio = 10
)

type options struct {
	relFamily         tokenset.Family
	dumpRel           DumpFunc
	loadRel           LoadFunc
	defaultExpander   Expander
	rebuildThreshold  int
	linearFilterRatio int
	metricsCollector  MetricsCollector
	logger            *Logger
}

// Option configures the Index constructor.
type Option func(*options)

// WithRelationFamily sets the token family of relation tokens.
// The default is tokenset.Int32.
func WithRelationFamily(f tokenset.Family) Option {
	return func(o *options) {
		o.relFamily = f
	}
}

// WithRelationResolver configures how relationship records are translated to
// relation tokens and back. Both functions must be given, or neither; without
// a resolver the records themselves are used as relation tokens.
//
// Example with a registry:
//
//	reg := relgraph.NewRegistry()
//	ix, _ := relgraph.New(attrs, relgraph.WithRelationResolver(reg.Dump, reg.Load))
func WithRelationResolver(dump DumpFunc, load LoadFunc) Option {
	return func(o *options) {
		o.dumpRel = dump
		o.loadRel = load
	}
}

// WithDefaultExpander sets the expander used by searches that do not pass
// their own via WithExpander.
func WithDefaultExpander(e Expander) Option {
	return func(o *options) {
		o.defaultExpander = e
	}
}

// WithRebuildThreshold tunes the reindex strategy. When at most n values are
// removed from an attribute the cached set is patched in place, otherwise it
// is replaced by the freshly extracted set. n < 0 always replaces.
func WithRebuildThreshold(n int) Option {
	return func(o *options) {
		o.rebuildThreshold = n
	}
}

// WithLinearFilterRatio tunes the intersection strategy. When the larger of
// two candidate sets is at least ratio times the smaller, the smaller set is
// filtered by membership tests. Values < 1 are treated as 1.
func WithLinearFilterRatio(ratio int) Option {
	return func(o *options) {
		o.linearFilterRatio = max(ratio, 1)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &relgraph.BasicMetricsCollector{}
//	ix, _ := relgraph.New(attrs, relgraph.WithMetricsCollector(metrics))
//	// ... use ix ...
//	stats := metrics.GetStats()
//	fmt.Printf("Indexed: %d, Avg latency: %dns\n", stats.IndexCount, stats.IndexAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		relFamily:         tokenset.Int32,
		rebuildThreshold:  DefaultRebuildThreshold,
		linearFilterRatio: DefaultLinearFilterRatio,
		metricsCollector:  NoopMetricsCollector{},
		logger:            NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
