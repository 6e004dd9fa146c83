package container

import (
	"fmt"

	"github.com/hupe1980/relgraph"
)

// DefaultBatchLimit bounds the number of queries Batch runs at once.
const DefaultBatchLimit = 8

type options struct {
	batchLimit int
	logger     *relgraph.Logger
	indexOpts  []relgraph.Option
}

// Option configures a Container.
type Option func(*options)

// WithBatchLimit bounds the concurrency of Batch. n < 1 means no limit.
func WithBatchLimit(n int) Option {
	return func(o *options) {
		o.batchLimit = n
	}
}

// WithLogger sets the logger of the container and its index.
func WithLogger(logger *relgraph.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = relgraph.NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector sets the metrics collector of the index.
func WithMetricsCollector(mc relgraph.MetricsCollector) Option {
	return WithIndexOptions(relgraph.WithMetricsCollector(mc))
}

// WithIndexOptions passes options through to the underlying index.
// Relation resolver and default expander are owned by the container and
// cannot be overridden.
func WithIndexOptions(optFns ...relgraph.Option) Option {
	return func(o *options) {
		o.indexOpts = append(o.indexOpts, optFns...)
	}
}

type queryOptions struct {
	maxDepth int // 0: unlimited
	minDepth int // 0: none
	filter   func(Record) bool
	err      error
}

// QueryOption configures a search.
type QueryOption func(*queryOptions)

// WithMaxDepth limits chains to n relationships. 0 removes the limit; the
// default is 1.
func WithMaxDepth(n int) QueryOption {
	return func(o *queryOptions) {
		if n < 0 {
			o.err = fmt.Errorf("%w: %d", relgraph.ErrInvalidMaxDepth, n)
			return
		}
		o.maxDepth = n
	}
}

// WithMinDepth only returns results reached by chains of at least n
// relationships.
func WithMinDepth(n int) QueryOption {
	return func(o *queryOptions) {
		if n < 1 {
			o.err = fmt.Errorf("%w: %d", ErrInvalidMinDepth, n)
			return
		}
		o.minDepth = n
	}
}

// WithFilter only follows relationships accepted by keep.
func WithFilter(keep func(Record) bool) QueryOption {
	return func(o *queryOptions) {
		o.filter = keep
	}
}

func applyQueryOptions(optFns []QueryOption) (queryOptions, error) {
	o := queryOptions{maxDepth: 1}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o, o.err
}
