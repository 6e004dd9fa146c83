package relgraph

import (
	"fmt"
	"iter"
	"slices"

	"github.com/hupe1980/relgraph/tokenset"
)

type searchOptions struct {
	maxDepth     int // 0: unlimited
	filter       FilterFunc
	targetQuery  Query
	targetFilter FilterFunc
	expander     Expander
	err          error
}

// SearchOption configures a transitive search.
type SearchOption func(*searchOptions)

// WithMaxDepth limits chains to n relations. n must be positive; the default
// is to follow chains until they end or cycle.
func WithMaxDepth(n int) SearchOption {
	return func(o *searchOptions) {
		if n < 1 {
			o.err = fmt.Errorf("%w: %d", ErrInvalidMaxDepth, n)
			return
		}
		o.maxDepth = n
	}
}

// WithUnlimitedDepth removes a depth limit set earlier in the option list.
func WithUnlimitedDepth() SearchOption {
	return func(o *searchOptions) {
		o.maxDepth = 0
	}
}

// WithFilter sets a per-step filter. Chains it rejects are neither yielded
// nor walked further.
func WithFilter(f FilterFunc) SearchOption {
	return func(o *searchOptions) {
		o.filter = f
	}
}

// WithTargetQuery only yields chains whose last relation matches q.
func WithTargetQuery(q Query) SearchOption {
	return func(o *searchOptions) {
		o.targetQuery = q
	}
}

// WithTargetFilter only yields chains accepted by f. Rejected chains are
// still walked further.
func WithTargetFilter(f FilterFunc) SearchOption {
	return func(o *searchOptions) {
		o.targetFilter = f
	}
}

// WithExpander overrides the index's default expander for one search.
func WithExpander(e Expander) SearchOption {
	return func(o *searchOptions) {
		o.expander = e
	}
}

// traversal is one prepared transitive search.
type traversal struct {
	ix           *Index
	query        Query
	maxDepth     int
	filter       FilterFunc
	hasTarget    bool
	targetData   tokenset.Set
	targetFilter FilterFunc
	expander     Expander
	findCycles   bool
}

// prepare validates a search and captures its configuration. Every
// configuration error surfaces here, before any result is produced.
func (ix *Index) prepare(op string, q Query, optFns []SearchOption, findCycles bool) (*traversal, error) {
	t, err := ix.newTraversal(q, optFns, findCycles)
	ix.metrics.RecordQuery(op, err)
	ix.logger.LogQuery(op, q, err)
	return t, err
}

func (ix *Index) newTraversal(q Query, optFns []SearchOption, findCycles bool) (*traversal, error) {
	var o searchOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.err != nil {
		return nil, o.err
	}

	expander := o.expander
	if expander == nil {
		expander = ix.defaultExpander
	}
	if expander == nil && o.maxDepth > 1 {
		return nil, ErrNoExpander
	}
	if err := ix.validateQuery(q); err != nil {
		return nil, err
	}

	t := &traversal{
		ix:           ix,
		query:        q,
		maxDepth:     o.maxDepth,
		filter:       o.filter,
		targetFilter: o.targetFilter,
		expander:     expander,
		findCycles:   findCycles,
	}
	if len(o.targetQuery) > 0 {
		if err := ix.validateQuery(o.targetQuery); err != nil {
			return nil, err
		}
		t.hasTarget = true
		t.setTarget(o.targetQuery)
	}
	return t, nil
}

func (t *traversal) setTarget(q Query) {
	if rels := t.ix.relData(q); rels != nil {
		t.targetData = rels.Clone()
	}
}

// frame is a branch of the search: the chain walked so far and the
// relations that may extend it.
type frame struct {
	history []any
	next    []any
	pos     int
}

// chains walks the relation graph. Frames are consumed front to back and new
// frames are appended, so every candidate of one branch is tried before the
// branches it spawned. A query resolving to relations already on the chain
// marks a cycle and is not followed.
func (t *traversal) chains() iter.Seq[Chain] {
	return func(yield func(Chain) bool) {
		if t.hasTarget && t.targetData == nil {
			return
		}

		ix := t.ix
		cache := Cache{}
		filterCache := Cache{}
		targetCache := Cache{}

		var frames []*frame
		if seed := ix.relData(t.query); seed != nil {
			frames = append(frames, &frame{next: tokenset.Slice(seed)})
		}

		for len(frames) > 0 {
			f := frames[0]
			if f.pos >= len(f.next) {
				frames[0] = nil
				frames = frames[1:]
				continue
			}
			rel := f.next[f.pos]
			f.pos++

			path := append(slices.Clip(f.history), rel)
			if t.filter != nil && !t.filter(Chain{Path: slices.Clone(path)}, t.query, ix, filterCache) {
				continue
			}

			walkFurther := t.maxDepth == 0 || len(path) < t.maxDepth
			var cycled []Query
			if t.expander != nil && (walkFurther || t.findCycles) {
				seen := tokenset.New(ix.relFamily, path...)
				next := tokenset.New(ix.relFamily)
				for _, q := range t.expander.Expand(path, t.query, ix, cache) {
					rels := t.resolve(q)
					switch {
					case rels == nil:
					case tokenset.Intersects(seen, rels):
						cycled = append(cycled, q)
					case walkFurther:
						for r := range rels.All() {
							next.Add(r)
						}
					}
				}
				if walkFurther && !next.IsEmpty() {
					frames = append(frames, &frame{history: path, next: tokenset.Slice(next)})
				}
			}

			c := Chain{Path: slices.Clone(path), Cycled: cycled}
			if !t.acceptTarget(c, targetCache) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// resolve runs an expander query. Queries naming unknown attributes are
// dropped.
func (t *traversal) resolve(q Query) tokenset.Set {
	if err := t.ix.validateQuery(q); err != nil {
		t.ix.logger.Warn("expander produced invalid query", "query", q, "error", err)
		return nil
	}
	return t.ix.relData(q)
}

func (t *traversal) acceptTarget(c Chain, cache Cache) bool {
	if t.hasTarget && !t.targetData.Contains(c.Last()) {
		return false
	}
	return t.targetFilter == nil || t.targetFilter(c, t.query, t.ix, cache)
}
