package relgraph

import (
	"fmt"
	"iter"

	"github.com/hupe1980/relgraph/tokenset"
)

// FindValueTokens searches transitively from q and yields the value tokens
// of the named attribute held by the relations found.
//
// Each relation contributes once, however many chains reach it, and each
// token is yielded once for the whole search. Cycles end a branch but are
// not reported.
//
// Example (relations A→B, B→C, C→A with a source/target Transposing expander):
//
//	seq, _ := ix.FindValueTokens("target", relgraph.Query{"source": a})
//	for tok := range seq {
//	    fmt.Println(tok) // b, c, a
//	}
func (ix *Index) FindValueTokens(name string, q Query, optFns ...SearchOption) (iter.Seq[any], error) {
	a, err := ix.attribute(name)
	if err != nil {
		return nil, err
	}
	t, err := ix.prepare("find_value_tokens", q, optFns, false)
	if err != nil {
		return nil, err
	}

	return func(yield func(any) bool) {
		seenRels := tokenset.New(ix.relFamily)
		seen := tokenset.New(a.spec.Family)
		for c := range t.chains() {
			rel := c.Last()
			if seenRels.Contains(rel) {
				continue
			}
			seenRels.Add(rel)

			vals := ix.relCache[relKey{rel, name}]
			if vals == nil {
				continue
			}
			for v := range vals.All() {
				if seen.Contains(v) {
					continue
				}
				seen.Add(v)
				if !yield(v) {
					return
				}
			}
		}
	}, nil
}

// FindValues is FindValueTokens with every token resolved through the
// attribute's loader. Iteration stops at the first resolution error.
func (ix *Index) FindValues(name string, q Query, optFns ...SearchOption) (iter.Seq2[any, error], error) {
	toks, err := ix.FindValueTokens(name, q, optFns...)
	if err != nil {
		return nil, err
	}
	a := ix.attrs[name]

	return func(yield func(any, error) bool) {
		cache := Cache{}
		for tok := range toks {
			obj, err := ix.loadValue(a, tok, cache)
			if !yield(obj, err) || err != nil {
				return
			}
		}
	}, nil
}

// FindRelationTokens searches transitively from q and yields every relation
// reached, once.
func (ix *Index) FindRelationTokens(q Query, optFns ...SearchOption) (iter.Seq[any], error) {
	t, err := ix.prepare("find_relation_tokens", q, optFns, false)
	if err != nil {
		return nil, err
	}

	return func(yield func(any) bool) {
		seen := tokenset.New(ix.relFamily)
		for c := range t.chains() {
			rel := c.Last()
			if seen.Contains(rel) {
				continue
			}
			seen.Add(rel)
			if !yield(rel) {
				return
			}
		}
	}, nil
}

// FindRelations is FindRelationTokens with every token resolved to its
// relationship record.
func (ix *Index) FindRelations(q Query, optFns ...SearchOption) (iter.Seq2[any, error], error) {
	toks, err := ix.FindRelationTokens(q, optFns...)
	if err != nil {
		return nil, err
	}

	return func(yield func(any, error) bool) {
		cache := Cache{}
		for tok := range toks {
			rec, err := ix.loadRelation(tok, cache)
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}, nil
}

// FindRelationTokenChains searches transitively from q and yields every
// chain of relation tokens, including circular ones.
func (ix *Index) FindRelationTokenChains(q Query, optFns ...SearchOption) (iter.Seq[Chain], error) {
	t, err := ix.prepare("find_relation_token_chains", q, optFns, true)
	if err != nil {
		return nil, err
	}
	return t.chains(), nil
}

// FindRelationChains is FindRelationTokenChains with the chain paths
// resolved to relationship records. Cycled queries stay token queries.
func (ix *Index) FindRelationChains(q Query, optFns ...SearchOption) (iter.Seq2[Chain, error], error) {
	chains, err := ix.FindRelationTokenChains(q, optFns...)
	if err != nil {
		return nil, err
	}

	return func(yield func(Chain, error) bool) {
		cache := Cache{}
		for c := range chains {
			path := make([]any, len(c.Path))
			for i, tok := range c.Path {
				rec, err := ix.loadRelation(tok, cache)
				if err != nil {
					yield(Chain{}, err)
					return
				}
				path[i] = rec
			}
			if !yield(Chain{Path: path, Cycled: c.Cycled}, nil) {
				return
			}
		}
	}, nil
}

// IsLinked reports whether a search from q yields at least one chain.
func (ix *Index) IsLinked(q Query, optFns ...SearchOption) (bool, error) {
	t, err := ix.prepare("is_linked", q, optFns, false)
	if err != nil {
		return false, err
	}
	for range t.chains() {
		return true, nil
	}
	return false, nil
}

// ApplyQuery is the single-entry query form used by catalog integrations.
// It holds exactly one of the keys "relationships" (a Query) or "values"
// (a ValuesQuery).
type ApplyQuery map[string]any

// ValuesQuery is the "values" form of an ApplyQuery.
type ValuesQuery struct {
	ResultName   string
	Query        Query
	MaxDepth     int // 0: unlimited
	Filter       FilterFunc
	TargetQuery  Query
	TargetFilter FilterFunc
	Expander     Expander
}

// Apply evaluates an ApplyQuery and returns the resulting token set. The
// result family must be Int32 or Int64.
func (ix *Index) Apply(q ApplyQuery) (tokenset.Set, error) {
	if len(q) != 1 {
		return nil, fmt.Errorf("%w: one key in the primary query, got %d", ErrMalformedQuery, len(q))
	}

	for kind, body := range q {
		switch kind {
		case "relationships":
			rq, ok := asQuery(body)
			if !ok {
				return nil, fmt.Errorf("%w: relationships query is %T", ErrMalformedQuery, body)
			}
			if !isIntegerFamily(ix.relFamily) {
				return nil, fmt.Errorf("%w: relations use %s", ErrUnsupportedFamily, ix.relFamily)
			}
			return ix.FindRelationTokenSet(rq)
		case "values":
			vq, ok := body.(ValuesQuery)
			if !ok {
				return nil, fmt.Errorf("%w: values query is %T", ErrMalformedQuery, body)
			}
			return ix.applyValues(vq)
		default:
			return nil, fmt.Errorf("%w: unknown query type %q", ErrMalformedQuery, kind)
		}
	}
	panic("unreachable")
}

func (ix *Index) applyValues(vq ValuesQuery) (tokenset.Set, error) {
	a, err := ix.attribute(vq.ResultName)
	if err != nil {
		return nil, err
	}
	if !isIntegerFamily(a.spec.Family) {
		return nil, fmt.Errorf("%w: attribute %q uses %s", ErrUnsupportedFamily, vq.ResultName, a.spec.Family)
	}

	optFns := []SearchOption{
		WithFilter(vq.Filter),
		WithTargetQuery(vq.TargetQuery),
		WithTargetFilter(vq.TargetFilter),
		WithExpander(vq.Expander),
	}
	if vq.MaxDepth != 0 {
		optFns = append(optFns, WithMaxDepth(vq.MaxDepth))
	}

	toks, err := ix.FindValueTokens(vq.ResultName, vq.Query, optFns...)
	if err != nil {
		return nil, err
	}
	return tokenset.FromSeq(a.spec.Family, toks), nil
}

func asQuery(v any) (Query, bool) {
	switch q := v.(type) {
	case Query:
		return q, true
	case map[string]any:
		return Query(q), true
	case nil:
		return Query{}, true
	default:
		return nil, false
	}
}

func isIntegerFamily(f tokenset.Family) bool {
	return f == tokenset.Int32 || f == tokenset.Int64
}
