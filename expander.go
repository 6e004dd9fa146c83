package relgraph

// Expander proposes the queries that continue a transitive search.
//
// Expand is called with the chain walked so far (never empty) and the
// original query of the search. The cache is private to one search.
type Expander interface {
	Expand(chain []any, query Query, ix *Index, cache Cache) []Query
}

// ExpanderFunc adapts a function to the Expander interface.
type ExpanderFunc func(chain []any, query Query, ix *Index, cache Cache) []Query

// Expand implements Expander.
func (f ExpanderFunc) Expand(chain []any, query Query, ix *Index, cache Cache) []Query {
	return f(chain, query, ix, cache)
}

// Transposing is the expander for attributes that pair up as forward and
// reverse roles, such as "source" and "target".
//
// The original query must constrain exactly one of the two names; that name
// is dynamic and its partner is read from the last relation of the chain.
// Each step asks for the relations whose dynamic attribute holds one of the
// partner values of the last relation, keeping every other constraint of the
// original query. When both names are constrained no expansion is possible.
//
// Either name may be RelationKey, in which case the relation token itself
// takes the place of the partner value.
type Transposing struct {
	names [2]string
}

var _ Expander = Transposing{}

// NewTransposing returns a transposing expander for the given attribute pair.
func NewTransposing(name1, name2 string) Transposing {
	return Transposing{names: [2]string{name1, name2}}
}

// Names returns the paired attribute names.
func (t Transposing) Names() (string, string) {
	return t.names[0], t.names[1]
}

type transposePlan struct {
	ok          bool
	dynamic     string
	counterpart string
	static      Query
}

const transposeCacheKey = "relgraph.transposing"

func (t Transposing) plan(query Query, cache Cache) transposePlan {
	if p, ok := cache[transposeCacheKey].(transposePlan); ok {
		return p
	}

	p := transposePlan{static: Query{}}
	for name, val := range query {
		i := t.index(name)
		if i < 0 {
			p.static[name] = val
			continue
		}
		if p.ok {
			// Both names constrained: no transitive search known.
			p = transposePlan{}
			break
		}
		p.ok = true
		p.dynamic = name
		p.counterpart = t.names[1-i]
	}

	cache[transposeCacheKey] = p
	return p
}

func (t Transposing) index(name string) int {
	switch name {
	case t.names[0]:
		return 0
	case t.names[1]:
		return 1
	default:
		return -1
	}
}

// Expand implements Expander.
func (t Transposing) Expand(chain []any, query Query, ix *Index, cache Cache) []Query {
	p := t.plan(query, cache)
	if !p.ok || len(chain) == 0 {
		return nil
	}

	last := chain[len(chain)-1]
	if p.counterpart == RelationKey {
		return []Query{p.with(last)}
	}

	a, err := ix.attribute(p.counterpart)
	if err != nil {
		return nil
	}
	vals := ix.valueTokens(a, last)
	out := make([]Query, 0, vals.Len())
	for v := range vals.All() {
		out = append(out, p.with(v))
	}
	return out
}

func (p transposePlan) with(v any) Query {
	q := make(Query, len(p.static)+1)
	for name, val := range p.static {
		q[name] = val
	}
	q[p.dynamic] = v
	return q
}
