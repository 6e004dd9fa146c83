package relgraph

import (
	"cmp"
	"slices"

	"github.com/hupe1980/relgraph/tokenset"
)

// candidate is one constraint's relation set with its (upper bound) size.
type candidate struct {
	count int
	rels  tokenset.Set
}

// MatchingRelations returns the relations satisfying every constraint of q.
//
// The result is nil when nothing matches. It may be a live internal set and
// must not be modified; use FindRelationTokenSet for an owned copy. An empty
// query matches every indexed relation.
func (ix *Index) MatchingRelations(q Query) (tokenset.Set, error) {
	if err := ix.validateQuery(q); err != nil {
		return nil, err
	}
	return ix.relData(q), nil
}

// FindRelationTokenSet returns a copy of the relations matching q. It never
// returns a nil set.
func (ix *Index) FindRelationTokenSet(q Query) (tokenset.Set, error) {
	rels, err := ix.MatchingRelations(q)
	if err != nil {
		return nil, err
	}
	if rels == nil {
		return tokenset.New(ix.relFamily), nil
	}
	return rels.Clone(), nil
}

// FindValueTokenSet returns the value tokens relToken holds for the named
// attribute. The result is empty when the relation has no value or is not
// indexed. It may be a live internal set and must not be modified.
func (ix *Index) FindValueTokenSet(relToken any, name string) (tokenset.Set, error) {
	a, err := ix.attribute(name)
	if err != nil {
		return nil, err
	}
	return ix.valueTokens(a, relToken), nil
}

func (ix *Index) valueTokens(a *attribute, relToken any) tokenset.Set {
	if rel, err := ix.relFamily.Normalize(relToken); err == nil {
		if set := ix.relCache[relKey{rel, a.spec.Name}]; set != nil {
			return set
		}
	}
	return tokenset.New(a.spec.Family)
}

func (ix *Index) validateQuery(q Query) error {
	for name := range q {
		if name == RelationKey {
			continue
		}
		if _, err := ix.attribute(name); err != nil {
			return err
		}
	}
	return nil
}

// relData resolves a validated query. Constraints are intersected smallest
// first: each step combines the two smallest candidates, either by filtering
// the smaller through membership tests on the larger (when it is at most
// 1/linearFilterRatio of its size) or by a full set intersection.
func (ix *Index) relData(q Query) tokenset.Set {
	if len(q) == 0 {
		if ix.relTokens.IsEmpty() {
			return nil
		}
		return ix.relTokens
	}

	cands := make([]candidate, 0, len(q))
	for name, tok := range q {
		c, ok := ix.lookup(name, tok)
		if !ok {
			return nil
		}
		cands = append(cands, c)
	}

	slices.SortStableFunc(cands, func(a, b candidate) int {
		return cmp.Compare(a.count, b.count)
	})

	for len(cands) > 1 {
		small, large := cands[0], cands[1]
		var rels tokenset.Set
		if small.count*ix.linearFilterRatio <= large.count {
			rels = tokenset.Filter(small.rels, large.rels.Contains)
		} else {
			rels = tokenset.Intersect(small.rels, large.rels)
		}
		if rels.IsEmpty() {
			return nil
		}

		merged := candidate{count: small.count, rels: rels}
		cands = cands[2:]
		i, _ := slices.BinarySearchFunc(cands, merged.count, func(c candidate, n int) int {
			return cmp.Compare(c.count, n)
		})
		cands = slices.Insert(cands, i, merged)
	}

	return cands[0].rels
}

// lookup returns the posting for one constraint. ok is false when the
// constraint cannot be satisfied.
func (ix *Index) lookup(name string, tok any) (candidate, bool) {
	if name == RelationKey {
		rel, err := ix.relFamily.Normalize(tok)
		if err != nil || !ix.relTokens.Contains(rel) {
			return candidate{}, false
		}
		return candidate{count: 1, rels: tokenset.New(ix.relFamily, rel)}, true
	}

	var p *posting
	if tok == nil {
		p = ix.empty[name]
	} else {
		a := ix.attrs[name]
		v, err := a.spec.Family.Normalize(tok)
		if err != nil {
			return candidate{}, false
		}
		p = a.values[v]
	}
	if p == nil || p.count == 0 {
		return candidate{}, false
	}
	return candidate{count: p.count, rels: p.rels}, true
}
