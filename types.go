package relgraph

import (
	"maps"

	"github.com/hupe1980/relgraph/tokenset"
)

// RelationKey is the query key that pins a single relation token instead of
// an attribute value.
const RelationKey = ""

// Query maps attribute names to required value tokens. A nil value requires
// the attribute to have no value; absent names are unconstrained.
type Query map[string]any

// Clone returns a shallow copy of q.
func (q Query) Clone() Query {
	if q == nil {
		return nil
	}
	return maps.Clone(q)
}

// Cache is scratch space scoped to a single call. Resolvers, filters and
// expanders may memoize per-call state in it; it is never shared between
// calls.
type Cache map[string]any

// ExtractFunc returns the related objects a record holds for one attribute.
// A nil or empty result means the attribute has no value, which is itself
// indexed. Nil elements are ignored.
type ExtractFunc func(record any) ([]any, error)

// DumpFunc converts a domain object to a token.
type DumpFunc func(obj any, ix *Index, cache Cache) (any, error)

// LoadFunc converts a token back to its domain object.
type LoadFunc func(token any, ix *Index, cache Cache) (any, error)

// FilterFunc decides whether a chain is acceptable. The chain passed to a
// step filter is never circular and is a copy the filter may keep; target
// filters see the final tagging.
type FilterFunc func(chain Chain, query Query, ix *Index, cache Cache) bool

// AttributeSpec describes one indexed facet of a relationship record.
// Specs are immutable once passed to New.
type AttributeSpec struct {
	// Name is the query key of the attribute. Defaults to Element.
	Name string
	// Element identifies the extractor. Two specs may not share an element.
	Element string
	// Extract pulls the related objects out of a record.
	Extract ExtractFunc
	// Multiple allows more than one value per record.
	Multiple bool
	// Family selects the token type of the attribute values.
	Family tokenset.Family
	// Dump and Load translate values to tokens and back. Both or neither;
	// without them values are used as tokens directly.
	Dump DumpFunc
	Load LoadFunc
}

// Chain is a sequence of relations produced by a transitive search.
//
// A chain is circular when continuing it would revisit one of its own
// relations; Cycled then holds the queries that led back into the chain.
type Chain struct {
	Path   []any
	Cycled []Query
}

// IsCircular reports whether the chain ends in a cycle.
func (c Chain) IsCircular() bool {
	return len(c.Cycled) > 0
}

// Len returns the number of relations in the chain.
func (c Chain) Len() int {
	return len(c.Path)
}

// Last returns the final relation of the chain, or nil for an empty chain.
func (c Chain) Last() any {
	if len(c.Path) == 0 {
		return nil
	}
	return c.Path[len(c.Path)-1]
}
