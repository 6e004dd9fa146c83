package relgraph

import (
	"fmt"
	"slices"
	"time"

	"github.com/hupe1980/relgraph/tokenset"
)

// Index is an inverted index over relationship records.
//
// For every attribute it keeps value token → (count, relation tokens)
// postings, a posting of relations without a value, and a cache of the
// value tokens each relation contributes. The cache is the source of truth
// for diffs on reindex and for value lookups during searches.
//
// Index performs no locking. Mutations must be serialized by the caller and
// must not overlap with the consumption of a lazy search result of the same
// index. Concurrent read-only searches are safe.
type Index struct {
	attrs map[string]*attribute
	names []string // declaration order

	relFamily tokenset.Family
	dumpRel   DumpFunc
	loadRel   LoadFunc

	relTokens tokenset.Set
	relLength int
	relCache  map[relKey]tokenset.Set // nil set: attribute has no value
	empty     map[string]*posting

	defaultExpander   Expander
	rebuildThreshold  int
	linearFilterRatio int

	metrics MetricsCollector
	logger  *Logger
}

type relKey struct {
	rel  any
	name string
}

type attribute struct {
	spec   AttributeSpec
	values map[any]*posting
}

// posting holds the relations sharing one attribute value.
// count always equals rels.Len() and is never zero for a stored posting.
type posting struct {
	count int
	rels  tokenset.Set
}

// New creates an index over the given attributes.
//
// Attribute names (defaulting to Element) must be non-empty and unique, as
// must non-empty elements. Each spec needs an extractor and either both or
// none of Dump and Load.
func New(attrs []AttributeSpec, optFns ...Option) (*Index, error) {
	opts := applyOptions(optFns)

	if !opts.relFamily.Valid() {
		return nil, fmt.Errorf("%w: relation family %s", ErrInvalidAttribute, opts.relFamily)
	}
	if (opts.dumpRel == nil) != (opts.loadRel == nil) {
		return nil, fmt.Errorf("%w: relation resolver", ErrResolverPair)
	}

	ix := &Index{
		attrs:             make(map[string]*attribute, len(attrs)),
		names:             make([]string, 0, len(attrs)),
		relFamily:         opts.relFamily,
		dumpRel:           opts.dumpRel,
		loadRel:           opts.loadRel,
		relTokens:         tokenset.New(opts.relFamily),
		relCache:          make(map[relKey]tokenset.Set),
		empty:             make(map[string]*posting),
		defaultExpander:   opts.defaultExpander,
		rebuildThreshold:  opts.rebuildThreshold,
		linearFilterRatio: opts.linearFilterRatio,
		metrics:           opts.metricsCollector,
		logger:            opts.logger,
	}

	elements := make(map[string]struct{}, len(attrs))
	for _, spec := range attrs {
		if spec.Name == "" {
			spec.Name = spec.Element
		}
		switch {
		case spec.Name == RelationKey:
			return nil, fmt.Errorf("%w: attribute name must not be empty", ErrInvalidAttribute)
		case spec.Extract == nil:
			return nil, fmt.Errorf("%w: attribute %q has no extractor", ErrInvalidAttribute, spec.Name)
		case !spec.Family.Valid():
			return nil, fmt.Errorf("%w: attribute %q has family %s", ErrInvalidAttribute, spec.Name, spec.Family)
		case (spec.Dump == nil) != (spec.Load == nil):
			return nil, fmt.Errorf("%w: attribute %q", ErrResolverPair, spec.Name)
		}
		if _, dup := ix.attrs[spec.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAttribute, spec.Name)
		}
		if spec.Element != "" {
			if _, dup := elements[spec.Element]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateExtractor, spec.Element)
			}
			elements[spec.Element] = struct{}{}
		}
		ix.attrs[spec.Name] = &attribute{
			spec:   spec,
			values: make(map[any]*posting),
		}
		ix.names = append(ix.names, spec.Name)
	}

	return ix, nil
}

// Attributes returns the attribute names in declaration order.
func (ix *Index) Attributes() []string {
	return slices.Clone(ix.names)
}

// AttributeFamily returns the token family of the named attribute.
func (ix *Index) AttributeFamily(name string) (tokenset.Family, error) {
	a, err := ix.attribute(name)
	if err != nil {
		return 0, err
	}
	return a.spec.Family, nil
}

// RelationFamily returns the token family of relation tokens.
func (ix *Index) RelationFamily() tokenset.Family {
	return ix.relFamily
}

// DocumentCount returns the number of indexed relations.
func (ix *Index) DocumentCount() int {
	return ix.relLength
}

// WordCount always returns 0; the index does not index words.
func (ix *Index) WordCount() int {
	return 0
}

// Contains reports whether relToken is indexed.
func (ix *Index) Contains(relToken any) bool {
	rel, err := ix.relFamily.Normalize(relToken)
	return err == nil && ix.relTokens.Contains(rel)
}

// RelationTokens returns a copy of the indexed relation tokens.
func (ix *Index) RelationTokens() tokenset.Set {
	return ix.relTokens.Clone()
}

func (ix *Index) attribute(name string) (*attribute, error) {
	a, ok := ix.attrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	return a, nil
}

// Index tokenizes record with the relation resolver and indexes it.
func (ix *Index) Index(record any) error {
	tok, err := ix.TokenizeRelation(record)
	if err != nil {
		return err
	}
	return ix.IndexRecord(tok, record)
}

// Unindex tokenizes record with the relation resolver and unindexes it.
func (ix *Index) Unindex(record any) error {
	tok, err := ix.TokenizeRelation(record)
	if err != nil {
		return err
	}
	return ix.UnindexRecord(tok)
}

// IndexRecord indexes record under relToken.
//
// The first call for a token inserts the record into every attribute. Later
// calls diff the extracted values against the cached ones and apply only the
// delta. All values are extracted and tokenized before anything changes, so
// a failing extractor or resolver leaves the index untouched.
func (ix *Index) IndexRecord(relToken, record any) error {
	start := time.Now()
	reindexed, err := ix.indexRecord(relToken, record)
	ix.metrics.RecordIndex(time.Since(start), reindexed, err)
	ix.logger.LogIndex(relToken, reindexed, err)
	return err
}

func (ix *Index) indexRecord(relToken, record any) (bool, error) {
	rel, err := ix.relFamily.Normalize(relToken)
	if err != nil {
		return false, err
	}

	cache := Cache{}
	values := make([]tokenset.Set, len(ix.names))
	for i, name := range ix.names {
		set, err := ix.extractValueTokens(ix.attrs[name], record, cache)
		if err != nil {
			return false, err
		}
		values[i] = set
	}

	if !ix.relTokens.Contains(rel) {
		for i, name := range ix.names {
			ix.addValues(name, rel, values[i])
			ix.relCache[relKey{rel, name}] = values[i]
		}
		ix.relTokens.Add(rel)
		ix.relLength++
		return false, nil
	}

	for i, name := range ix.names {
		key := relKey{rel, name}
		old, ok := ix.relCache[key]
		if !ok {
			panic(fmt.Sprintf("relgraph: relation %v has no cached values for %q", rel, name))
		}
		ix.relCache[key] = ix.reindexValues(name, rel, old, values[i])
	}
	return true, nil
}

// extractValueTokens returns the value tokens record holds for a, or nil
// when it holds no value.
func (ix *Index) extractValueTokens(a *attribute, record any, cache Cache) (tokenset.Set, error) {
	vals, err := a.spec.Extract(record)
	if err != nil {
		return nil, attrError(a.spec.Name, "extract", err)
	}

	var set tokenset.Set
	for _, v := range vals {
		if v == nil {
			continue
		}
		tok, err := ix.dumpValue(a, v, cache)
		if err != nil {
			return nil, err
		}
		if set == nil {
			set = tokenset.New(a.spec.Family)
		}
		set.Add(tok)
	}
	if set != nil && !a.spec.Multiple && set.Len() > 1 {
		return nil, attrError(a.spec.Name, "extract", ErrMultipleValues)
	}
	return set, nil
}

func (ix *Index) dumpValue(a *attribute, v any, cache Cache) (any, error) {
	tok := v
	if a.spec.Dump != nil {
		var err error
		if tok, err = a.spec.Dump(v, ix, cache); err != nil {
			return nil, attrError(a.spec.Name, "dump", err)
		}
	}
	tok, err := a.spec.Family.Normalize(tok)
	if err != nil {
		return nil, attrError(a.spec.Name, "dump", err)
	}
	return tok, nil
}

// reindexValues moves rel from the old value set to the new one and returns
// the set to cache.
func (ix *Index) reindexValues(name string, rel any, old, cur tokenset.Set) tokenset.Set {
	if tokenset.Equal(old, cur) {
		return old
	}
	if old == nil || cur == nil {
		ix.removeValues(name, rel, old)
		ix.addValues(name, rel, cur)
		return cur
	}

	added := tokenset.Difference(cur, old)
	removed := tokenset.Difference(old, cur)
	ix.removeValues(name, rel, removed)
	ix.addValues(name, rel, added)

	if removed.Len() > ix.rebuildThreshold {
		return cur
	}
	// Few removals: patch the cached set rather than swapping it.
	for tok := range removed.All() {
		old.Remove(tok)
	}
	for tok := range added.All() {
		old.Add(tok)
	}
	return old
}

// addValues records rel under every token of set, or under the empty
// marker when set is nil.
func (ix *Index) addValues(name string, rel any, set tokenset.Set) {
	if set == nil {
		ix.empty[name] = ix.addPosting(ix.empty[name], rel)
		return
	}
	a := ix.attrs[name]
	for tok := range set.All() {
		a.values[tok] = ix.addPosting(a.values[tok], rel)
	}
}

// removeValues is the inverse of addValues.
func (ix *Index) removeValues(name string, rel any, set tokenset.Set) {
	if set == nil {
		if ix.removePosting(ix.empty[name], name, nil, rel) {
			delete(ix.empty, name)
		}
		return
	}
	a := ix.attrs[name]
	for tok := range set.All() {
		if ix.removePosting(a.values[tok], name, tok, rel) {
			delete(a.values, tok)
		}
	}
}

func (ix *Index) addPosting(p *posting, rel any) *posting {
	if p == nil {
		p = &posting{rels: tokenset.New(ix.relFamily)}
	}
	if !p.rels.Contains(rel) {
		p.rels.Add(rel)
		p.count++
	}
	return p
}

// removePosting removes rel from p and reports whether p became empty.
func (ix *Index) removePosting(p *posting, name string, tok, rel any) bool {
	if p == nil || !p.rels.Contains(rel) {
		panic(fmt.Sprintf("relgraph: relation %v missing from %q posting %v", rel, name, tok))
	}
	p.rels.Remove(rel)
	p.count--
	if p.count < 0 {
		panic(fmt.Sprintf("relgraph: negative count for %q posting %v", name, tok))
	}
	return p.count == 0
}

// UnindexRecord removes relToken from the index. Unknown tokens are ignored.
func (ix *Index) UnindexRecord(relToken any) error {
	start := time.Now()
	rel, err := ix.relFamily.Normalize(relToken)
	if err != nil {
		return err
	}

	found := ix.relTokens.Contains(rel)
	if found {
		for _, name := range ix.names {
			key := relKey{rel, name}
			set, ok := ix.relCache[key]
			if !ok {
				panic(fmt.Sprintf("relgraph: relation %v has no cached values for %q", rel, name))
			}
			delete(ix.relCache, key)
			ix.removeValues(name, rel, set)
		}
		ix.relTokens.Remove(rel)
		ix.relLength--
	}

	ix.metrics.RecordUnindex(time.Since(start), found)
	ix.logger.LogUnindex(relToken, found)
	return nil
}
