package container

import (
	"slices"

	"github.com/hupe1980/relgraph"
)

// FindTargets returns the targets reachable from source.
func (c *Container) FindTargets(source any, optFns ...QueryOption) ([]any, error) {
	return c.findValues(TargetAttr, SourceAttr, source, optFns)
}

// FindSources returns the sources from which target is reachable.
func (c *Container) FindSources(target any, optFns ...QueryOption) ([]any, error) {
	return c.findValues(SourceAttr, TargetAttr, target, optFns)
}

// FindTargetTokens is FindTargets returning object tokens.
func (c *Container) FindTargetTokens(source any, optFns ...QueryOption) ([]uint32, error) {
	return c.findValueTokens(TargetAttr, SourceAttr, source, optFns)
}

// FindSourceTokens is FindSources returning object tokens.
func (c *Container) FindSourceTokens(target any, optFns ...QueryOption) ([]uint32, error) {
	return c.findValueTokens(SourceAttr, TargetAttr, target, optFns)
}

func (c *Container) findValues(result, by string, obj any, optFns []QueryOption) ([]any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	toks, err := c.valueTokens(result, by, obj, optFns)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(toks))
	for _, tok := range toks {
		v, ok := c.objs.Object(tok)
		if !ok {
			return nil, relgraph.ErrNotFound
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Container) findValueTokens(result, by string, obj any, optFns []QueryOption) ([]uint32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.valueTokens(result, by, obj, optFns)
}

// valueTokens runs a value search. Caller must hold the read lock.
func (c *Container) valueTokens(result, by string, obj any, optFns []QueryOption) ([]uint32, error) {
	o, err := applyQueryOptions(optFns)
	if err != nil {
		return nil, err
	}
	tok, ok := c.objs.Token(obj)
	if !ok {
		return []uint32{}, nil
	}

	seq, err := c.ix.FindValueTokens(result, relgraph.Query{by: tok}, c.searchOptions(o, nil)...)
	if err != nil {
		return nil, err
	}
	out := []uint32{}
	for v := range seq {
		out = append(out, v.(uint32))
	}
	return out, nil
}

// IsLinked reports whether a chain leads from source to target. Either end
// may be nil, but not both.
func (c *Container) IsLinked(source, target any, optFns ...QueryOption) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q, searchOpts, ok, err := c.prepareChainSearch(source, target, optFns)
	if err != nil || !ok {
		return false, err
	}
	return c.ix.IsLinked(q, searchOpts...)
}

// FindRelationshipTokens returns the chains of relationship tokens leading
// from source to target. Either end may be nil, but not both. Chains found
// by target alone are reversed so they always read from source to target.
func (c *Container) FindRelationshipTokens(source, target any, optFns ...QueryOption) ([]relgraph.Chain, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.relationshipChains(source, target, optFns)
}

// FindRelationships is FindRelationshipTokens with chain paths resolved to
// records and cycled queries resolved to objects.
func (c *Container) FindRelationships(source, target any, optFns ...QueryOption) ([]relgraph.Chain, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	chains, err := c.relationshipChains(source, target, optFns)
	if err != nil {
		return nil, err
	}
	for i, ch := range chains {
		path, err := c.ix.ResolveRelationTokens(ch.Path)
		if err != nil {
			return nil, err
		}
		var cycled []relgraph.Query
		for _, q := range ch.Cycled {
			resolved, err := c.ix.ResolveQuery(q)
			if err != nil {
				return nil, err
			}
			cycled = append(cycled, relgraph.Query(resolved))
		}
		chains[i] = relgraph.Chain{Path: path, Cycled: cycled}
	}
	return chains, nil
}

// relationshipChains runs a chain search. Caller must hold the read lock.
func (c *Container) relationshipChains(source, target any, optFns []QueryOption) ([]relgraph.Chain, error) {
	q, searchOpts, ok, err := c.prepareChainSearch(source, target, optFns)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []relgraph.Chain{}, nil
	}

	seq, err := c.ix.FindRelationTokenChains(q, searchOpts...)
	if err != nil {
		return nil, err
	}
	chains := slices.Collect(seq)
	if source == nil {
		for i := range chains {
			slices.Reverse(chains[i].Path)
		}
	}
	return chains, nil
}

// prepareChainSearch builds the start query and options of a search between
// two endpoints. It searches from source when given, with target as target
// query; otherwise it searches backwards from target. ok is false when an
// endpoint is unknown, so nothing can match.
func (c *Container) prepareChainSearch(source, target any, optFns []QueryOption) (relgraph.Query, []relgraph.SearchOption, bool, error) {
	if source == nil && target == nil {
		return nil, nil, false, ErrMissingEndpoint
	}
	o, err := applyQueryOptions(optFns)
	if err != nil {
		return nil, nil, false, err
	}

	name, obj := SourceAttr, source
	if source == nil {
		name, obj, target = TargetAttr, target, nil
	}
	tok, ok := c.objs.Token(obj)
	if !ok {
		return nil, nil, false, nil
	}

	var targetQuery relgraph.Query
	if target != nil {
		ttok, ok := c.objs.Token(target)
		if !ok {
			return nil, nil, false, nil
		}
		targetQuery = relgraph.Query{TargetAttr: ttok}
	}
	return relgraph.Query{name: tok}, c.searchOptions(o, targetQuery), true, nil
}

func (c *Container) searchOptions(o queryOptions, targetQuery relgraph.Query) []relgraph.SearchOption {
	optFns := []relgraph.SearchOption{relgraph.WithTargetQuery(targetQuery)}
	if o.maxDepth == 0 {
		optFns = append(optFns, relgraph.WithUnlimitedDepth())
	} else {
		optFns = append(optFns, relgraph.WithMaxDepth(o.maxDepth))
	}
	if o.minDepth > 0 {
		optFns = append(optFns, relgraph.WithTargetFilter(minDepthFilter(o.minDepth)))
	}
	if o.filter != nil {
		optFns = append(optFns, relgraph.WithFilter(c.resolvingFilter(o.filter)))
	}
	return optFns
}

func minDepthFilter(depth int) relgraph.FilterFunc {
	return func(ch relgraph.Chain, _ relgraph.Query, _ *relgraph.Index, _ relgraph.Cache) bool {
		return ch.Len() >= depth
	}
}

// resolvingFilter applies keep to the record at the end of each chain.
func (c *Container) resolvingFilter(keep func(Record) bool) relgraph.FilterFunc {
	return func(ch relgraph.Chain, _ relgraph.Query, _ *relgraph.Index, _ relgraph.Cache) bool {
		tok, ok := ch.Last().(uint32)
		if !ok {
			return false
		}
		r, ok := c.rels.Object(tok)
		if !ok {
			return false
		}
		return keep(r.(Record))
	}
}
