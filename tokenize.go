package relgraph

// TokenizeRelation converts a relationship record to its relation token.
func (ix *Index) TokenizeRelation(record any) (any, error) {
	return ix.dumpRelation(record, Cache{})
}

// ResolveRelationToken converts a relation token back to its record.
func (ix *Index) ResolveRelationToken(tok any) (any, error) {
	return ix.loadRelation(tok, Cache{})
}

// TokenizeRelations converts several records, sharing one resolver cache.
func (ix *Index) TokenizeRelations(records []any) ([]any, error) {
	cache := Cache{}
	out := make([]any, len(records))
	for i, rec := range records {
		tok, err := ix.dumpRelation(rec, cache)
		if err != nil {
			return nil, err
		}
		out[i] = tok
	}
	return out, nil
}

// ResolveRelationTokens converts several relation tokens, sharing one
// resolver cache.
func (ix *Index) ResolveRelationTokens(toks []any) ([]any, error) {
	cache := Cache{}
	out := make([]any, len(toks))
	for i, tok := range toks {
		rec, err := ix.loadRelation(tok, cache)
		if err != nil {
			return nil, err
		}
		out[i] = rec
	}
	return out, nil
}

// TokenizeValues converts objects to value tokens of the named attribute.
func (ix *Index) TokenizeValues(name string, objs []any) ([]any, error) {
	a, err := ix.attribute(name)
	if err != nil {
		return nil, err
	}
	cache := Cache{}
	out := make([]any, len(objs))
	for i, obj := range objs {
		tok, err := ix.dumpValue(a, obj, cache)
		if err != nil {
			return nil, err
		}
		out[i] = tok
	}
	return out, nil
}

// ResolveValueTokens converts value tokens of the named attribute back to
// objects.
func (ix *Index) ResolveValueTokens(name string, toks []any) ([]any, error) {
	a, err := ix.attribute(name)
	if err != nil {
		return nil, err
	}
	cache := Cache{}
	out := make([]any, len(toks))
	for i, tok := range toks {
		obj, err := ix.loadValue(a, tok, cache)
		if err != nil {
			return nil, err
		}
		out[i] = obj
	}
	return out, nil
}

// TokenizeQuery converts a query over objects into a query over tokens.
// Nil values stay nil; the RelationKey entry is tokenized as a relation.
func (ix *Index) TokenizeQuery(q map[string]any) (Query, error) {
	cache := Cache{}
	out := make(Query, len(q))
	for name, obj := range q {
		var (
			tok any
			err error
		)
		switch {
		case name == RelationKey:
			tok, err = ix.dumpRelation(obj, cache)
		case obj == nil:
			_, err = ix.attribute(name)
		default:
			var a *attribute
			if a, err = ix.attribute(name); err == nil {
				tok, err = ix.dumpValue(a, obj, cache)
			}
		}
		if err != nil {
			return nil, err
		}
		out[name] = tok
	}
	return out, nil
}

// ResolveQuery is the inverse of TokenizeQuery.
func (ix *Index) ResolveQuery(q Query) (map[string]any, error) {
	cache := Cache{}
	out := make(map[string]any, len(q))
	for name, tok := range q {
		var (
			obj any
			err error
		)
		switch {
		case name == RelationKey:
			obj, err = ix.loadRelation(tok, cache)
		case tok == nil:
			_, err = ix.attribute(name)
		default:
			var a *attribute
			if a, err = ix.attribute(name); err == nil {
				obj, err = ix.loadValue(a, tok, cache)
			}
		}
		if err != nil {
			return nil, err
		}
		out[name] = obj
	}
	return out, nil
}

func (ix *Index) dumpRelation(record any, cache Cache) (any, error) {
	tok := record
	if ix.dumpRel != nil {
		var err error
		if tok, err = ix.dumpRel(record, ix, cache); err != nil {
			return nil, err
		}
	}
	return ix.relFamily.Normalize(tok)
}

func (ix *Index) loadRelation(tok any, cache Cache) (any, error) {
	if ix.loadRel == nil {
		return tok, nil
	}
	return ix.loadRel(tok, ix, cache)
}

func (ix *Index) loadValue(a *attribute, tok any, cache Cache) (any, error) {
	if a.spec.Load == nil {
		return tok, nil
	}
	obj, err := a.spec.Load(tok, ix, cache)
	if err != nil {
		return nil, attrError(a.spec.Name, "load", err)
	}
	return obj, nil
}
