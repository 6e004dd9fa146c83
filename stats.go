package relgraph

// AttributeStats describes the postings of one attribute.
type AttributeStats struct {
	Name           string
	Values         int // distinct value tokens
	Postings       int // sum of posting counts
	EmptyRelations int // relations without a value
}

// Stats returns statistics about the index.
type Stats struct {
	Relations  int
	Attributes []AttributeStats
}

// GetStats returns statistics about the index.
func (ix *Index) GetStats() Stats {
	stats := Stats{
		Relations:  ix.relLength,
		Attributes: make([]AttributeStats, 0, len(ix.names)),
	}
	for _, name := range ix.names {
		a := ix.attrs[name]
		as := AttributeStats{
			Name:   name,
			Values: len(a.values),
		}
		for _, p := range a.values {
			as.Postings += p.count
		}
		if p := ix.empty[name]; p != nil {
			as.EmptyRelations = p.count
		}
		stats.Attributes = append(stats.Attributes, as)
	}
	return stats
}

// ValueCount returns how many relations hold tok for the named attribute.
// A nil tok counts relations without a value.
func (ix *Index) ValueCount(name string, tok any) (int, error) {
	a, err := ix.attribute(name)
	if err != nil {
		return 0, err
	}
	if tok == nil {
		if p := ix.empty[name]; p != nil {
			return p.count, nil
		}
		return 0, nil
	}
	v, err := a.spec.Family.Normalize(tok)
	if err != nil {
		return 0, nil
	}
	if p := a.values[v]; p != nil {
		return p.count, nil
	}
	return 0, nil
}
