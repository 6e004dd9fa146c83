// Package relgraph provides an inverted index over relationship records and
// transitive searches across the relationships it holds.
//
// A relationship record exposes named attributes, each holding a set of
// related objects ("sources", "targets", or any user-defined role). The index
// stores tokens, not objects: relation tokens identify records, value tokens
// identify related objects, and resolvers translate in both directions.
//
// # Quick Start
//
//	reg := relgraph.NewRegistry()
//	ix, _ := relgraph.New([]relgraph.AttributeSpec{
//	    {Name: "source", Extract: sourcesOf, Multiple: true, Family: tokenset.Int32, Dump: reg.Dump, Load: reg.Load},
//	    {Name: "target", Extract: targetsOf, Multiple: true, Family: tokenset.Int32, Dump: reg.Dump, Load: reg.Load},
//	},
//	    relgraph.WithRelationResolver(reg.Dump, reg.Load),
//	    relgraph.WithDefaultExpander(relgraph.NewTransposing("source", "target")),
//	)
//
//	_ = ix.Index(rel)
//
// # Exact Match
//
// MatchingRelations intersects the relations of every constraint of a query,
// smallest candidate first:
//
//	q, _ := ix.TokenizeQuery(map[string]any{"source": a, "target": b})
//	rels, _ := ix.MatchingRelations(q)
//
// # Transitive Search
//
// The Find methods walk chains of relations outward from a query. An
// Expander proposes the queries that continue a chain; Transposing turns the
// targets of one relation into the sources of the next.
//
//	targets, _ := ix.FindValues("target", q, relgraph.WithMaxDepth(3))
//	for obj, err := range targets {
//	    ...
//	}
//
// Searches detect cycles. FindRelationTokenChains reports a chain that would
// revisit one of its own relations as circular, together with the queries
// that led back into it.
//
// # Concurrency
//
// Index performs no locking. The container package wraps an index with a
// read/write lock for concurrent use.
package relgraph
