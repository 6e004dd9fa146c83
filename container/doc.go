// Package container stores relationship records and keeps a relgraph index
// over their sources and targets.
//
// # Usage
//
//	c, _ := container.New()
//	_, _ = c.Add(container.NewOneToOne("alice", "bob"))
//	_, _ = c.Add(container.NewOneToOne("bob", "carol"))
//
//	targets, _ := c.FindTargets("alice", container.WithMaxDepth(0))
//	// [bob carol]
//
// Searches default to a depth of one: FindTargets returns the direct targets
// of a source unless WithMaxDepth says otherwise. WithMinDepth drops results
// reached by shorter chains.
//
// Records are identified by pointer identity; related objects must be
// comparable. Container is safe for concurrent use. Query results are
// materialized before the read lock is released.
package container
