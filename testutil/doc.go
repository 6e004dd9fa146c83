// Package testutil provides testing utilities for relgraph.
//
// This package is intended for use in tests and benchmarks only.
// It provides a deterministic RNG, random relationship-graph generators and a
// reachability oracle to check transitive searches against.
//
// # Random Graphs
//
//	rng := testutil.NewRNG(seed)
//	edges := rng.Edges(20, 50)           // uniform one-to-one edges over n0..n19
//	edges = rng.ZipfEdges(20, 50, 1.5)   // hub-heavy sources
//	rels := rng.Relations(20, 50, 3)     // multi-valued sources and targets
//
// # Reachability Oracle
//
//	want := testutil.ReachableTargets(edges, "n0", 0) // 0: unlimited depth
package testutil
