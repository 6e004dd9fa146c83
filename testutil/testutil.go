package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sync"
)

// Edge is a one-to-one relationship between two nodes.
type Edge struct {
	Source string
	Target string
}

// Relation is a relationship with any number of sources and targets.
type Relation struct {
	Sources []string
	Targets []string
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Node returns the name of node i.
func Node(i int) string {
	return fmt.Sprintf("n%d", i)
}

// Nodes returns the names of nodes 0..n-1.
func Nodes(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = Node(i)
	}
	return out
}

// Subset returns up to k distinct random nodes out of 0..n-1, sorted.
// It may return an empty subset.
func (r *RNG) Subset(n, k int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subsetLocked(n, k)
}

func (r *RNG) subsetLocked(n, k int) []string {
	size := r.rand.Intn(min(k, n) + 1)
	out := make([]string, size)
	for i, p := range r.rand.Perm(n)[:size] {
		out[i] = Node(p)
	}
	slices.Sort(out)
	return out
}

// Edges generates m random directed edges over n nodes. Self loops and
// parallel edges may occur.
func (r *RNG) Edges(n, m int) []Edge {
	r.mu.Lock()
	defer r.mu.Unlock()

	edges := make([]Edge, m)
	for i := range edges {
		edges[i] = Edge{
			Source: Node(r.rand.Intn(n)),
			Target: Node(r.rand.Intn(n)),
		}
	}
	return edges
}

// ZipfEdges is like Edges but draws sources from a Zipf distribution with
// skew s, so a few hub nodes own most edges.
func (r *RNG) ZipfEdges(n, m int, s float64) []Edge {
	r.mu.Lock()
	defer r.mu.Unlock()

	edges := make([]Edge, m)
	for i := range edges {
		edges[i] = Edge{
			Source: Node(r.zipfLocked(n, s)),
			Target: Node(r.rand.Intn(n)),
		}
	}
	return edges
}

// Relations generates m relations over n nodes with up to k sources and up
// to k targets each. Either side may be empty.
func (r *RNG) Relations(n, m, k int) []Relation {
	r.mu.Lock()
	defer r.mu.Unlock()

	rels := make([]Relation, m)
	for i := range rels {
		rels[i] = Relation{
			Sources: r.subsetLocked(n, k),
			Targets: r.subsetLocked(n, k),
		}
	}
	return rels
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	// Compute normalization constant (harmonic number with exponent s)
	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	// Sample from uniform and use inverse transform
	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// Cycle returns the edges n0→n1→…→n(k-1)→n0.
func Cycle(nodes ...string) []Edge {
	edges := make([]Edge, len(nodes))
	for i, n := range nodes {
		edges[i] = Edge{Source: n, Target: nodes[(i+1)%len(nodes)]}
	}
	return edges
}

// Path returns the edges n0→n1→…→n(k-1).
func Path(nodes ...string) []Edge {
	if len(nodes) < 2 {
		return nil
	}
	edges := make([]Edge, len(nodes)-1)
	for i := range edges {
		edges[i] = Edge{Source: nodes[i], Target: nodes[i+1]}
	}
	return edges
}

// ReachableTargets returns, sorted, the targets of every edge reachable from
// node through chains of at most maxDepth edges (0: unlimited). The first
// edge of a chain must start at node; each further edge starts where the
// previous one ended.
func ReachableTargets(edges []Edge, node string, maxDepth int) []string {
	bySource := make(map[string][]Edge)
	for _, e := range edges {
		bySource[e.Source] = append(bySource[e.Source], e)
	}

	targets := make(map[string]struct{})
	visited := map[string]struct{}{node: {}}
	frontier := []string{node}
	for depth := 1; len(frontier) > 0 && (maxDepth == 0 || depth <= maxDepth); depth++ {
		var next []string
		for _, src := range frontier {
			for _, e := range bySource[src] {
				targets[e.Target] = struct{}{}
				if _, ok := visited[e.Target]; !ok {
					visited[e.Target] = struct{}{}
					next = append(next, e.Target)
				}
			}
		}
		frontier = next
	}

	out := make([]string, 0, len(targets))
	for t := range targets {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}
