package relgraph

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"testing"

	"github.com/hupe1980/relgraph/testutil"
	"github.com/hupe1980/relgraph/tokenset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCycleIndex indexes r1 A→B, r2 B→C, r3 C→A.
func newCycleIndex(t *testing.T, optFns ...Option) *Index {
	t.Helper()
	ix := newGraphIndex(t, optFns...)
	indexEdges(t, ix, edge("A", "B"), edge("B", "C"), edge("C", "A"))
	return ix
}

func collect[T any](t *testing.T, seq iter.Seq[T], err error) []T {
	t.Helper()
	require.NoError(t, err)
	return slices.Collect(seq)
}

func chainsOf(t *testing.T, ix *Index, q Query, optFns ...SearchOption) []Chain {
	t.Helper()
	seq, err := ix.FindRelationTokenChains(q, optFns...)
	require.NoError(t, err)
	return slices.Collect(seq)
}

func paths(chains []Chain) [][]any {
	out := make([][]any, len(chains))
	for i, c := range chains {
		out[i] = c.Path
	}
	return out
}

func TestFindValueTokens(t *testing.T) {
	t.Run("Cycle", func(t *testing.T) {
		ix := newCycleIndex(t)

		seq, err := ix.FindValueTokens("target", Query{"source": "A"})
		assert.Equal(t, strs("B", "C", "A"), collect(t, seq, err))

		seq, err = ix.FindValueTokens("source", Query{"target": "A"})
		assert.Equal(t, strs("C", "B", "A"), collect(t, seq, err))
	})

	t.Run("MaxDepth", func(t *testing.T) {
		ix := newCycleIndex(t)

		seq, err := ix.FindValueTokens("target", Query{"source": "A"}, WithMaxDepth(1))
		assert.Equal(t, strs("B"), collect(t, seq, err))

		seq, err = ix.FindValueTokens("target", Query{"source": "A"}, WithMaxDepth(2))
		assert.Equal(t, strs("B", "C"), collect(t, seq, err))

		seq, err = ix.FindValueTokens("target", Query{"source": "A"}, WithMaxDepth(2), WithUnlimitedDepth())
		assert.Equal(t, strs("B", "C", "A"), collect(t, seq, err))
	})

	t.Run("GlobalDedup", func(t *testing.T) {
		ix := newGraphIndex(t)
		indexEdges(t, ix,
			testRel{Sources: strs("a"), Targets: strs("b", "c")},
			testRel{Sources: strs("b"), Targets: strs("d")},
			testRel{Sources: strs("c"), Targets: strs("d")},
		)

		seq, err := ix.FindValueTokens("target", Query{"source": "a"})
		assert.Equal(t, strs("b", "c", "d"), collect(t, seq, err))
	})

	t.Run("NoMatch", func(t *testing.T) {
		ix := newCycleIndex(t)

		seq, err := ix.FindValueTokens("target", Query{"source": "Z"})
		assert.Empty(t, collect(t, seq, err))
	})

	t.Run("EarlyStop", func(t *testing.T) {
		ix := newCycleIndex(t)

		seq, err := ix.FindValueTokens("target", Query{"source": "A"})
		require.NoError(t, err)
		for tok := range seq {
			assert.Equal(t, "B", tok)
			break
		}
	})

	t.Run("Errors", func(t *testing.T) {
		ix := newCycleIndex(t)

		_, err := ix.FindValueTokens("nope", Query{"source": "A"})
		assert.ErrorIs(t, err, ErrUnknownAttribute)

		_, err = ix.FindValueTokens("target", Query{"nope": "A"})
		assert.ErrorIs(t, err, ErrUnknownAttribute)

		_, err = ix.FindValueTokens("target", Query{"source": "A"}, WithTargetQuery(Query{"nope": 1}))
		assert.ErrorIs(t, err, ErrUnknownAttribute)

		for _, n := range []int{0, -1} {
			_, err = ix.FindValueTokens("target", Query{"source": "A"}, WithMaxDepth(n))
			assert.ErrorIs(t, err, ErrInvalidMaxDepth)
		}
	})

	t.Run("NoExpander", func(t *testing.T) {
		ix, err := New(graphAttrs())
		require.NoError(t, err)
		indexEdges(t, ix, edge("A", "B"), edge("B", "C"))

		_, err = ix.FindValueTokens("target", Query{"source": "A"}, WithMaxDepth(2))
		assert.ErrorIs(t, err, ErrNoExpander)

		seq, err := ix.FindValueTokens("target", Query{"source": "A"}, WithMaxDepth(1))
		assert.Equal(t, strs("B"), collect(t, seq, err))

		seq, err = ix.FindValueTokens("target", Query{"source": "A"})
		assert.Equal(t, strs("B"), collect(t, seq, err))

		seq, err = ix.FindValueTokens("target", Query{"source": "A"}, WithExpander(NewTransposing("source", "target")))
		assert.Equal(t, strs("B", "C"), collect(t, seq, err))
	})
}

func TestFindRelationTokenChains(t *testing.T) {
	t.Run("Cycle", func(t *testing.T) {
		ix := newCycleIndex(t)

		chains := chainsOf(t, ix, Query{"source": "A"})

		require.Len(t, chains, 3)
		assert.Equal(t, [][]any{rels(1), rels(1, 2), rels(1, 2, 3)}, paths(chains))
		assert.False(t, chains[0].IsCircular())
		assert.False(t, chains[1].IsCircular())
		assert.True(t, chains[2].IsCircular())
		assert.Equal(t, []Query{{"source": "A"}}, chains[2].Cycled)
		assert.Equal(t, 3, chains[2].Len())
		assert.Equal(t, uint32(3), chains[2].Last())
	})

	t.Run("CycleAtDepthLimit", func(t *testing.T) {
		ix := newCycleIndex(t)

		chains := chainsOf(t, ix, Query{"source": "A"}, WithMaxDepth(3))
		require.Len(t, chains, 3)
		assert.True(t, chains[2].IsCircular())

		chains = chainsOf(t, ix, Query{"source": "A"}, WithMaxDepth(2))
		assert.Equal(t, [][]any{rels(1), rels(1, 2)}, paths(chains))
		assert.False(t, chains[1].IsCircular())
	})

	t.Run("SelfLoop", func(t *testing.T) {
		ix := newGraphIndex(t)
		indexEdges(t, ix, edge("A", "A"))

		chains := chainsOf(t, ix, Query{"source": "A"})
		require.Len(t, chains, 1)
		assert.True(t, chains[0].IsCircular())
	})

	t.Run("Branches", func(t *testing.T) {
		ix := newGraphIndex(t)
		indexEdges(t, ix,
			edge("a", "b"),
			edge("a", "c"),
			edge("b", "d"),
			edge("c", "d"),
		)

		chains := chainsOf(t, ix, Query{"source": "a"})
		assert.Equal(t, [][]any{rels(1), rels(2), rels(1, 3), rels(2, 4)}, paths(chains))
	})

	t.Run("StaticConstraints", func(t *testing.T) {
		ix, err := New(coloredAttrs(), WithDefaultExpander(NewTransposing("source", "target")))
		require.NoError(t, err)
		for i, rec := range []coloredEdge{
			{"a", "b", "red"},
			{"b", "c", "red"},
			{"b", "c", "blue"},
			{"c", "d", "blue"},
		} {
			require.NoError(t, ix.IndexRecord(i+1, rec))
		}

		chains := chainsOf(t, ix, Query{"source": "a", "color": "red"})
		assert.Equal(t, [][]any{rels(1), rels(1, 2)}, paths(chains))
	})

	t.Run("BothPairedNames", func(t *testing.T) {
		ix := newCycleIndex(t)

		chains := chainsOf(t, ix, Query{"source": "A", "target": "B"})
		assert.Equal(t, [][]any{rels(1)}, paths(chains))
	})
}

func TestSearchFilters(t *testing.T) {
	// a→b→c→d
	ix := newGraphIndex(t)
	indexEdges(t, ix, edge("a", "b"), edge("b", "c"), edge("c", "d"))

	t.Run("StepFilter", func(t *testing.T) {
		var calls int
		filter := func(c Chain, q Query, _ *Index, cache Cache) bool {
			calls++
			assert.Equal(t, Query{"source": "a"}, q)
			assert.NotNil(t, cache)
			return c.Last() != uint32(2)
		}

		chains := chainsOf(t, ix, Query{"source": "a"}, WithFilter(filter))
		assert.Equal(t, [][]any{rels(1)}, paths(chains))
		assert.Equal(t, 2, calls)
	})

	t.Run("StepFilterOwnsChain", func(t *testing.T) {
		scribble := func(c Chain, _ Query, _ *Index, _ Cache) bool {
			c.Path[0] = uint32(99)
			return true
		}

		chains := chainsOf(t, ix, Query{"source": "a"}, WithFilter(scribble))
		assert.Equal(t, [][]any{rels(1), rels(1, 2), rels(1, 2, 3)}, paths(chains))
	})

	t.Run("TargetQuery", func(t *testing.T) {
		chains := chainsOf(t, ix, Query{"source": "a"}, WithTargetQuery(Query{"target": "c"}))
		assert.Equal(t, [][]any{rels(1, 2)}, paths(chains))

		chains = chainsOf(t, ix, Query{"source": "a"}, WithTargetQuery(Query{"target": "zz"}))
		assert.Empty(t, chains)
	})

	t.Run("TargetFilter", func(t *testing.T) {
		minDepth := func(c Chain, _ Query, _ *Index, _ Cache) bool {
			return c.Len() >= 2
		}

		chains := chainsOf(t, ix, Query{"source": "a"}, WithTargetFilter(minDepth))
		assert.Equal(t, [][]any{rels(1, 2), rels(1, 2, 3)}, paths(chains))

		seq, err := ix.FindValueTokens("target", Query{"source": "a"}, WithTargetFilter(minDepth))
		assert.Equal(t, strs("c", "d"), collect(t, seq, err))
	})

	t.Run("IsLinked", func(t *testing.T) {
		linked, err := ix.IsLinked(Query{"source": "a"}, WithTargetQuery(Query{"target": "d"}))
		require.NoError(t, err)
		assert.True(t, linked)

		linked, err = ix.IsLinked(Query{"source": "a"}, WithTargetQuery(Query{"target": "d"}), WithMaxDepth(2))
		require.NoError(t, err)
		assert.False(t, linked)

		linked, err = ix.IsLinked(Query{"source": "d"})
		require.NoError(t, err)
		assert.False(t, linked)

		_, err = ix.IsLinked(Query{"source": "a"}, WithMaxDepth(0))
		assert.ErrorIs(t, err, ErrInvalidMaxDepth)
	})
}

func TestExpanders(t *testing.T) {
	t.Run("RelationKeyCounterpart", func(t *testing.T) {
		// Each record names its parent relation.
		ix, err := New([]AttributeSpec{
			{Name: "parent", Extract: sourcesOf, Family: tokenset.Int32},
		}, WithDefaultExpander(NewTransposing("parent", RelationKey)))
		require.NoError(t, err)
		require.NoError(t, ix.IndexRecord(1, testRel{}))
		require.NoError(t, ix.IndexRecord(2, testRel{Sources: []any{1}}))
		require.NoError(t, ix.IndexRecord(3, testRel{Sources: []any{2}}))
		require.NoError(t, ix.IndexRecord(4, testRel{Sources: []any{1}}))

		seq, err := ix.FindRelationTokens(Query{"parent": 1})
		assert.Equal(t, rels(2, 4, 3), collect(t, seq, err))
	})

	t.Run("Func", func(t *testing.T) {
		ix := newCycleIndex(t)
		var chains [][]any
		expander := ExpanderFunc(func(chain []any, q Query, _ *Index, _ Cache) []Query {
			chains = append(chains, slices.Clone(chain))
			return []Query{{"nope": 1}, {RelationKey: 2}}
		})

		seq, err := ix.FindRelationTokens(Query{"source": "A"}, WithExpander(expander), WithMaxDepth(2))
		assert.Equal(t, rels(1, 2), collect(t, seq, err))
		assert.Equal(t, [][]any{rels(1)}, chains)
	})

	t.Run("Names", func(t *testing.T) {
		a, b := NewTransposing("source", "target").Names()
		assert.Equal(t, "source", a)
		assert.Equal(t, "target", b)
	})
}

// TestFindValueTokens_Reachability compares transitive searches on random
// graphs with a breadth-first reachability scan.
func TestFindValueTokens_Reachability(t *testing.T) {
	rng := testutil.NewRNG(4711)
	reached := 0

	for i := range 20 {
		edges := rng.Edges(8, 12)
		if i%2 == 1 {
			edges = rng.ZipfEdges(8, 12, 1.2)
		}

		ix := newGraphIndex(t)
		for j, e := range edges {
			require.NoError(t, ix.IndexRecord(j+1, edge(e.Source, e.Target)))
		}

		for _, depth := range []int{0, 1, 2, 3} {
			var opts []SearchOption
			if depth > 0 {
				opts = append(opts, WithMaxDepth(depth))
			}
			for _, node := range testutil.Nodes(8) {
				seq, err := ix.FindValueTokens("target", Query{"source": node}, opts...)
				got := collect(t, seq, err)
				want := strs(testutil.ReachableTargets(edges, node, depth)...)
				require.ElementsMatch(t, want, got, fmt.Sprintf("graph %d, node %s, depth %d", i, node, depth))
				reached += len(got)
			}
		}
	}
	assert.Positive(t, reached)
}

func TestResolvedSearches(t *testing.T) {
	type person struct{ name string }
	type link struct{ from, to *person }

	reg := NewRegistry()
	alice, bob, carol := &person{"alice"}, &person{"bob"}, &person{"carol"}
	ab, bc := &link{alice, bob}, &link{bob, carol}

	ix, err := New([]AttributeSpec{
		{Name: "source", Extract: func(r any) ([]any, error) { return []any{r.(*link).from}, nil }, Dump: reg.Dump, Load: reg.Load},
		{Name: "target", Extract: func(r any) ([]any, error) { return []any{r.(*link).to}, nil }, Dump: reg.Dump, Load: reg.Load},
	},
		WithRelationResolver(reg.Dump, reg.Load),
		WithDefaultExpander(NewTransposing("source", "target")),
	)
	require.NoError(t, err)
	require.NoError(t, ix.Index(ab))
	require.NoError(t, ix.Index(bc))

	q, err := ix.TokenizeQuery(map[string]any{"source": alice})
	require.NoError(t, err)

	t.Run("FindValues", func(t *testing.T) {
		seq, err := ix.FindValues("target", q)
		require.NoError(t, err)

		var got []any
		for obj, err := range seq {
			require.NoError(t, err)
			got = append(got, obj)
		}
		assert.Equal(t, []any{bob, carol}, got)
	})

	t.Run("FindRelations", func(t *testing.T) {
		seq, err := ix.FindRelations(q)
		require.NoError(t, err)

		var got []any
		for rec, err := range seq {
			require.NoError(t, err)
			got = append(got, rec)
		}
		assert.Equal(t, []any{ab, bc}, got)
	})

	t.Run("FindRelationChains", func(t *testing.T) {
		seq, err := ix.FindRelationChains(q)
		require.NoError(t, err)

		var got []Chain
		for c, err := range seq {
			require.NoError(t, err)
			got = append(got, c)
		}
		assert.Equal(t, [][]any{{ab}, {ab, bc}}, paths(got))
	})

	t.Run("LoadFailure", func(t *testing.T) {
		reg.Unregister(carol)

		seq, err := ix.FindValues("target", q)
		require.NoError(t, err)

		var errs []error
		for _, err := range seq {
			errs = append(errs, err)
		}
		require.Len(t, errs, 2)
		assert.NoError(t, errs[0])
		assert.ErrorIs(t, errs[1], ErrNotFound)

		var attrErr *AttributeError
		require.True(t, errors.As(errs[1], &attrErr))
		assert.Equal(t, "load", attrErr.Op)
	})

	t.Run("Unindex", func(t *testing.T) {
		require.NoError(t, ix.Unindex(bc))
		assert.Equal(t, 1, ix.DocumentCount())
	})
}

func TestApply(t *testing.T) {
	ix := newGraphIndex(t)
	indexEdges(t, ix, edge("a", "b"), edge("b", "c"))

	t.Run("Relationships", func(t *testing.T) {
		set, err := ix.Apply(ApplyQuery{"relationships": Query{"source": "a"}})
		require.NoError(t, err)
		assert.Equal(t, rels(1), tokenset.Slice(set))

		set, err = ix.Apply(ApplyQuery{"relationships": map[string]any{"source": "zz"}})
		require.NoError(t, err)
		assert.True(t, set.IsEmpty())
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, q := range []ApplyQuery{
			{},
			{"relationships": Query{}, "values": ValuesQuery{}},
			{"other": Query{}},
			{"relationships": 42},
			{"values": Query{}},
		} {
			_, err := ix.Apply(q)
			assert.ErrorIs(t, err, ErrMalformedQuery, "%v", q)
		}
	})

	t.Run("ValuesNeedIntegerFamily", func(t *testing.T) {
		_, err := ix.Apply(ApplyQuery{"values": ValuesQuery{ResultName: "target", Query: Query{"source": "a"}}})
		assert.ErrorIs(t, err, ErrUnsupportedFamily)

		_, err = ix.Apply(ApplyQuery{"values": ValuesQuery{ResultName: "nope"}})
		assert.ErrorIs(t, err, ErrUnknownAttribute)
	})

	t.Run("Values", func(t *testing.T) {
		ix, err := New([]AttributeSpec{
			{Name: "source", Extract: sourcesOf, Family: tokenset.Int64},
			{Name: "target", Extract: targetsOf, Family: tokenset.Int64},
		}, WithDefaultExpander(NewTransposing("source", "target")))
		require.NoError(t, err)
		indexEdges(t, ix,
			testRel{Sources: []any{1}, Targets: []any{2}},
			testRel{Sources: []any{2}, Targets: []any{3}},
		)

		set, err := ix.Apply(ApplyQuery{"values": ValuesQuery{ResultName: "target", Query: Query{"source": 1}}})
		require.NoError(t, err)
		assert.Equal(t, []any{uint64(2), uint64(3)}, tokenset.Slice(set))

		set, err = ix.Apply(ApplyQuery{"values": ValuesQuery{ResultName: "target", Query: Query{"source": 1}, MaxDepth: 1}})
		require.NoError(t, err)
		assert.Equal(t, []any{uint64(2)}, tokenset.Slice(set))

		_, err = ix.Apply(ApplyQuery{"values": ValuesQuery{ResultName: "target", MaxDepth: -1}})
		assert.ErrorIs(t, err, ErrInvalidMaxDepth)
	})

	t.Run("ObjectRelations", func(t *testing.T) {
		ix, err := New(graphAttrs(), WithRelationFamily(tokenset.Object))
		require.NoError(t, err)

		_, err = ix.Apply(ApplyQuery{"relationships": Query{}})
		assert.ErrorIs(t, err, ErrUnsupportedFamily)
	})
}
