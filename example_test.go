package relgraph_test

import (
	"fmt"
	"log"

	"github.com/hupe1980/relgraph"
	"github.com/hupe1980/relgraph/tokenset"
)

type link struct {
	from, to string
}

func newLinkIndex() (*relgraph.Index, *relgraph.Registry) {
	reg := relgraph.NewRegistry()
	ix, err := relgraph.New([]relgraph.AttributeSpec{
		{
			Name:    "source",
			Extract: func(r any) ([]any, error) { return []any{r.(link).from}, nil },
			Family:  tokenset.Object,
		},
		{
			Name:    "target",
			Extract: func(r any) ([]any, error) { return []any{r.(link).to}, nil },
			Family:  tokenset.Object,
		},
	},
		relgraph.WithRelationResolver(reg.Dump, reg.Load),
		relgraph.WithDefaultExpander(relgraph.NewTransposing("source", "target")),
	)
	if err != nil {
		log.Fatal(err)
	}
	return ix, reg
}

// Example_transitiveSearch follows links outward from a source.
func Example_transitiveSearch() {
	ix, _ := newLinkIndex()
	for _, l := range []link{{"A", "B"}, {"B", "C"}, {"C", "D"}} {
		if err := ix.Index(l); err != nil {
			log.Fatal(err)
		}
	}

	targets, err := ix.FindValueTokens("target", relgraph.Query{"source": "A"})
	if err != nil {
		log.Fatal(err)
	}
	for tok := range targets {
		fmt.Println(tok)
	}
	// Output:
	// B
	// C
	// D
}

// Example_cycles shows how a search reports a chain that loops back.
func Example_cycles() {
	ix, _ := newLinkIndex()
	for _, l := range []link{{"A", "B"}, {"B", "C"}, {"C", "A"}} {
		if err := ix.Index(l); err != nil {
			log.Fatal(err)
		}
	}

	chains, err := ix.FindRelationChains(relgraph.Query{"source": "A"})
	if err != nil {
		log.Fatal(err)
	}
	for c, err := range chains {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(c.Path, c.IsCircular(), c.Cycled)
	}
	// Output:
	// [{A B}] false []
	// [{A B} {B C}] false []
	// [{A B} {B C} {C A}] true [map[source:A]]
}

// Example_exactMatch combines constraints on several attributes.
func Example_exactMatch() {
	ix, reg := newLinkIndex()
	for _, l := range []link{{"A", "B"}, {"A", "C"}, {"B", "C"}} {
		if err := ix.Index(l); err != nil {
			log.Fatal(err)
		}
	}

	rels, err := ix.FindRelationTokenSet(relgraph.Query{"target": "C"})
	if err != nil {
		log.Fatal(err)
	}
	for tok := range rels.All() {
		l, _ := reg.Object(tok.(uint32))
		fmt.Println(l)
	}
	// Output:
	// {A C}
	// {B C}
}
