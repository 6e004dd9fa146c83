package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/relgraph"
	"github.com/hupe1980/relgraph/container"
	"github.com/spf13/cobra"
)

type depthFlags struct {
	maxDepth int
	minDepth int
}

func (d *depthFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&d.maxDepth, "max-depth", 1, "maximum chain length (0 for unlimited)")
	cmd.Flags().IntVar(&d.minDepth, "min-depth", 0, "minimum chain length (0 for none)")
}

func (d *depthFlags) options() []container.QueryOption {
	opts := []container.QueryOption{container.WithMaxDepth(d.maxDepth)}
	if d.minDepth != 0 {
		opts = append(opts, container.WithMinDepth(d.minDepth))
	}
	return opts
}

func newTargetsCmd(g *globalFlags) *cobra.Command {
	var (
		source string
		depth  depthFlags
	)
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "List objects reachable from a source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.open()
			if err != nil {
				return err
			}
			obj, err := parseObject(source)
			if err != nil {
				return err
			}
			targets, err := c.FindTargets(obj, depth.options()...)
			if err != nil {
				return err
			}
			printObjects(cmd.OutOrStdout(), targets)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "source object")
	_ = cmd.MarkFlagRequired("source")
	depth.register(cmd)
	return cmd
}

func newSourcesCmd(g *globalFlags) *cobra.Command {
	var (
		target string
		depth  depthFlags
	)
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List objects from which a target is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.open()
			if err != nil {
				return err
			}
			obj, err := parseObject(target)
			if err != nil {
				return err
			}
			sources, err := c.FindSources(obj, depth.options()...)
			if err != nil {
				return err
			}
			printObjects(cmd.OutOrStdout(), sources)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "target object")
	_ = cmd.MarkFlagRequired("target")
	depth.register(cmd)
	return cmd
}

// endpointFlags holds an optional source and target.
type endpointFlags struct {
	source string
	target string
}

func (e *endpointFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&e.source, "source", "", "source object")
	cmd.Flags().StringVar(&e.target, "target", "", "target object")
}

func (e *endpointFlags) parse() (any, any, error) {
	if e.source == "" && e.target == "" {
		return nil, nil, errors.New("at least one of --source and --target is required")
	}
	source, err := parseObject(e.source)
	if err != nil {
		return nil, nil, err
	}
	target, err := parseObject(e.target)
	if err != nil {
		return nil, nil, err
	}
	return source, target, nil
}

func newLinkedCmd(g *globalFlags) *cobra.Command {
	var (
		ends  endpointFlags
		depth depthFlags
	)
	cmd := &cobra.Command{
		Use:   "linked",
		Short: "Report whether a chain links source and target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, target, err := ends.parse()
			if err != nil {
				return err
			}
			c, err := g.open()
			if err != nil {
				return err
			}
			linked, err := c.IsLinked(source, target, depth.options()...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), linked)
			return nil
		},
	}
	ends.register(cmd)
	depth.register(cmd)
	return cmd
}

func newChainsCmd(g *globalFlags) *cobra.Command {
	var (
		ends  endpointFlags
		depth depthFlags
	)
	cmd := &cobra.Command{
		Use:   "chains",
		Short: "List relationship chains between source and target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, target, err := ends.parse()
			if err != nil {
				return err
			}
			c, err := g.open()
			if err != nil {
				return err
			}
			chains, err := c.FindRelationships(source, target, depth.options()...)
			if err != nil {
				return err
			}
			for _, ch := range chains {
				printChain(cmd.OutOrStdout(), ch)
			}
			return nil
		},
	}
	ends.register(cmd)
	depth.register(cmd)
	return cmd
}

func newStatsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print index statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := g.open()
			if err != nil {
				return err
			}
			stats := c.Stats()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "relationships: %d\n", stats.Relations)
			for _, a := range stats.Attributes {
				fmt.Fprintf(w, "%s: values=%d postings=%d empty=%d\n", a.Name, a.Values, a.Postings, a.EmptyRelations)
			}
			return nil
		},
	}
}

func printObjects(w io.Writer, objs []any) {
	for _, obj := range objs {
		fmt.Fprintln(w, obj)
	}
}

func printChain(w io.Writer, ch relgraph.Chain) {
	parts := make([]string, len(ch.Path))
	for i, r := range ch.Path {
		rec := r.(container.Record)
		parts[i] = fmt.Sprintf("%v->%v", join(rec.Sources()), join(rec.Targets()))
	}
	line := strings.Join(parts, " | ")
	if ch.IsCircular() {
		line += " (cycle)"
	}
	fmt.Fprintln(w, line)
}

func join(objs []any) string {
	parts := make([]string, len(objs))
	for i, obj := range objs {
		parts[i] = fmt.Sprint(obj)
	}
	return strings.Join(parts, ",")
}
