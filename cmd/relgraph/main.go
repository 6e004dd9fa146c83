// Command relgraph answers transitive queries over a relationship dataset.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hupe1980/relgraph"
	"github.com/hupe1980/relgraph/container"
	"github.com/hupe1980/relgraph/dataset"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type globalFlags struct {
	dataPath string
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:          "relgraph",
		Short:        "Query relationships in a dataset",
		Long:         `Loads a relationship dataset (YAML or JSON, optionally zstd or lz4 compressed) and answers transitive queries over it.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.dataPath, "data", "", "dataset file (.yaml, .json, optionally .zst or .lz4)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error); empty disables logging")
	_ = rootCmd.MarkPersistentFlagRequired("data")

	rootCmd.AddCommand(
		newTargetsCmd(g),
		newSourcesCmd(g),
		newLinkedCmd(g),
		newChainsCmd(g),
		newStatsCmd(g),
	)
	return rootCmd
}

// open loads the dataset named by the global flags.
func (g *globalFlags) open() (*container.Container, error) {
	logger := relgraph.NoopLogger()
	if g.logLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", g.logLevel, err)
		}
		logger = relgraph.NewTextLogger(level)
	}

	c, err := dataset.Open(g.dataPath, container.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	logger.Info("dataset loaded", "path", g.dataPath, "relationships", c.Len())
	return c, nil
}

// parseObject reads a command line value the way dataset scalars are read,
// so "1" matches the integer 1 of a dataset.
func parseObject(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("invalid object %q: %w", s, err)
	}
	switch v.(type) {
	case map[string]any, []any, nil:
		return s, nil
	}
	return v, nil
}
