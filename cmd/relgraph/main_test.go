package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/hupe1980/relgraph/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCycle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cycle.yaml.lz4")
	ds := &dataset.Dataset{Relationships: []dataset.Relationship{
		{Sources: []any{"A"}, Targets: []any{"B"}},
		{Sources: []any{"B"}, Targets: []any{"C"}},
		{Sources: []any{"C"}, Targets: []any{"A"}},
		{Sources: []any{1}, Targets: []any{2}},
	}}
	require.NoError(t, dataset.WriteFile(path, ds))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	path := writeCycle(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"Targets", []string{"targets", "--source", "A"}, "B\n"},
		{"TargetsUnlimited", []string{"targets", "--source", "A", "--max-depth", "0"}, "B\nC\nA\n"},
		{"TargetsMinDepth", []string{"targets", "--source", "A", "--max-depth", "0", "--min-depth", "3"}, "A\n"},
		{"TargetsInteger", []string{"targets", "--source", "1"}, "2\n"},
		{"Sources", []string{"sources", "--target", "A", "--max-depth", "2"}, "C\nB\n"},
		{"Linked", []string{"linked", "--source", "A", "--target", "C"}, "false\n"},
		{"LinkedDeep", []string{"linked", "--source", "A", "--target", "C", "--max-depth", "2"}, "true\n"},
		{"Chains", []string{"chains", "--source", "A", "--max-depth", "0"}, "A->B\nA->B | B->C\nA->B | B->C | C->A (cycle)\n"},
		{"ChainsByTarget", []string{"chains", "--target", "C", "--max-depth", "2"}, "B->C\nA->B | B->C\n"},
		{"Stats", []string{"stats"}, "relationships: 4\nsource: values=4 postings=4 empty=0\ntarget: values=4 postings=4 empty=0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"--data", path}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCommands_Errors(t *testing.T) {
	path := writeCycle(t)

	_, err := run(t, "--data", path, "linked")
	assert.Error(t, err)

	_, err = run(t, "--data", path, "targets", "--source", "A", "--min-depth", "-1")
	assert.Error(t, err)

	_, err = run(t, "--data", path, "--log-level", "loud", "stats")
	assert.Error(t, err)

	_, err = run(t, "--data", filepath.Join(t.TempDir(), "missing.yaml"), "stats")
	assert.Error(t, err)

	_, err = run(t, "stats")
	assert.Error(t, err)
}

func TestParseObject(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"A", "A"},
		{"42", 42},
		{"true", true},
		{"[a]", "[a]"},
		{"~", "~"},
	}
	for _, tt := range tests {
		got, err := parseObject(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
