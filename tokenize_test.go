package relgraph

import (
	"errors"
	"testing"

	"github.com/hupe1980/relgraph/tokenset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	reg := NewRegistry()
	ix, err := New([]AttributeSpec{
		{Name: "source", Extract: sourcesOf, Multiple: true, Dump: reg.Dump, Load: reg.Load},
		{Name: "label", Extract: targetsOf, Family: tokenset.Object},
	}, WithRelationResolver(reg.Dump, reg.Load))
	require.NoError(t, err)

	rec := &testRel{}

	t.Run("Relations", func(t *testing.T) {
		tok, err := ix.TokenizeRelation(rec)
		require.NoError(t, err)

		got, err := ix.ResolveRelationToken(tok)
		require.NoError(t, err)
		assert.Same(t, rec, got)

		toks, err := ix.TokenizeRelations([]any{rec, "other"})
		require.NoError(t, err)
		assert.Equal(t, tok, toks[0])

		objs, err := ix.ResolveRelationTokens(toks)
		require.NoError(t, err)
		assert.Equal(t, []any{rec, "other"}, objs)
	})

	t.Run("Values", func(t *testing.T) {
		toks, err := ix.TokenizeValues("source", []any{"x", "y"})
		require.NoError(t, err)

		objs, err := ix.ResolveValueTokens("source", toks)
		require.NoError(t, err)
		assert.Equal(t, []any{"x", "y"}, objs)

		toks, err = ix.TokenizeValues("label", []any{int8(3)})
		require.NoError(t, err)
		assert.Equal(t, []any{int64(3)}, toks)

		_, err = ix.TokenizeValues("nope", nil)
		assert.ErrorIs(t, err, ErrUnknownAttribute)

		_, err = ix.ResolveValueTokens("source", []any{uint32(999)})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Query", func(t *testing.T) {
		q, err := ix.TokenizeQuery(map[string]any{
			"source":    "x",
			"label":     nil,
			RelationKey: rec,
		})
		require.NoError(t, err)
		assert.Nil(t, q["label"])
		assert.IsType(t, uint32(0), q["source"])

		back, err := ix.ResolveQuery(q)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"source": "x", "label": nil, RelationKey: rec}, back)

		_, err = ix.TokenizeQuery(map[string]any{"nope": nil})
		assert.ErrorIs(t, err, ErrUnknownAttribute)

		_, err = ix.ResolveQuery(Query{"nope": 1})
		assert.ErrorIs(t, err, ErrUnknownAttribute)
	})

	t.Run("DumpError", func(t *testing.T) {
		errBoom := errors.New("boom")
		ix, err := New([]AttributeSpec{{
			Name:    "source",
			Extract: sourcesOf,
			Dump:    func(any, *Index, Cache) (any, error) { return nil, errBoom },
			Load:    func(tok any, _ *Index, _ Cache) (any, error) { return tok, nil },
		}})
		require.NoError(t, err)

		_, err = ix.TokenizeValues("source", []any{"x"})
		assert.ErrorIs(t, err, errBoom)

		err = ix.IndexRecord(1, edge("x", "y"))
		var attrErr *AttributeError
		require.ErrorAs(t, err, &attrErr)
		assert.Equal(t, "dump", attrErr.Op)
		assert.Equal(t, 0, ix.DocumentCount())
	})
}
