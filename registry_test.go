package relgraph

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		reg := NewRegistry()
		objs := []any{"a", 42, struct{ x int }{1}, &struct{}{}}

		for _, obj := range objs {
			tok, err := reg.Dump(obj, nil, nil)
			require.NoError(t, err)

			got, err := reg.Load(tok, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, obj, got)
		}
		assert.Equal(t, len(objs), reg.Len())
	})

	t.Run("Stable", func(t *testing.T) {
		reg := NewRegistry()

		a := reg.Register("a")
		b := reg.Register("b")

		assert.Equal(t, uint32(1), a)
		assert.Equal(t, uint32(2), b)
		assert.Equal(t, a, reg.Register("a"))

		tok, ok := reg.Token("b")
		assert.True(t, ok)
		assert.Equal(t, b, tok)
	})

	t.Run("Unregister", func(t *testing.T) {
		reg := NewRegistry()
		a := reg.Register("a")

		reg.Unregister("a")
		reg.Unregister("never")

		_, ok := reg.Token("a")
		assert.False(t, ok)
		_, ok = reg.Object(a)
		assert.False(t, ok)
		assert.NotEqual(t, a, reg.Register("a"))
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("NotComparable", func(t *testing.T) {
		reg := NewRegistry()

		_, err := reg.Dump([]string{"a"}, nil, nil)
		assert.ErrorIs(t, err, ErrNotComparable)

		_, err = reg.Dump(nil, nil, nil)
		assert.ErrorIs(t, err, ErrNotComparable)

		_, err = reg.Dump(struct{ v any }{[]int{1}}, nil, nil)
		assert.ErrorIs(t, err, ErrNotComparable)
		assert.Zero(t, reg.Len())
	})

	t.Run("NaN", func(t *testing.T) {
		reg := NewRegistry()

		for _, obj := range []any{math.NaN(), float32(math.NaN()), struct{ f float64 }{math.NaN()}} {
			_, err := reg.Dump(obj, nil, nil)
			assert.ErrorIs(t, err, ErrNotComparable)

			_, ok := reg.Token(obj)
			assert.False(t, ok)
			reg.Unregister(obj)
		}
		assert.Zero(t, reg.Len())

		tok, err := reg.Dump(1.5, nil, nil)
		require.NoError(t, err)
		obj, err := reg.Load(tok, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, 1.5, obj)
	})

	t.Run("LoadUnknown", func(t *testing.T) {
		reg := NewRegistry()

		_, err := reg.Load(uint32(7), nil, nil)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = reg.Load("7", nil, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Concurrent", func(t *testing.T) {
		reg := NewRegistry()

		var wg sync.WaitGroup
		toks := make([]uint32, 8)
		for i := range toks {
			wg.Add(1)
			go func() {
				defer wg.Done()
				toks[i] = reg.Register("shared")
			}()
		}
		wg.Wait()

		for _, tok := range toks {
			assert.Equal(t, toks[0], tok)
		}
		assert.Equal(t, 1, reg.Len())
	})
}
