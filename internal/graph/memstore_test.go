package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_RoundTrip(t *testing.T) {
	s, err := NewMemStore(2)
	require.NoError(t, err)
	ctx := context.Background()

	got, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	g := sampleGraph()
	require.NoError(t, s.Put(ctx, "k", g))
	g.Nodes[1].Label = "changed after put"

	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "def f(...)", got.Nodes[1].Label)
}

func TestMemStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s, err := NewMemStore(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a", sampleGraph()))
	require.NoError(t, s.Put(ctx, "b", sampleGraph()))
	_, _ = s.Get(ctx, "a")
	require.NoError(t, s.Put(ctx, "c", sampleGraph()))

	b, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, b, "b was least recently used")
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Close())
	assert.Equal(t, 0, s.Len())
}

func TestKey(t *testing.T) {
	k1 := Key(LangPython, []byte("x = 1"))
	assert.Equal(t, k1, Key(LangPython, []byte("x = 1")))
	assert.NotEqual(t, k1, Key(LangPython, []byte("x = 2")))
	assert.NotEqual(t, k1, Key(LangRust, []byte("x = 1")))

	lang, hash, ok := cutKey(k1)
	require.True(t, ok)
	assert.Equal(t, "python", lang)
	assert.Len(t, hash, 64)
}
