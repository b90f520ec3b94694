//go:build cgo

package graph

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a fresh in-memory KuzuStore.
// It registers a cleanup function to close the store when the test finishes.
func newTestStore(t *testing.T) *KuzuStore {
	t.Helper()
	s, err := NewKuzuStore()
	require.NoError(t, err, "NewKuzuStore should not fail")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKuzuStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	src := []byte("def f():\n    return g(1)\n")
	g, err := NewTreeSitterExtractor().Extract(ctx, src, LangPython)
	require.NoError(t, err)

	key := Key(LangPython, src)
	require.NoError(t, s.Put(ctx, key, g))

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NoError(t, got.Validate())
	assert.Equal(t, g, got)
}

func TestKuzuStore_PutIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "python:abc", sampleGraph()))
	require.NoError(t, s.Put(ctx, "python:abc", sampleGraph()))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"python:abc"}, keys)
}

func TestKuzuStore_MissingKey(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Get(context.Background(), "python:none")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestKuzuStore_RootOnlyGraph(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "cobol:x", newBuilder().graph()))
	got, err := s.Get(ctx, "cobol:x")
	require.NoError(t, err)
	assert.Equal(t, newBuilder().graph(), got)
}

func TestKuzuStore_FilePersistsAcrossOpens(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "trees")
	ctx := context.Background()

	s, err := NewKuzuFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "python:abc", sampleGraph()))
	require.NoError(t, s.Close())

	reopened, err := NewKuzuFileStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get(ctx, "python:abc")
	require.NoError(t, err)
	assert.Equal(t, sampleGraph(), got)
}

func TestKuzuStore_IncompleteTreeIsRejectedThenRepaired(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	full := NewLineScanner().Scan("function foo() {\n  let x = 1;\n}\n", LangJavaScript)
	require.Len(t, full.Nodes, 3)
	key := Key(LangJavaScript, []byte("function foo() {\n  let x = 1;\n}\n"))

	// Leftovers of an interrupted write: the Tree row plus the first two
	// nodes and their edge.
	require.NoError(t, s.exec(
		"CREATE (t:Tree {key: $key, language: $lang, node_count: $n})",
		map[string]any{"key": key, "lang": "javascript", "n": int64(3)},
	))
	for i, n := range full.Nodes[:2] {
		require.NoError(t, s.exec(
			"CREATE (n:TreeNode {uid: $uid, tree: $tree, idx: $idx, kind: $kind, label: $label})",
			map[string]any{"uid": treeNodeUID(key, n.ID), "tree": key, "idx": int64(i), "kind": string(n.Kind), "label": n.Label},
		))
	}
	require.NoError(t, s.exec(
		`MATCH (a:TreeNode {uid: $src}), (b:TreeNode {uid: $dst}) CREATE (a)-[:CHILD]->(b)`,
		map[string]any{"src": treeNodeUID(key, "n0"), "dst": treeNodeUID(key, "n1")},
	))

	got, err := s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrMalformedGraph)
	assert.Nil(t, got)

	require.NoError(t, s.Put(ctx, key, full))
	got, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, full, got)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)
}
