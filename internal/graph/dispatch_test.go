package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

// stubExtractor returns canned results and counts calls.
type stubExtractor struct {
	mu       sync.Mutex
	calls    int
	supports map[Language]bool
	extract  func(source []byte, lang Language) (*Graph, error)
}

func (s *stubExtractor) Extract(_ context.Context, source []byte, lang Language) (*Graph, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.extract(source, lang)
}

func (s *stubExtractor) Supports(lang Language) bool { return s.supports[lang] }

// logRecorder captures dispatcher log lines.
type logRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *logRecorder) logf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func newQuietDispatcher(opts ...Option) (*Dispatcher, *logRecorder) {
	rec := &logRecorder{}
	return NewDispatcher(append([]Option{WithLogger(rec.logf)}, opts...)...), rec
}

// ---------------------------------------------------------------------------
// Routing
// ---------------------------------------------------------------------------

func TestDispatcher_GrammarPath(t *testing.T) {
	d, rec := newQuietDispatcher()

	res := d.Resolve(context.Background(), []byte("def f():\n    return 1\n"), "Python")
	require.NoError(t, res.Graph.Validate())
	assert.Equal(t, LangPython, res.Language)
	assert.Equal(t, StrategyGrammar, res.Strategy)
	assert.Empty(t, res.Diagnostic)
	assert.Empty(t, rec.lines)

	top := childrenOf(t, res.Graph, RootID)
	require.Len(t, top, 1)
	assert.Equal(t, "def f(...)", top[0].Label)
}

func TestDispatcher_SyntaxErrorFallsBackToScanner(t *testing.T) {
	d, rec := newQuietDispatcher()

	res := d.Resolve(context.Background(), []byte("def broken(:\n    return 1\n"), "python")
	require.NoError(t, res.Graph.Validate())
	assert.Equal(t, StrategyScanner, res.Strategy)
	assert.Contains(t, res.Diagnostic, "syntax error")

	top := childrenOf(t, res.Graph, RootID)
	require.Len(t, top, 1)
	assert.Equal(t, KindFunction, top[0].Kind)
	assert.Equal(t, "def broken(:", top[0].Label, "scanner labels keep the raw line")

	require.Len(t, rec.lines, 1)
	assert.Contains(t, rec.lines[0], "falling back to line scanner")
}

func TestDispatcher_UnbalancedBraceFallsBack(t *testing.T) {
	d, _ := newQuietDispatcher()

	g := d.Extract(context.Background(), "function foo() {\n  let x = 1;\n", "js")
	require.NoError(t, g.Validate())
	assert.Equal(t, []string{"function foo() {", "let x = 1;"}, labels(g.Nodes[1:]))
}

func TestDispatcher_NoGrammarUsesScanner(t *testing.T) {
	d, rec := newQuietDispatcher(WithGrammar(NewTreeSitterExtractor(LangPython)))

	res := d.Resolve(context.Background(), []byte("function foo() {\n  let x = 1;\n}\n"), "javascript")
	assert.Equal(t, StrategyScanner, res.Strategy)
	assert.Empty(t, res.Diagnostic, "an unsupported language is routing, not a failure")
	assert.Empty(t, rec.lines)
	assert.Len(t, res.Graph.Nodes, 3)
}

func TestDispatcher_UnknownLanguageReturnsRoot(t *testing.T) {
	d, _ := newQuietDispatcher()

	for _, tag := range []string{"java", "", "  C++ "} {
		g := d.Extract(context.Background(), "public static void main() {}", tag)
		require.NoError(t, g.Validate(), "tag %q", tag)
		assert.Len(t, g.Nodes, 1, "tag %q", tag)
	}
}

func TestDispatcher_GrammarErrorAndPanicFallBack(t *testing.T) {
	tests := []struct {
		name    string
		extract func([]byte, Language) (*Graph, error)
	}{
		{"plain error", func([]byte, Language) (*Graph, error) { return nil, errors.New("boom") }},
		{"panic", func([]byte, Language) (*Graph, error) { panic("binding crashed") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grammar := &stubExtractor{supports: map[Language]bool{LangPython: true}, extract: tt.extract}
			d, rec := newQuietDispatcher(WithGrammar(grammar))

			res := d.Resolve(context.Background(), []byte("def f():\n"), "python")
			assert.Equal(t, StrategyScanner, res.Strategy)
			assert.NotEmpty(t, res.Diagnostic)
			assert.Len(t, res.Graph.Nodes, 2)
			assert.Len(t, rec.lines, 1)
		})
	}
}

func TestDispatcher_BrokenScannerStillReturnsRoot(t *testing.T) {
	scanner := &stubExtractor{extract: func([]byte, Language) (*Graph, error) { return nil, errors.New("nope") }}
	d, _ := newQuietDispatcher(WithScanner(scanner))

	g := d.Extract(context.Background(), "anything", "cobol")
	require.NoError(t, g.Validate())
	assert.Len(t, g.Nodes, 1)
}

func TestDispatcher_Aliases(t *testing.T) {
	d, _ := newQuietDispatcher(WithAliases(map[string]string{"Node": "JS"}))

	assert.Equal(t, LangJavaScript, d.Language("node"))
	assert.Equal(t, LangTypeScript, d.Language(" TSX "))
	assert.Equal(t, LangPython, d.Language("py"))
	assert.Equal(t, Language("kotlin"), d.Language("Kotlin"))
}

// ---------------------------------------------------------------------------
// Purity and caching
// ---------------------------------------------------------------------------

func TestDispatcher_Idempotent(t *testing.T) {
	d, _ := newQuietDispatcher()
	inputs := map[string]string{
		"python":     "class A:\n    def m(self):\n        return self\n",
		"javascript": "function foo() {\n  let x = 1;\n",
		"cpp":        "int main() { return 0; }",
	}
	for tag, src := range inputs {
		first := d.Extract(context.Background(), src, tag)
		second := d.Extract(context.Background(), src, tag)
		assert.Equal(t, first, second, "tag %s", tag)
		assert.Equal(t, RootID, second.Nodes[0].ID)
	}
}

func TestDispatcher_ConcurrentCallsDoNotShareIDs(t *testing.T) {
	d, _ := newQuietDispatcher()
	want := d.Extract(context.Background(), "def f():\n    return 1\n", "python")

	var wg sync.WaitGroup
	got := make([]*Graph, 32)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = d.Extract(context.Background(), "def f():\n    return 1\n", "python")
		}()
	}
	wg.Wait()

	for _, g := range got {
		assert.Equal(t, want, g)
	}
}

func TestDispatcher_StoreCachesByContent(t *testing.T) {
	store, err := NewMemStore(8)
	require.NoError(t, err)
	grammar := &stubExtractor{
		supports: map[Language]bool{LangPython: true},
		extract: func(src []byte, lang Language) (*Graph, error) {
			return NewTreeSitterExtractor(lang).Extract(context.Background(), src, lang)
		},
	}
	d, _ := newQuietDispatcher(WithGrammar(grammar), WithStore(store))
	ctx := context.Background()

	first := d.Resolve(ctx, []byte("x = 1\n"), "python")
	assert.False(t, first.Cached)
	second := d.Resolve(ctx, []byte("x = 1\n"), "py")
	assert.True(t, second.Cached)
	assert.Equal(t, first.Graph, second.Graph)
	assert.Equal(t, 1, grammar.calls)

	// Mutating a returned graph must not leak into the cache.
	second.Graph.Nodes[0].Label = "tampered"
	third := d.Resolve(ctx, []byte("x = 1\n"), "python")
	assert.Equal(t, "Program", third.Graph.Nodes[0].Label)

	d.Resolve(ctx, []byte("y = 2\n"), "python")
	assert.Equal(t, 2, grammar.calls)
	assert.Equal(t, 2, store.Len())
}

// ---------------------------------------------------------------------------
// Batch
// ---------------------------------------------------------------------------

func TestDispatcher_ExtractAllKeepsOrder(t *testing.T) {
	d, _ := newQuietDispatcher()
	sources := []Source{
		{Path: "a.py", Language: "python", Text: []byte("def a():\n    pass\n")},
		{Path: "b.js", Language: "javascript", Text: []byte("function b() {}\n")},
		{Path: "c.txt", Language: "text", Text: []byte("hello")},
		{Path: "d.py", Language: "python", Text: []byte("def d(:\n")},
	}

	out, err := d.ExtractAll(context.Background(), sources, 2)
	require.NoError(t, err)
	require.Len(t, out, len(sources))

	for i, ex := range out {
		assert.Equal(t, sources[i].Path, ex.Path)
		require.NoError(t, ex.Graph.Validate(), ex.Path)
	}
	assert.Equal(t, StrategyGrammar, out[0].Strategy)
	assert.Equal(t, StrategyGrammar, out[1].Strategy)
	assert.Equal(t, StrategyScanner, out[2].Strategy)
	assert.Equal(t, StrategyScanner, out[3].Strategy)
}

func TestDispatcher_ExtractAllCancelled(t *testing.T) {
	d, _ := newQuietDispatcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.ExtractAll(ctx, []Source{{Path: "a.py", Language: "python", Text: []byte("x = 1")}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDispatcher_DefaultRoutesBraceLanguagesToGrammar(t *testing.T) {
	d, _ := newQuietDispatcher()
	src := []byte("function foo() {\n  let x = 1;\n}\n")

	for _, tag := range []string{"javascript", "typescript"} {
		res := d.Resolve(context.Background(), src, tag)
		assert.Equal(t, StrategyGrammar, res.Strategy, tag)

		top := childrenOf(t, res.Graph, RootID)
		require.Len(t, top, 1, tag)
		assert.Equal(t, "def foo(...)", top[0].Label, "grammar labels, not the raw header line")
	}

	scanned := NewLineScanner().Scan(string(src), LangJavaScript)
	assert.Equal(t, "function foo() {", scanned.Nodes[1].Label)
}
