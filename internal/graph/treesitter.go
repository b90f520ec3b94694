package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Compile-time check.
var _ Extractor = (*TreeSitterExtractor)(nil)

// grammars lists every language with a tree-sitter grammar compiled in.
var grammars = map[Language]func() *tree_sitter.Language{
	LangGo:         func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_go.Language()) },
	LangJavaScript: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_javascript.Language()) },
	LangPython:     func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_python.Language()) },
	LangRust:       func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_rust.Language()) },
	LangTypeScript: func() *tree_sitter.Language { return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()) },
}

// GrammarLanguages returns every language that has a compiled-in grammar,
// sorted by name.
func GrammarLanguages() []Language {
	langs := make([]Language, 0, len(grammars))
	for l := range grammars {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// TreeSitterExtractor builds graphs from real syntax trees. A new tree-sitter
// parser is created per Extract call, so one extractor can serve concurrent
// callers; the language table is read-only after construction.
type TreeSitterExtractor struct {
	languages map[Language]*tree_sitter.Language
}

// NewTreeSitterExtractor registers the grammars for langs, or every compiled-in
// grammar when langs is empty. Languages without a grammar are ignored.
func NewTreeSitterExtractor(langs ...Language) *TreeSitterExtractor {
	if len(langs) == 0 {
		langs = GrammarLanguages()
	}
	registered := make(map[Language]*tree_sitter.Language, len(langs))
	for _, l := range langs {
		if load, ok := grammars[l]; ok {
			registered[l] = load()
		}
	}
	return &TreeSitterExtractor{languages: registered}
}

// Supports reports whether a grammar is registered for lang.
func (e *TreeSitterExtractor) Supports(lang Language) bool {
	_, ok := e.languages[lang]
	return ok
}

// SupportedLanguages returns the registered languages, sorted by name.
func (e *TreeSitterExtractor) SupportedLanguages() []Language {
	langs := make([]Language, 0, len(e.languages))
	for l := range e.languages {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// Extract parses source and walks the syntax tree in pre-order. The grammar's
// top-level node is mapped onto the Program root; every named node below it
// becomes a graph node. Source with ERROR or MISSING nodes yields a
// *SyntaxError and no graph.
func (e *TreeSitterExtractor) Extract(_ context.Context, source []byte, lang Language) (*Graph, error) {
	tsLang, ok := e.languages[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s", lang)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(root, source, lang)
	}

	b := newBuilder()
	cursor := root.Walk()
	defer cursor.Close()

	if cursor.GotoFirstChild() {
		walk(cursor, source, b, 0)
		for cursor.GotoNextSibling() {
			walk(cursor, source, b, 0)
		}
	}
	return b.graph(), nil
}

// walk emits the cursor's node under parent and recurses into its children
// with the new node as parent. Anonymous tokens are skipped.
func walk(cursor *tree_sitter.TreeCursor, source []byte, b *builder, parent int) {
	node := cursor.Node()
	if !node.IsNamed() {
		return
	}

	kind, label := describe(node, source)
	self := b.add(parent, kind, label)

	if cursor.GotoFirstChild() {
		walk(cursor, source, b, self)
		for cursor.GotoNextSibling() {
			walk(cursor, source, b, self)
		}
		cursor.GotoParent()
	}
}

// syntaxError locates the first ERROR or MISSING node in pre-order and turns
// it into a diagnostic.
func syntaxError(root *tree_sitter.Node, source []byte, lang Language) *SyntaxError {
	bad := firstError(root)
	if bad == nil {
		return &SyntaxError{Language: lang, Line: 1, Column: 1, Msg: "invalid syntax"}
	}
	pos := bad.StartPosition()
	se := &SyntaxError{
		Language: lang,
		Line:     int(pos.Row) + 1,
		Column:   int(pos.Column) + 1,
	}
	if bad.IsMissing() {
		se.Msg = fmt.Sprintf("missing %q", bad.Kind())
	} else {
		se.Msg = fmt.Sprintf("unexpected %q", snippet(bad.Utf8Text(source)))
	}
	return se
}

func firstError(node *tree_sitter.Node) *tree_sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if bad := firstError(child); bad != nil {
			return bad
		}
	}
	return nil
}

// maxSnippet caps the excerpt quoted in a syntax error, in runes.
const maxSnippet = 32

// snippet shortens a diagnostic excerpt to its first line, at most
// maxSnippet runes.
func snippet(s string) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	if r := []rune(s); len(r) > maxSnippet {
		s = string(r[:maxSnippet]) + "..."
	}
	return s
}
