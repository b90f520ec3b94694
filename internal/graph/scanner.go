package graph

import (
	"context"
	"regexp"
	"strings"
)

// Compile-time check.
var _ Extractor = (*LineScanner)(nil)

var (
	// Named function, arrow function bound to a const, or a bare call-like
	// header opening a block on the same line.
	braceFuncRe = regexp.MustCompile(`function\s+\w+|const\s+\w+\s*=\s*\(.*\)\s*=>|\w+\s*\(\s*\)\s*\{`)

	braceDeclKeywords = []string{"var ", "let ", "const "}
)

// scanFamily is the rule set the scanner applies to one group of languages.
type scanFamily int

const (
	familyNone scanFamily = iota
	familyBrace
	familyIndent
)

// scanFamilies maps languages onto scanner rules. Languages missing here
// produce a graph with only the Program root.
var scanFamilies = map[Language]scanFamily{
	LangJavaScript: familyBrace,
	LangTypeScript: familyBrace,
	LangPython:     familyIndent,
}

// LineScanner approximates structure with per-line pattern tests. It never
// parses and never fails: lines it does not recognise contribute nothing.
//
// Brace languages pop a scope on a line holding only "}". Indentation
// languages have no pop rule, so every def/class nests under the previous one.
type LineScanner struct {
	families map[Language]scanFamily
}

// NewLineScanner returns a scanner with the built-in language families.
func NewLineScanner() *LineScanner {
	return &LineScanner{families: scanFamilies}
}

// Supports reports whether lang has scanner rules. Extract still accepts
// unsupported languages and returns the bare root for them.
func (s *LineScanner) Supports(lang Language) bool {
	return s.families[lang] != familyNone
}

// Extract scans source line by line. The returned error is always nil.
func (s *LineScanner) Extract(_ context.Context, source []byte, lang Language) (*Graph, error) {
	return s.Scan(string(source), lang), nil
}

// Scan is Extract without the Extractor plumbing.
func (s *LineScanner) Scan(source string, lang Language) *Graph {
	b := newBuilder()
	family := s.families[lang]
	if family == familyNone {
		return b.graph()
	}

	scopes := scopeStack{0}
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch family {
		case familyBrace:
			scanBraceLine(b, &scopes, line)
		case familyIndent:
			scanIndentLine(b, &scopes, line)
		}
	}
	return b.graph()
}

func scanBraceLine(b *builder, scopes *scopeStack, line string) {
	if strings.HasPrefix(line, "//") {
		return
	}
	switch {
	case braceFuncRe.MatchString(line):
		scopes.push(b.add(scopes.top(), KindFunction, line))
	case line == "}" && scopes.depth() > 1:
		scopes.pop()
	case containsAny(line, braceDeclKeywords):
		b.add(scopes.top(), KindVariable, line)
	}
}

func scanIndentLine(b *builder, scopes *scopeStack, line string) {
	if strings.HasPrefix(line, "#") {
		return
	}
	switch {
	case strings.HasPrefix(line, "def "):
		scopes.push(b.add(scopes.top(), KindFunction, line))
	case strings.HasPrefix(line, "class "):
		scopes.push(b.add(scopes.top(), KindClass, line))
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
