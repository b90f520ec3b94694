package graph

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupportedLanguage is returned by an Extractor asked to handle a
// language it has no rules for. The dispatcher treats it as a routing signal,
// never as a failure.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Extractor turns source text into a Graph.
// Implementations: TreeSitterExtractor (grammar-backed), LineScanner (heuristic).
type Extractor interface {
	// Extract builds a fresh Graph for source. lang must already be normalised.
	Extract(ctx context.Context, source []byte, lang Language) (*Graph, error)

	// Supports reports whether Extract has rules for lang.
	Supports(lang Language) bool
}

// SyntaxError reports source a grammar could not parse cleanly.
type SyntaxError struct {
	Language Language
	Line     int // 1-based
	Column   int // 1-based
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error at %d:%d: %s", e.Language, e.Line, e.Column, e.Msg)
}
