package graph

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Strategy names the extractor that produced a graph.
type Strategy string

const (
	StrategyGrammar Strategy = "grammar"
	StrategyScanner Strategy = "scanner"
)

// Result is a graph plus how it was produced.
type Result struct {
	Graph    *Graph   `json:"graphData"`
	Language Language `json:"language"`
	// Strategy is empty for cached results; the store keeps only the graph.
	Strategy Strategy `json:"strategy,omitempty"`
	// Diagnostic holds the grammar error that forced a scanner fallback.
	Diagnostic string `json:"diagnostic,omitempty"`
	Cached     bool   `json:"cached,omitempty"`
}

// Dispatcher routes extraction to the grammar-backed extractor when the
// language has a grammar and the source parses, and to the line scanner
// otherwise. It always returns a graph.
type Dispatcher struct {
	grammar Extractor
	scanner Extractor
	store   Store
	aliases map[string]Language
	logf    func(format string, args ...any)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithGrammar replaces the grammar-backed extractor.
func WithGrammar(e Extractor) Option {
	return func(d *Dispatcher) { d.grammar = e }
}

// WithScanner replaces the fallback extractor. It must never fail.
func WithScanner(e Extractor) Option {
	return func(d *Dispatcher) { d.scanner = e }
}

// WithStore caches results by content key.
func WithStore(s Store) Option {
	return func(d *Dispatcher) { d.store = s }
}

// WithAliases adds language-tag aliases, e.g. {"node": "javascript"}.
// They are consulted before the built-in aliases.
func WithAliases(aliases map[string]string) Option {
	return func(d *Dispatcher) {
		for k, v := range aliases {
			d.aliases[strings.ToLower(strings.TrimSpace(k))] = NormalizeLanguage(v)
		}
	}
}

// WithLogger redirects fallback diagnostics. The default is log.Printf.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(d *Dispatcher) { d.logf = logf }
}

// NewDispatcher wires every compiled-in grammar and the line scanner.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		aliases: make(map[string]Language),
		logf:    log.Printf,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.grammar == nil {
		d.grammar = NewTreeSitterExtractor()
	}
	if d.scanner == nil {
		d.scanner = NewLineScanner()
	}
	return d
}

// Language normalises a caller-supplied language tag.
func (d *Dispatcher) Language(tag string) Language {
	if l, ok := d.aliases[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return l
	}
	return NormalizeLanguage(tag)
}

// Extract returns the graph for source written in the tagged language.
func (d *Dispatcher) Extract(ctx context.Context, source, tag string) *Graph {
	return d.Resolve(ctx, []byte(source), tag).Graph
}

// Resolve is Extract with routing details.
func (d *Dispatcher) Resolve(ctx context.Context, source []byte, tag string) Result {
	lang := d.Language(tag)

	var key string
	if d.store != nil {
		key = Key(lang, source)
		if g, err := d.store.Get(ctx, key); err != nil {
			d.logf("extract: cache get %s: %v", key, err)
		} else if g != nil {
			return Result{Graph: g, Language: lang, Cached: true}
		}
	}

	res := d.route(ctx, source, lang)

	if d.store != nil {
		if err := d.store.Put(ctx, key, res.Graph); err != nil {
			d.logf("extract: cache put %s: %v", key, err)
		}
	}
	return res
}

func (d *Dispatcher) route(ctx context.Context, source []byte, lang Language) Result {
	res := Result{Language: lang}

	if d.grammar.Supports(lang) {
		g, err := d.tryGrammar(ctx, source, lang)
		if err == nil {
			res.Graph, res.Strategy = g, StrategyGrammar
			return res
		}
		var se *SyntaxError
		if errors.As(err, &se) {
			d.logf("extract: %s syntax error at %d:%d, falling back to line scanner: %s", lang, se.Line, se.Column, se.Msg)
		} else {
			d.logf("extract: %s grammar failed, falling back to line scanner: %v", lang, err)
		}
		res.Diagnostic = err.Error()
	}

	g, err := d.scanner.Extract(ctx, source, lang)
	if err != nil || g == nil {
		// A custom scanner broke its contract; answer with the bare root.
		d.logf("extract: %s line scanner failed: %v", lang, err)
		g = newBuilder().graph()
	}
	res.Graph, res.Strategy = g, StrategyScanner
	return res
}

// tryGrammar runs the grammar extractor and converts a panic inside the
// binding into an error so the scanner still gets its turn.
func (d *Dispatcher) tryGrammar(ctx context.Context, source []byte, lang Language) (g *Graph, err error) {
	defer func() {
		if r := recover(); r != nil {
			g, err = nil, fmt.Errorf("grammar extractor panicked: %v", r)
		}
	}()
	return d.grammar.Extract(ctx, source, lang)
}

// ---------- Batch ----------

// Source is one input to ExtractAll.
type Source struct {
	Path     string
	Language string
	Text     []byte
}

// Extracted pairs a batch input with its result.
type Extracted struct {
	Path string `json:"path"`
	Result
}

// ExtractAll extracts every source concurrently, at most limit at a time
// (GOMAXPROCS when limit <= 0). Results keep the input order. The only error
// is the context's, since extraction itself cannot fail.
func (d *Dispatcher) ExtractAll(ctx context.Context, sources []Source, limit int) ([]Extracted, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	out := make([]Extracted, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = Extracted{Path: src.Path, Result: d.Resolve(gctx, src.Text, src.Language)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
