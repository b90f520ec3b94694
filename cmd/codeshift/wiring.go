package main

import (
	"context"
	"fmt"
	"log"

	"github.com/dusk-indust/codeshift/internal/config"
	"github.com/dusk-indust/codeshift/internal/graph"
	"github.com/dusk-indust/codeshift/internal/translate"
)

// newStore opens the persistent tree store at kuzuDir, or an in-memory LRU
// cache when kuzuDir is empty.
func newStore(cfg *config.Config, kuzuDir string) (graph.Store, error) {
	if kuzuDir != "" {
		return openTreeStore(kuzuDir)
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = graph.DefaultCacheSize
	}
	return graph.NewMemStore(size)
}

// newDispatcher builds the extraction dispatcher from config.
func newDispatcher(cfg *config.Config, store graph.Store) *graph.Dispatcher {
	opts := []graph.Option{
		graph.WithAliases(cfg.Aliases),
		graph.WithStore(store),
	}
	if len(cfg.Grammars) > 0 {
		langs := make([]graph.Language, 0, len(cfg.Grammars))
		for _, g := range cfg.Grammars {
			langs = append(langs, graph.NormalizeLanguage(g))
		}
		opts = append(opts, graph.WithGrammar(graph.NewTreeSitterExtractor(langs...)))
	}
	if !cfg.Verbose {
		opts = append(opts, graph.WithLogger(func(string, ...any) {}))
	}
	return graph.NewDispatcher(opts...)
}

// newTranslator returns the Gemini translator, or nil when no API key is
// configured.
func newTranslator(ctx context.Context, cfg *config.Config) (translate.Translator, error) {
	if cfg.APIKey == "" {
		log.Printf("codeshift: no GEMINI_API_KEY set, code conversion disabled")
		return nil, nil
	}
	var temp float32 = config.DefaultTemperature
	if cfg.Temperature != nil {
		temp = *cfg.Temperature
	}
	t, err := translate.NewGeminiTranslator(ctx, cfg.APIKey, cfg.Model, temp)
	if err != nil {
		return nil, fmt.Errorf("create translator: %w", err)
	}
	return t, nil
}
