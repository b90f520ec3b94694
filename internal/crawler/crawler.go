// Package crawler collects source files under a directory for batch
// extraction.
package crawler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/dusk-indust/codeshift/internal/graph"
)

// extToLanguage maps file extensions to language tags.
var extToLanguage = map[string]graph.Language{
	".go":  graph.LangGo,
	".ts":  graph.LangTypeScript,
	".tsx": graph.LangTypeScript,
	".js":  graph.LangJavaScript,
	".jsx": graph.LangJavaScript,
	".mjs": graph.LangJavaScript,
	".cjs": graph.LangJavaScript,
	".py":  graph.LangPython,
	".rs":  graph.LangRust,
}

// alwaysSkipped directories are never descended into.
var alwaysSkipped = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
}

// LanguageFor returns the language tag for path, or false for files the
// crawler does not collect.
func LanguageFor(path string) (graph.Language, bool) {
	l, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return l, ok
}

// Options controls a crawl.
type Options struct {
	// Exclude holds doublestar patterns matched against slash-separated
	// paths relative to the root, e.g. "**/vendor/**".
	Exclude []string
	// MaxFileSize skips larger files; zero means 1 MiB.
	MaxFileSize int64
}

// Crawl walks root and returns every recognised source file, honouring the
// root's .gitignore and opts.Exclude. Paths in the result are relative to
// root and sorted. A single file as root is returned as-is.
func Crawl(root string, opts Options) ([]graph.Source, error) {
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("crawl: invalid exclude pattern %q", p)
		}
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = 1 << 20
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}
	if !info.IsDir() {
		src, ok, err := readSource(root, filepath.Base(root), maxSize)
		if err != nil || !ok {
			return nil, err
		}
		return []graph.Source{src}, nil
	}

	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("crawl: read .gitignore: %w", err)
	}

	var out []graph.Source
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		slashed := filepath.ToSlash(rel)

		if d.IsDir() {
			if alwaysSkipped[d.Name()] || skip(gi, opts.Exclude, slashed+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if skip(gi, opts.Exclude, slashed) {
			return nil
		}

		src, ok, err := readSource(path, slashed, maxSize)
		if err != nil {
			return err
		}
		if ok {
			out = append(out, src)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("crawl %s: %w", root, err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func skip(gi *ignore.GitIgnore, exclude []string, rel string) bool {
	if gi != nil && gi.MatchesPath(rel) {
		return true
	}
	trimmed := strings.TrimSuffix(rel, "/")
	for _, p := range exclude {
		if ok, _ := doublestar.Match(p, trimmed); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func readSource(path, rel string, maxSize int64) (graph.Source, bool, error) {
	lang, ok := LanguageFor(path)
	if !ok {
		return graph.Source{}, false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return graph.Source{}, false, err
	}
	if info.Size() > maxSize {
		return graph.Source{}, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return graph.Source{}, false, err
	}
	return graph.Source{Path: rel, Language: string(lang), Text: data}, true, nil
}
