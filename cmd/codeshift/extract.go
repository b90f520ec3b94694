package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codeshift/internal/config"
	"github.com/dusk-indust/codeshift/internal/crawler"
	"github.com/dusk-indust/codeshift/internal/export"
	"github.com/dusk-indust/codeshift/internal/graph"
)

var (
	extractLang        string
	extractFormat      string
	extractKuzu        string
	extractConcurrency int
	extractExclude     []string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file|dir|->",
	Short: "Extract syntax tree graphs from files",
	Long: `Extract the syntax tree graph of a file, every source file below a directory,
or stdin ("-", requires --lang). Directories honour .gitignore and the
configured exclude patterns.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractLang, "lang", "", "language tag (default: from the file extension)")
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", "json", "output format: json, hierarchy, mermaid, stats")
	extractCmd.Flags().StringVar(&extractKuzu, "kuzu", "", "persist extracted trees in a KuzuDB directory")
	extractCmd.Flags().IntVarP(&extractConcurrency, "concurrency", "j", 0, "parallel extractions (default: GOMAXPROCS)")
	extractCmd.Flags().StringSliceVar(&extractExclude, "exclude", nil, "extra glob patterns to skip")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sources, err := readSources(cmd.InOrStdin(), args[0], append(cfg.Exclude, extractExclude...))
	if err != nil {
		return err
	}

	store, err := newStore(cfg, extractKuzu)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	d := newDispatcher(cfg, store)
	results, err := d.ExtractAll(cmd.Context(), sources, extractConcurrency)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		for _, r := range results {
			log.Printf("extract: %s (%s, %s) %d nodes", r.Path, r.Language, r.Strategy, len(r.Graph.Nodes))
		}
	}

	return writeResults(cmd.OutOrStdout(), results, extractFormat)
}

// readSources resolves the extract argument into sources.
func readSources(stdin io.Reader, arg string, exclude []string) ([]graph.Source, error) {
	if arg == "-" {
		if extractLang == "" {
			return nil, fmt.Errorf("--lang is required when reading stdin")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return []graph.Source{{Path: "-", Language: extractLang, Text: data}}, nil
	}

	info, err := os.Stat(arg)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() && extractLang != "" {
		data, err := os.ReadFile(arg)
		if err != nil {
			return nil, err
		}
		return []graph.Source{{Path: arg, Language: extractLang, Text: data}}, nil
	}

	sources, err := crawler.Crawl(arg, crawler.Options{Exclude: exclude})
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no recognised source files in %s", arg)
	}
	if extractLang != "" {
		for i := range sources {
			sources[i].Language = extractLang
		}
	}
	return sources, nil
}

// writeResults renders results in format. A single result is written bare;
// several are written as a list keyed by path.
func writeResults(w io.Writer, results []graph.Extracted, format string) error {
	switch format {
	case "json":
		if len(results) == 1 {
			return export.WriteJSON(w, results[0].Result)
		}
		return export.WriteJSON(w, results)

	case "hierarchy":
		if len(results) == 1 {
			return export.WriteJSON(w, export.Hierarchy(results[0].Graph))
		}
		trees := make(map[string]*export.HierarchyNode, len(results))
		for _, r := range results {
			trees[r.Path] = export.Hierarchy(r.Graph)
		}
		return export.WriteJSON(w, trees)

	case "mermaid":
		for i, r := range results {
			if len(results) > 1 {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "%%%% %s\n", r.Path)
			}
			if _, err := io.WriteString(w, export.GenerateMermaid(r.Graph)); err != nil {
				return err
			}
		}
		return nil

	case "stats":
		type fileStats struct {
			Path     string           `json:"path"`
			Language graph.Language   `json:"language"`
			Strategy graph.Strategy   `json:"strategy,omitempty"`
			Stats    graph.GraphStats `json:"stats"`
		}
		out := make([]fileStats, len(results))
		for i, r := range results {
			out[i] = fileStats{Path: r.Path, Language: r.Language, Strategy: r.Strategy, Stats: r.Graph.Stats()}
		}
		return export.WriteJSON(w, out)

	default:
		return fmt.Errorf("unknown format %q (want json, hierarchy, mermaid or stats)", format)
	}
}
