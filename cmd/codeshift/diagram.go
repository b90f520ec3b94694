package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codeshift/internal/config"
	"github.com/dusk-indust/codeshift/internal/crawler"
	"github.com/dusk-indust/codeshift/internal/export"
)

var diagramLang string

var diagramCmd = &cobra.Command{
	Use:   "diagram <file>",
	Short: "Print a file's syntax tree as a Mermaid diagram",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiagram,
}

func init() {
	diagramCmd.Flags().StringVar(&diagramLang, "lang", "", "language tag (default: from the file extension)")
}

func runDiagram(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	lang := diagramLang
	if lang == "" {
		l, ok := crawler.LanguageFor(path)
		if !ok {
			return fmt.Errorf("cannot infer language of %s; pass --lang", path)
		}
		lang = string(l)
	}

	g := newDispatcher(cfg, nil).Extract(cmd.Context(), string(data), lang)
	fmt.Fprint(cmd.OutOrStdout(), export.GenerateMermaid(g))
	return nil
}
