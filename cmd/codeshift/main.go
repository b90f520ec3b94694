package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set by goreleaser at build time.
var version = "dev"

var configDir string

var rootCmd = &cobra.Command{
	Use:   "codeshift",
	Short: "codeshift - syntax tree graphs and LLM code conversion",
	Long: `codeshift turns source code into a tree-shaped graph of typed, labelled nodes,
using tree-sitter grammars where available and a line scanner otherwise, and
converts code between languages through a language model.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding codeshift.yml and .env")

	rootCmd.AddCommand(serveCmd, extractCmd, diagramCmd, mcpCmd, storedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
