package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codeshift/internal/config"
	"github.com/dusk-indust/codeshift/internal/mcptools"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server",
	Long:  `Expose extract_tree, extract_directory and convert_code as MCP tools over stdio, or over streamable HTTP with --http.`,
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve streamable HTTP on this address instead of stdio")
}

func runMCP(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newStore(cfg, "")
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	tr, err := newTranslator(ctx, cfg)
	if err != nil {
		return err
	}

	svc := mcptools.NewCodeService(newDispatcher(cfg, store), tr, cfg.Exclude)
	if mcpHTTPAddr != "" {
		return mcptools.RunMCPServer(ctx, svc, mcpHTTPAddr)
	}
	return mcptools.RunMCPServerStdio(ctx, svc)
}
