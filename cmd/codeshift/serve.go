package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/codeshift/internal/config"
	"github.com/dusk-indust/codeshift/internal/server"
)

var (
	serveAddr string
	serveKuzu string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the conversion HTTP API",
	Long:  `Serve POST /convert, POST /extract and GET /healthz until interrupted.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, then :5000)")
	serveCmd.Flags().StringVar(&serveKuzu, "kuzu", "", "persist extracted trees in a KuzuDB directory")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newStore(cfg, serveKuzu)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	tr, err := newTranslator(ctx, cfg)
	if err != nil {
		return err
	}

	srv := server.New(newDispatcher(cfg, store), tr, cfg.AllowedOrigins)
	if _, err := srv.Start(ctx, cfg.Addr); err != nil {
		return err
	}

	<-ctx.Done()
	log.Printf("codeshift: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
