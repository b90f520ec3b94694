package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// shutdownTimeout bounds the graceful shutdown of the HTTP transport.
const shutdownTimeout = 10 * time.Second

// NewCodeMCPServer creates an MCP server with the extraction and conversion
// tools registered.
func NewCodeMCPServer(svc *CodeService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "codeshift",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_tree",
		Description: "Build the syntax tree of a code snippet as a graph of typed, labelled nodes. Uses a tree-sitter grammar when one exists and the code parses, and a line scanner otherwise.",
	}, svc.ExtractTree)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_directory",
		Description: "Extract a syntax tree for every source file under a directory, honouring .gitignore, and return per-file node counts.",
	}, svc.ExtractDirectory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert_code",
		Description: "Convert code from one programming language to another with a language model and return the converted code with the source's syntax tree.",
	}, svc.ConvertCode)

	return server
}

// RunMCPServer serves the MCP tools over streamable HTTP until ctx is
// cancelled.
func RunMCPServer(ctx context.Context, svc *CodeService, addr string) error {
	server := NewCodeMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- httpServer.Shutdown(sctx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-shutdownErr; err != nil {
		log.Printf("mcptools: shutdown: %v", err)
		return fmt.Errorf("mcp server shutdown: %w", err)
	}
	return nil
}

// RunMCPServerStdio runs the MCP tools on stdio, blocking until stdin is
// closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, svc *CodeService) error {
	return NewCodeMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}
