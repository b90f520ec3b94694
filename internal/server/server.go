// Package server exposes extraction and code conversion over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/dusk-indust/codeshift/internal/graph"
	"github.com/dusk-indust/codeshift/internal/translate"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 4 << 20

// Server serves the conversion API.
type Server struct {
	dispatcher *graph.Dispatcher
	translator translate.Translator
	origins    []string

	http *http.Server
}

// New creates a Server. A nil translator disables POST /convert, which then
// answers 503. An empty origins list allows any origin.
func New(d *graph.Dispatcher, t translate.Translator, origins []string) *Server {
	return &Server{dispatcher: d, translator: t, origins: origins}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /convert", s.handleConvert)
	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return withCORS(s.origins, mux)
}

// Start binds addr and begins serving in a background goroutine. It returns
// the bound address, which differs from addr when addr uses port 0.
func (s *Server) Start(ctx context.Context, addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("server: listen %s: %w", addr, err)
	}

	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server: %v", err)
		}
	}()

	log.Printf("server: listening on %s", ln.Addr())
	return ln.Addr().String(), nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
