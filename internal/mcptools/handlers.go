package mcptools

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/codeshift/internal/crawler"
	"github.com/dusk-indust/codeshift/internal/export"
	"github.com/dusk-indust/codeshift/internal/graph"
	"github.com/dusk-indust/codeshift/internal/translate"
)

// CodeService handles MCP tool calls. It wraps the extraction dispatcher and
// an optional translator.
type CodeService struct {
	dispatcher *graph.Dispatcher
	translator translate.Translator
	exclude    []string
}

// NewCodeService creates a CodeService. A nil translator makes convert_code
// report an error.
func NewCodeService(d *graph.Dispatcher, t translate.Translator, exclude []string) *CodeService {
	return &CodeService{dispatcher: d, translator: t, exclude: exclude}
}

// ExtractTree builds the syntax tree graph of one snippet.
func (s *CodeService) ExtractTree(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractTreeInput,
) (*mcp.CallToolResult, ExtractTreeOutput, error) {
	if input.SourceLanguage == "" {
		return nil, ExtractTreeOutput{}, fmt.Errorf("sourceLanguage is required")
	}

	res := s.dispatcher.Resolve(ctx, []byte(input.SourceCode), input.SourceLanguage)
	out := ExtractTreeOutput{
		Graph:      res.Graph,
		Stats:      res.Graph.Stats(),
		Language:   res.Language,
		Strategy:   res.Strategy,
		Diagnostic: res.Diagnostic,
	}
	if input.Mermaid {
		out.Mermaid = export.GenerateMermaid(res.Graph)
	}
	return nil, out, nil
}

// ExtractDirectory extracts every recognised source file below a path and
// summarises each tree.
func (s *CodeService) ExtractDirectory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractDirectoryInput,
) (*mcp.CallToolResult, ExtractDirectoryOutput, error) {
	if input.Path == "" {
		return nil, ExtractDirectoryOutput{}, fmt.Errorf("path is required")
	}
	if _, err := os.Stat(input.Path); err != nil {
		return nil, ExtractDirectoryOutput{}, fmt.Errorf("cannot access path: %w", err)
	}

	exclude := append(append([]string{}, s.exclude...), input.Exclude...)
	sources, err := crawler.Crawl(input.Path, crawler.Options{Exclude: exclude})
	if err != nil {
		return nil, ExtractDirectoryOutput{}, err
	}

	results, err := s.dispatcher.ExtractAll(ctx, sources, 0)
	if err != nil {
		return nil, ExtractDirectoryOutput{}, err
	}

	out := ExtractDirectoryOutput{
		Files:     make([]FileSummary, 0, len(results)),
		FileCount: len(results),
	}
	for _, r := range results {
		if r.Diagnostic != "" {
			out.Fallbacks++
		}
		out.Files = append(out.Files, FileSummary{
			Path:       r.Path,
			Language:   r.Language,
			Strategy:   r.Strategy,
			Diagnostic: r.Diagnostic,
			Stats:      r.Graph.Stats(),
		})
	}
	return nil, out, nil
}

// ConvertCode translates code into another language and returns the source's
// tree alongside.
func (s *CodeService) ConvertCode(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConvertCodeInput,
) (*mcp.CallToolResult, ConvertCodeOutput, error) {
	req := translate.Request{
		SourceCode:     input.SourceCode,
		SourceLanguage: input.SourceLanguage,
		TargetLanguage: input.TargetLanguage,
	}
	if err := req.Validate(); err != nil {
		return nil, ConvertCodeOutput{}, err
	}
	if s.translator == nil {
		return nil, ConvertCodeOutput{}, errors.New("no translator configured: set GEMINI_API_KEY")
	}

	converted, err := s.translator.Translate(ctx, req)
	if err != nil {
		return nil, ConvertCodeOutput{}, fmt.Errorf("convert via %s: %w", s.translator.Name(), err)
	}

	return nil, ConvertCodeOutput{
		TransformedCode: converted,
		Graph:           s.dispatcher.Extract(ctx, input.SourceCode, input.SourceLanguage),
	}, nil
}
