package mcptools

import "github.com/dusk-indust/codeshift/internal/graph"

// --- MCP Tool Input Types ---
// The MCP Go SDK derives each tool's JSON schema from these struct tags.

// ExtractTreeInput is the input for the extract_tree MCP tool.
type ExtractTreeInput struct {
	SourceCode     string `json:"sourceCode" jsonschema:"the source text to analyse"`
	SourceLanguage string `json:"sourceLanguage" jsonschema:"language tag, e.g. python, javascript, ts, go, rust"`
	Mermaid        bool   `json:"mermaid,omitempty" jsonschema:"also render the tree as a Mermaid graph TD diagram"`
}

// ExtractTreeOutput is the result of the extract_tree MCP tool.
type ExtractTreeOutput struct {
	Graph      *graph.Graph     `json:"graphData"`
	Stats      graph.GraphStats `json:"stats"`
	Language   graph.Language   `json:"language"`
	Strategy   graph.Strategy   `json:"strategy,omitempty"`
	Diagnostic string           `json:"diagnostic,omitempty"`
	Mermaid    string           `json:"mermaid,omitempty"`
}

// ExtractDirectoryInput is the input for the extract_directory MCP tool.
type ExtractDirectoryInput struct {
	Path    string   `json:"path" jsonschema:"absolute path to a directory or a single source file"`
	Exclude []string `json:"exclude,omitempty" jsonschema:"glob patterns to skip, relative to path (e.g. vendor/**)"`
}

// FileSummary describes the tree extracted from one file.
type FileSummary struct {
	Path       string           `json:"path"`
	Language   graph.Language   `json:"language"`
	Strategy   graph.Strategy   `json:"strategy,omitempty"`
	Diagnostic string           `json:"diagnostic,omitempty"`
	Stats      graph.GraphStats `json:"stats"`
}

// ExtractDirectoryOutput is the result of the extract_directory MCP tool.
type ExtractDirectoryOutput struct {
	Files     []FileSummary `json:"files"`
	FileCount int           `json:"fileCount"`
	Fallbacks int           `json:"fallbacks"`
}

// ConvertCodeInput is the input for the convert_code MCP tool.
type ConvertCodeInput struct {
	SourceCode     string `json:"sourceCode" jsonschema:"the code to convert"`
	SourceLanguage string `json:"sourceLanguage" jsonschema:"language the code is written in"`
	TargetLanguage string `json:"targetLanguage" jsonschema:"language to convert the code into"`
}

// ConvertCodeOutput is the result of the convert_code MCP tool.
type ConvertCodeOutput struct {
	TransformedCode string       `json:"transformedCode"`
	Graph           *graph.Graph `json:"graphData"`
}
