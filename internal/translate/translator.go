// Package translate asks a language model to rewrite source code from one
// programming language into another.
package translate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Request is one conversion job.
type Request struct {
	SourceCode     string `json:"sourceCode"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

// Validate reports whether every field is present.
func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.SourceCode) == "" {
		missing = append(missing, "sourceCode")
	}
	if strings.TrimSpace(r.SourceLanguage) == "" {
		missing = append(missing, "sourceLanguage")
	}
	if strings.TrimSpace(r.TargetLanguage) == "" {
		missing = append(missing, "targetLanguage")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Translator converts code between languages.
// Implementations: GeminiTranslator (production), test stubs.
type Translator interface {
	// Translate returns only the converted code, without fences or commentary.
	Translate(ctx context.Context, req Request) (string, error)

	// Name identifies the backing model in logs.
	Name() string
}

const promptTemplate = `You are an expert programmer with deep knowledge of multiple programming languages.

Convert the following %[1]s code to %[2]s while preserving functionality, comments, and coding best practices:

` + "```" + `%[1]s
%[3]s
` + "```" + `

Return ONLY the converted %[2]s code without explanations, starting your response with ` + "```" + `%[2]s and ending with ` + "```" + `.
`

// BuildPrompt renders the conversion instructions for req.
func BuildPrompt(req Request) string {
	return fmt.Sprintf(promptTemplate, req.SourceLanguage, req.TargetLanguage, req.SourceCode)
}

var fencedBlockRe = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")

// CleanResponse returns the body of the first fenced code block in raw, or
// the trimmed reply when the model did not fence its answer.
func CleanResponse(raw string) string {
	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}
