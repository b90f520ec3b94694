package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/dusk-indust/codeshift/internal/graph"
	"github.com/dusk-indust/codeshift/internal/translate"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	msgMissingParams = "Missing required parameters"
)

// ConvertResponse is the body of a successful POST /convert.
type ConvertResponse struct {
	Status          string       `json:"status"`
	OriginalCode    string       `json:"originalCode"`
	TransformedCode string       `json:"transformedCode"`
	GraphData       *graph.Graph `json:"graphData"`
	// ExecutionTime is in seconds.
	ExecutionTime  float64 `json:"executionTime"`
	SourceLanguage string  `json:"sourceLanguage"`
	TargetLanguage string  `json:"targetLanguage"`
}

// ExtractRequest is the body of POST /extract.
type ExtractRequest struct {
	SourceCode     string `json:"sourceCode"`
	SourceLanguage string `json:"sourceLanguage"`
}

// ExtractResponse is the body of a successful POST /extract.
type ExtractResponse struct {
	Status     string         `json:"status"`
	GraphData  *graph.Graph   `json:"graphData"`
	Language   graph.Language `json:"language"`
	Strategy   graph.Strategy `json:"strategy,omitempty"`
	Diagnostic string         `json:"diagnostic,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req translate.Request
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Validate() != nil {
		writeError(w, http.StatusBadRequest, msgMissingParams)
		return
	}
	if s.translator == nil {
		writeError(w, http.StatusServiceUnavailable, "no translator configured")
		return
	}

	start := time.Now()
	ctx := r.Context()

	converted, err := s.translator.Translate(ctx, req)
	if err != nil {
		log.Printf("server: convert %s to %s via %s: %v", req.SourceLanguage, req.TargetLanguage, s.translator.Name(), err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	g := s.dispatcher.Extract(ctx, req.SourceCode, req.SourceLanguage)

	writeJSON(w, http.StatusOK, ConvertResponse{
		Status:          statusSuccess,
		OriginalCode:    req.SourceCode,
		TransformedCode: converted,
		GraphData:       g,
		ExecutionTime:   time.Since(start).Seconds(),
		SourceLanguage:  req.SourceLanguage,
		TargetLanguage:  req.TargetLanguage,
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.SourceLanguage == "" {
		writeError(w, http.StatusBadRequest, msgMissingParams)
		return
	}

	res := s.dispatcher.Resolve(r.Context(), []byte(req.SourceCode), req.SourceLanguage)
	writeJSON(w, http.StatusOK, ExtractResponse{
		Status:     statusSuccess,
		GraphData:  res.Graph,
		Language:   res.Language,
		Strategy:   res.Strategy,
		Diagnostic: res.Diagnostic,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a size-limited JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errors.New("body too large")
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, ErrorResponse{Status: statusError, Message: message})
}
