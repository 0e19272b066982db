// Package generate calls the language model and turns its answer into a
// validated target file set. The contract is strict: a response without a
// well-formed files array is rejected whole, surfaced as a ResponseError,
// and never partially applied.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ashwanth2007/TheVibeCoders/internal/llm"
	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

// Service is the generation client. It owns prompt assembly and response
// validation; transport is delegated to the provider.
type Service struct {
	provider  llm.Provider
	model     string
	maxTokens int
}

// NewService creates a generation service on the given provider and model.
func NewService(provider llm.Provider, model string) *Service {
	return &Service{provider: provider, model: model, maxTokens: 16384}
}

// Generate runs one generation call and returns the validated response.
func (s *Service) Generate(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Instruction) == "" {
		return nil, &ResponseError{Reason: "instruction is empty"}
	}

	completion, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model:       s.model,
		Messages:    buildMessages(req),
		MaxTokens:   s.maxTokens,
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		return nil, &ResponseError{Reason: "provider call failed", Err: err}
	}

	resp, err := ParseResponse(completion.Content)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ParseResponse decodes and validates the model's raw output. Code fences
// around the JSON are tolerated; anything structurally wrong is not.
func ParseResponse(raw string) (*Response, error) {
	raw = stripFences(raw)

	// Decode into a loose shape first so a missing files key is
	// distinguishable from an empty one.
	var loose struct {
		Plan  string            `json:"plan"`
		Files []json.RawMessage `json:"files"`
	}
	if err := json.Unmarshal([]byte(raw), &loose); err != nil {
		return nil, &ResponseError{Reason: "response is not valid JSON", Err: err}
	}
	if loose.Files == nil {
		return nil, &ResponseError{Reason: "response lacks a files array"}
	}
	if len(loose.Files) == 0 {
		return nil, &ResponseError{Reason: "response files array is empty"}
	}

	files := make(vfs.FileSet, 0, len(loose.Files))
	for i, rawFile := range loose.Files {
		var entry struct {
			Path    *string `json:"path"`
			Content *string `json:"content"`
		}
		if err := json.Unmarshal(rawFile, &entry); err != nil {
			return nil, &ResponseError{Reason: fmt.Sprintf("files[%d] is not an object", i), Err: err}
		}
		if entry.Path == nil || entry.Content == nil {
			return nil, &ResponseError{Reason: fmt.Sprintf("files[%d] lacks path or content", i)}
		}
		files = append(files, vfs.VirtualFile{Path: *entry.Path, Content: *entry.Content})
	}

	if err := files.Validate(); err != nil {
		return nil, &ResponseError{Reason: "response file set is invalid", Err: err}
	}

	return &Response{Plan: loose.Plan, Files: files}, nil
}

// stripFences removes a markdown code fence wrapping, which models emit
// even when asked for bare JSON.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
