package llm

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestBuildChatRequestDefaults(t *testing.T) {
	req := buildChatRequest(CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	}, "gpt-4o")

	if req.Model != "gpt-4o" {
		t.Errorf("model = %q, want fallback", req.Model)
	}
	if req.MaxTokens != 4096 {
		t.Errorf("max tokens = %d, want default 4096", req.MaxTokens)
	}
	if req.ResponseFormat != nil {
		t.Error("response format set without JSON mode")
	}
}

func TestBuildChatRequestJSONMode(t *testing.T) {
	req := buildChatRequest(CompletionRequest{
		Model:    "gpt-4o-mini",
		JSONMode: true,
		Messages: []Message{{Role: RoleSystem, Content: "respond with JSON"}},
	}, "gpt-4o")

	if req.Model != "gpt-4o-mini" {
		t.Errorf("explicit model overridden: %q", req.Model)
	}
	if req.ResponseFormat == nil || req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Error("JSON mode not mapped to response format")
	}
}

func TestBuildChatRequestImages(t *testing.T) {
	req := buildChatRequest(CompletionRequest{
		Messages: []Message{{
			Role:    RoleUser,
			Content: "build this mockup",
			Images:  []string{"data:image/png;base64,AAAA"},
		}},
	}, "gpt-4o")

	if len(req.Messages) != 1 {
		t.Fatalf("messages = %d", len(req.Messages))
	}
	parts := req.Messages[0].MultiContent
	if len(parts) != 2 {
		t.Fatalf("multi-content parts = %d, want text + image", len(parts))
	}
	if parts[0].Type != openai.ChatMessagePartTypeText || parts[1].Type != openai.ChatMessagePartTypeImageURL {
		t.Error("wrong part types")
	}
	if parts[1].ImageURL == nil || parts[1].ImageURL.URL != "data:image/png;base64,AAAA" {
		t.Error("image URL not carried through")
	}
}
