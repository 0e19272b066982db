package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ashwanth2007/TheVibeCoders/internal/llm"
	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

// fakeProvider returns a canned completion and records the last request.
type fakeProvider struct {
	content string
	err     error
	lastReq llm.CompletionRequest
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return &llm.CompletionResponse{Content: p.content}, nil
}

const validResponse = `{
  "plan": "A page with a **red** button.",
  "files": [
    {"path": "index.html", "content": "<html><head><link rel=\"stylesheet\" href=\"style.css\"></head><body><button>Go</button><script src=\"script.js\"></script></body></html>"},
    {"path": "style.css", "content": "button { background: red; }"},
    {"path": "script.js", "content": ""},
    {"path": "assets/.gitkeep", "content": ""}
  ]
}`

func TestGenerateHappyPath(t *testing.T) {
	provider := &fakeProvider{content: validResponse}
	svc := NewService(provider, "gpt-4o")

	resp, err := svc.Generate(context.Background(), Request{Instruction: "A page with a red button"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(resp.Files) != 4 {
		t.Errorf("files = %d, want 4", len(resp.Files))
	}
	if !resp.Files.Contains("index.html") || !resp.Files.Contains("assets/.gitkeep") {
		t.Errorf("file convention missing: %v", resp.Files.Paths())
	}
	if resp.Plan == "" {
		t.Error("plan missing")
	}
	if !provider.lastReq.JSONMode {
		t.Error("generation call not made in JSON mode")
	}
}

func TestGenerateIncludesCurrentFilesAndSelection(t *testing.T) {
	provider := &fakeProvider{content: validResponse}
	svc := NewService(provider, "gpt-4o")

	_, err := svc.Generate(context.Background(), Request{
		Instruction:  "make the button blue",
		CurrentFiles: vfs.FileSet{{Path: "index.html", Content: "<html></html>"}},
		Selected:     `<button id="go">Go</button>`,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	user := provider.lastReq.Messages[len(provider.lastReq.Messages)-1]
	if !strings.Contains(user.Content, "index.html") {
		t.Error("current files not sent")
	}
	if !strings.Contains(user.Content, `<button id="go">`) {
		t.Error("selected element not sent")
	}
}

func TestGenerateImageAttachment(t *testing.T) {
	provider := &fakeProvider{content: validResponse}
	svc := NewService(provider, "gpt-4o")

	_, err := svc.Generate(context.Background(), Request{
		Instruction: "build this",
		Attachments: []Attachment{{Kind: AttachmentImage, Name: "mock.png", Data: "data:image/png;base64,AA"}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	user := provider.lastReq.Messages[len(provider.lastReq.Messages)-1]
	if len(user.Images) != 1 {
		t.Errorf("images = %d, want 1", len(user.Images))
	}
}

func TestGenerateProviderFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("rate limited")}
	svc := NewService(provider, "gpt-4o")

	_, err := svc.Generate(context.Background(), Request{Instruction: "anything"})
	var re *ResponseError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *ResponseError", err)
	}
}

func TestGenerateEmptyInstruction(t *testing.T) {
	svc := NewService(&fakeProvider{content: validResponse}, "gpt-4o")
	if _, err := svc.Generate(context.Background(), Request{Instruction: "   "}); err == nil {
		t.Fatal("blank instruction accepted")
	}
}

func TestParseResponseStripsFences(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"
	resp, err := ParseResponse(fenced)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if len(resp.Files) != 4 {
		t.Errorf("files = %d", len(resp.Files))
	}
}

func TestParseResponseRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":          `this is prose, not JSON`,
		"no files key":      `{"plan": "did things"}`,
		"empty files":       `{"plan": "x", "files": []}`,
		"entry not object":  `{"plan": "x", "files": ["index.html"]}`,
		"entry no path":     `{"plan": "x", "files": [{"content": "hi"}]}`,
		"entry no content":  `{"plan": "x", "files": [{"path": "index.html"}]}`,
		"empty path":        `{"plan": "x", "files": [{"path": "", "content": ""}]}`,
		"duplicate paths":   `{"plan": "x", "files": [{"path": "a.html", "content": ""}, {"path": "a.html", "content": ""}]}`,
		"absolute path":     `{"plan": "x", "files": [{"path": "/etc/passwd", "content": ""}]}`,
		"traversal segment": `{"plan": "x", "files": [{"path": "../up.html", "content": ""}]}`,
	}
	for name, raw := range cases {
		if _, err := ParseResponse(raw); err == nil {
			t.Errorf("%s: accepted", name)
		} else {
			var re *ResponseError
			if !errors.As(err, &re) {
				t.Errorf("%s: error type %T, want *ResponseError", name, err)
			}
		}
	}
}

func TestRenderPlan(t *testing.T) {
	html := RenderPlan("# Plan\n\nMade the button **blue**.\n\n```css\nbutton { color: blue; }\n```")
	if !strings.Contains(html, "<h1") {
		t.Error("heading not rendered")
	}
	if !strings.Contains(html, "<strong>blue</strong>") {
		t.Error("emphasis not rendered")
	}
}
