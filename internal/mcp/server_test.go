package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ashwanth2007/TheVibeCoders/internal/db"
	"github.com/ashwanth2007/TheVibeCoders/internal/project"
	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

func newTestMCP(t *testing.T) (*Server, *project.Store) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := project.NewStore(database)
	return NewServer(store, nil, nil), store
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("content is not text: %#v", result.Content[0])
	}
	return text.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"list_projects", listProjectsTool, "list_projects"},
		{"get_project_files", getProjectFilesTool, "get_project_files"},
		{"search_projects", searchProjectsTool, "search_projects"},
		{"resolve_preview", resolvePreviewTool, "resolve_preview"},
		{"generate_app", generateAppTool, "generate_app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestHandleListProjects(t *testing.T) {
	srv, store := newTestMCP(t)
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		result, err := srv.handleListProjects(ctx, mcp.CallToolRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(textOf(t, result), "No projects") {
			t.Error("empty store should say so")
		}
	})

	t.Run("with projects", func(t *testing.T) {
		if _, err := store.Create(ctx, "Todo App", "build a todo app"); err != nil {
			t.Fatal(err)
		}
		result, err := srv.handleListProjects(ctx, mcp.CallToolRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := textOf(t, result)
		if !strings.Contains(text, "Todo App") || !strings.Contains(text, "build a todo app") {
			t.Errorf("listing = %q", text)
		}
	})
}

func TestHandleGetProjectFiles(t *testing.T) {
	srv, store := newTestMCP(t)
	ctx := context.Background()

	p, err := store.Create(ctx, "app", "")
	if err != nil {
		t.Fatal(err)
	}
	p.History.Append(vfs.FileSet{
		{Path: "index.html", Content: "<html></html>"},
		{Path: "style.css", Content: "body{}"},
	}, "seed")
	if err := store.SaveHistory(ctx, p.ID, p.History); err != nil {
		t.Fatal(err)
	}

	t.Run("all files", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"project_id": p.ID}

		result, err := srv.handleGetProjectFiles(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := textOf(t, result)
		if !strings.Contains(text, "index.html") || !strings.Contains(text, "body{}") {
			t.Errorf("files = %q", text)
		}
	})

	t.Run("single file", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"project_id": p.ID, "path": "style.css"}

		result, err := srv.handleGetProjectFiles(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := textOf(t, result); got != "body{}" {
			t.Errorf("content = %q", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"project_id": p.ID, "path": "nope.js"}

		result, err := srv.handleGetProjectFiles(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing file")
		}
	})

	t.Run("unknown project", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"project_id": "nope"}

		result, err := srv.handleGetProjectFiles(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for unknown project")
		}
	})

	t.Run("missing project_id", func(t *testing.T) {
		result, err := srv.handleGetProjectFiles(ctx, mcp.CallToolRequest{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing project_id")
		}
	})
}

func TestHandleResolvePreview(t *testing.T) {
	srv, store := newTestMCP(t)
	ctx := context.Background()

	p, err := store.Create(ctx, "app", "")
	if err != nil {
		t.Fatal(err)
	}
	p.History.Append(vfs.FileSet{
		{Path: "index.html", Content: `<html><head><link rel="stylesheet" href="style.css"></head><body></body></html>`},
		{Path: "style.css", Content: "body{color:red}"},
	}, "seed")
	if err := store.SaveHistory(ctx, p.ID, p.History); err != nil {
		t.Fatal(err)
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"project_id": p.ID}

	result, err := srv.handleResolvePreview(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := textOf(t, result)
	if !strings.Contains(text, "body{color:red}") {
		t.Error("stylesheet not inlined")
	}
	if strings.Contains(text, `<link rel="stylesheet"`) {
		t.Error("link tag still present after inlining")
	}
}

func TestUnconfiguredToolsReportErrors(t *testing.T) {
	srv, _ := newTestMCP(t)
	ctx := context.Background()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"query": "anything"}
	result, err := srv.handleSearchProjects(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("search without an index should be a tool error")
	}

	req = mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"name": "x", "instruction": "y"}
	result, err = srv.handleGenerateApp(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("generate without a provider should be a tool error")
	}
}
