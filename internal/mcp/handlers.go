package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ashwanth2007/TheVibeCoders/internal/generate"
	"github.com/ashwanth2007/TheVibeCoders/internal/project"
	"github.com/ashwanth2007/TheVibeCoders/internal/resolve"
)

// handleListProjects lists all stored projects.
func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries, err := s.projects.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing projects failed: %v", err)), nil
	}
	if len(summaries) == 0 {
		return mcp.NewToolResultText("No projects yet. Use generate_app to create one."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d project(s):\n", len(summaries))
	for _, sum := range summaries {
		fmt.Fprintf(&sb, "\n- %s (id: %s, versions: %d)\n", sum.Name, sum.ID, sum.Versions)
		if sum.InitialPrompt != "" {
			fmt.Fprintf(&sb, "  Prompt: %s\n", sum.InitialPrompt)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetProjectFiles returns a project's current files.
func (s *Server) handleGetProjectFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project_id"), nil
	}

	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no project with id %q", projectID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("loading project failed: %v", err)), nil
	}

	entry, ok := p.History.Current()
	if !ok {
		return mcp.NewToolResultText("The project has no files yet."), nil
	}

	if path := request.GetString("path", ""); path != "" {
		f, ok := entry.Files.Get(path)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no file %q in project %s", path, p.Name)), nil
		}
		return mcp.NewToolResultText(f.Content), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Project %s, version %d of %d:\n", p.Name, p.History.CurrentIndex+1, p.History.Len())
	for _, f := range entry.Files {
		fmt.Fprintf(&sb, "\n--- %s ---\n%s\n", f.Path, f.Content)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleSearchProjects performs semantic search over the project index.
func (s *Server) handleSearchProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.index == nil {
		return mcp.NewToolResultError("search is not configured; set an embedding provider"), nil
	}

	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	limit := request.GetInt("limit", 10)

	results, err := s.index.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("No matching projects."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d result(s):\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&sb, "\n%d. %s (id: %s, similarity: %.1f%%)\n", i+1, r.Name, r.ProjectID, r.Similarity*100)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleResolvePreview returns the self-contained preview document for a
// project's current files.
func (s *Server) handleResolvePreview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID, err := request.RequireString("project_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: project_id"), nil
	}

	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("no project with id %q", projectID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("loading project failed: %v", err)), nil
	}

	entry, ok := p.History.Current()
	if !ok {
		return mcp.NewToolResultError("the project has no files to preview"), nil
	}

	entryPath := request.GetString("entry", resolve.DefaultEntry)
	return mcp.NewToolResultText(resolve.Resolve(entry.Files, entryPath)), nil
}

// handleGenerateApp creates a project and fills its first version from one
// generation call.
func (s *Server) handleGenerateApp(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.gen == nil {
		return mcp.NewToolResultError("generation is not configured; set a provider and API key"), nil
	}

	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	instruction, err := request.RequireString("instruction")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: instruction"), nil
	}

	resp, err := s.gen.Generate(ctx, generate.Request{Instruction: instruction})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p, err := s.projects.Create(ctx, name, instruction)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("creating project failed: %v", err)), nil
	}
	p.History.Append(resp.Files, instruction)
	if err := s.projects.SaveHistory(ctx, p.ID, p.History); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("saving project failed: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Created project %s (id: %s) with %d files:\n", p.Name, p.ID, len(resp.Files))
	for _, f := range resp.Files {
		fmt.Fprintf(&sb, "- %s\n", f.Path)
	}
	if resp.Plan != "" {
		fmt.Fprintf(&sb, "\nPlan:\n%s\n", resp.Plan)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
