// Package mcp exposes the project store to AI agents over the Model
// Context Protocol: listing and searching projects, reading their files,
// resolving a preview document and generating whole apps.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ashwanth2007/TheVibeCoders/internal/generate"
	"github.com/ashwanth2007/TheVibeCoders/internal/project"
	"github.com/ashwanth2007/TheVibeCoders/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server over the project store. The search index and
// generation service are optional; their tools report a configuration
// error when absent.
type Server struct {
	projects *project.Store
	index    *search.Store
	gen      *generate.Service
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(projects *project.Store, index *search.Store, gen *generate.Service) *Server {
	s := &Server{
		projects: projects,
		index:    index,
		gen:      gen,
	}

	s.mcp = server.NewMCPServer(
		"vibe",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(listProjectsTool, s.handleListProjects)
	s.mcp.AddTool(getProjectFilesTool, s.handleGetProjectFiles)
	s.mcp.AddTool(searchProjectsTool, s.handleSearchProjects)
	s.mcp.AddTool(resolvePreviewTool, s.handleResolvePreview)
	s.mcp.AddTool(generateAppTool, s.handleGenerateApp)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
