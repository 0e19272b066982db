package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listProjectsTool defines the list_projects MCP tool.
var listProjectsTool = mcp.NewTool("list_projects",
	mcp.WithDescription("List all stored projects with their IDs, names and version counts."),
)

// getProjectFilesTool defines the get_project_files MCP tool.
var getProjectFilesTool = mcp.NewTool("get_project_files",
	mcp.WithDescription("Get the current files of a project. Returns all file contents, or a single file when path is given."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project ID as returned by list_projects"),
	),
	mcp.WithString("path",
		mcp.Description("Return only this file's content"),
	),
)

// searchProjectsTool defines the search_projects MCP tool.
var searchProjectsTool = mcp.NewTool("search_projects",
	mcp.WithDescription("Find projects by describing them. Semantic search over names, prompts and file layouts."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
)

// resolvePreviewTool defines the resolve_preview MCP tool.
var resolvePreviewTool = mcp.NewTool("resolve_preview",
	mcp.WithDescription("Resolve a project's current files into one self-contained HTML document, with stylesheets and scripts inlined."),
	mcp.WithString("project_id",
		mcp.Required(),
		mcp.Description("Project ID as returned by list_projects"),
	),
	mcp.WithString("entry",
		mcp.Description("Entry page path (default index.html)"),
	),
)

// generateAppTool defines the generate_app MCP tool.
var generateAppTool = mcp.NewTool("generate_app",
	mcp.WithDescription("Create a new project and generate a complete app from an instruction."),
	mcp.WithString("name",
		mcp.Required(),
		mcp.Description("Name of the new project"),
	),
	mcp.WithString("instruction",
		mcp.Required(),
		mcp.Description("What to build"),
	),
)
