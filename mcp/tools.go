package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all ilscn MCP tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	s.AddTool(mcp.NewTool("detect_duplicates",
		mcp.WithDescription("Find duplicated method bodies in .NET assembly manifests, within one type and across sibling types"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to an assembly manifest or a directory of manifests")),
		mcp.WithArray("scopes",
			mcp.WithStringEnumItems([]string{"same_type", "sibling_types"}),
			mcp.Description("Rules to run. Default: same_type and sibling_types")),
		mcp.WithString("key_policy",
			mcp.Enum("name", "identity"),
			mcp.Description("Key processed methods and types by simple name or by full identity (default: name)")),
		mcp.WithBoolean("recursive",
			mcp.Description("Recursively scan directories (default: true)")),
	), h.HandleDetectDuplicates)

	s.AddTool(mcp.NewTool("show_expressions",
		mcp.WithDescription("Show the expression sequence a method body is compared by"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the assembly manifest")),
		mcp.WithString("method",
			mcp.Required(),
			mcp.Description("Method as Type::Name, or Type::Name(params) for overloads")),
	), h.HandleShowExpressions)
}
