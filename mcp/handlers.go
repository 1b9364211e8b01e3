package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ludo-technologies/ilscn/domain"
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies(nil, "", nil)
	}
	return &HandlerSet{deps: deps}
}

// HandleDetectDuplicates handles the detect_duplicates tool
func (h *HandlerSet) HandleDetectDuplicates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	req := h.deps.BaseRequest()
	req.Paths = []string{path}

	if rawScopes, ok := args["scopes"].([]interface{}); ok && len(rawScopes) > 0 {
		req.Scopes = nil
		for _, s := range rawScopes {
			if str, ok := s.(string); ok {
				req.Scopes = append(req.Scopes, domain.DuplicateScope(str))
			}
		}
	}
	if kp, ok := args["key_policy"].(string); ok && kp != "" {
		req.KeyPolicy = domain.KeyPolicy(kp)
	}
	if r, ok := args["recursive"].(bool); ok {
		req.Recursive = r
	}

	useCase, err := h.deps.BuildDuplicateUseCase()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create detector: %v", err)), nil
	}

	response, err := useCase.Detect(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("duplicate detection failed: %v", err)), nil
	}

	jsonData, err := json.Marshal(map[string]interface{}{
		"findings":   response.Findings,
		"statistics": response.Statistics,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// HandleShowExpressions handles the show_expressions tool
func (h *HandlerSet) HandleShowExpressions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}
	method, ok := args["method"].(string)
	if !ok || method == "" {
		return mcp.NewToolResultError("method parameter is required and must be a string"), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	useCase, err := h.deps.BuildDuplicateUseCase()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create detector: %v", err)), nil
	}

	listing, err := useCase.Expressions(ctx, path, method)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	jsonData, err := json.Marshal(listing)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}
