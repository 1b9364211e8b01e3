package mcp_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/ilscn/domain"
	"github.com/ludo-technologies/ilscn/internal/config"
	"github.com/ludo-technologies/ilscn/mcp"
	"github.com/ludo-technologies/ilscn/service"
)

const (
	assemblies = "../testdata/assemblies"
	shapes     = "../testdata/assemblies/shapes.asm.yaml"
)

func runToolTest(
	t *testing.T,
	cfg *config.Config,
	arguments interface{},
	handlerFunc func(*mcp.HandlerSet, context.Context, mcplib.CallToolRequest) (*mcplib.CallToolResult, error),
) *mcplib.CallToolResult {
	t.Helper()
	h := mcp.NewHandlerSet(mcp.NewTestDependencies(service.NewAssemblyReader(), cfg, ""))

	req := mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Arguments: arguments,
		},
	}

	res, err := handlerFunc(h, context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	return res
}

type detectResult struct {
	Findings   []domain.Finding           `json:"findings"`
	Statistics domain.DuplicateStatistics `json:"statistics"`
}

func (r detectResult) methods() []string {
	var out []string
	for _, f := range r.Findings {
		out = append(out, f.Method)
	}
	return out
}

func TestHandleDetectDuplicates(t *testing.T) {
	tests := map[string]struct {
		cfg          *config.Config
		arguments    interface{}
		isError      bool
		expectPrefix string
		methods      []string
	}{
		"invalid_arguments_format": {
			arguments:    "not-a-map",
			isError:      true,
			expectPrefix: "invalid arguments format",
		},
		"path_missing": {
			arguments:    map[string]interface{}{},
			isError:      true,
			expectPrefix: "path parameter is required",
		},
		"path_not_exist": {
			arguments:    map[string]interface{}{"path": "/non/existing/path"},
			isError:      true,
			expectPrefix: "path does not exist",
		},
		"unknown_scope": {
			arguments: map[string]interface{}{
				"path":   assemblies,
				"scopes": []interface{}{"everything"},
			},
			isError:      true,
			expectPrefix: "duplicate detection failed",
		},
		"all_rules": {
			arguments: map[string]interface{}{"path": assemblies},
			methods:   []string{"Billing.Invoice::PrintHeader()", "Sample.Calculator::Add(int32,int32)", "Sample.Circle::Describe()"},
		},
		"sibling_types_only": {
			arguments: map[string]interface{}{
				"path":   assemblies,
				"scopes": []interface{}{"sibling_types"},
			},
			methods: []string{"Sample.Circle::Describe()"},
		},
		"identity_policy_not_recursive": {
			arguments: map[string]interface{}{
				"path":       assemblies,
				"key_policy": "identity",
				"recursive":  false,
			},
			methods: []string{"Sample.Calculator::Add(int32,int32)", "Sample.Circle::Describe()"},
		},
		"config_defaults_apply": {
			cfg: func() *config.Config {
				cfg := config.DefaultConfig()
				cfg.Duplicates.Scopes = []string{"same_type"}
				return cfg
			}(),
			arguments: map[string]interface{}{"path": shapes},
			methods:   []string{"Sample.Calculator::Add(int32,int32)"},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res := runToolTest(t, tc.cfg, tc.arguments, (*mcp.HandlerSet).HandleDetectDuplicates)
			text := mcplib.GetTextFromContent(res.Content[0])

			require.Equal(t, tc.isError, res.IsError, text)
			if tc.expectPrefix != "" {
				assert.True(t, strings.HasPrefix(text, tc.expectPrefix), "text %q", text)
			}
			if tc.isError {
				return
			}

			var result detectResult
			require.NoError(t, json.Unmarshal([]byte(text), &result))
			assert.Equal(t, tc.methods, result.methods())
			assert.Equal(t, len(tc.methods), result.Statistics.TotalFindings)
		})
	}
}

func TestHandleShowExpressions(t *testing.T) {
	tests := map[string]struct {
		arguments    interface{}
		isError      bool
		expectPrefix string
	}{
		"invalid_arguments": {
			arguments:    []string{"nope"},
			isError:      true,
			expectPrefix: "invalid arguments format",
		},
		"method_missing": {
			arguments:    map[string]interface{}{"path": shapes},
			isError:      true,
			expectPrefix: "method parameter is required",
		},
		"path_not_exist": {
			arguments:    map[string]interface{}{"path": "/non/existing.asm.yaml", "method": "A::B"},
			isError:      true,
			expectPrefix: "path does not exist",
		},
		"unknown_method": {
			arguments:    map[string]interface{}{"path": shapes, "method": "Sample.Calculator::Multiply"},
			isError:      true,
			expectPrefix: "failed to extract expressions",
		},
		"success": {
			arguments: map[string]interface{}{"path": shapes, "method": "Sample.Calculator::Add"},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res := runToolTest(t, nil, tc.arguments, (*mcp.HandlerSet).HandleShowExpressions)
			text := mcplib.GetTextFromContent(res.Content[0])

			require.Equal(t, tc.isError, res.IsError, text)
			if tc.expectPrefix != "" {
				assert.True(t, strings.HasPrefix(text, tc.expectPrefix), "text %q", text)
			}
			if tc.isError {
				return
			}

			var listing domain.MethodExpressions
			require.NoError(t, json.Unmarshal([]byte(text), &listing))
			assert.Equal(t, "Sample.Calculator::Add(int32,int32)", listing.Method)
			assert.Equal(t, []string{"add(ldarg[1], ldarg[2])", "ret(add(ldarg[1], ldarg[2]))"}, listing.Expressions)
		})
	}
}

func TestRegisterTools(t *testing.T) {
	s := server.NewMCPServer("ilscn", "test", server.WithToolCapabilities(true))
	mcp.RegisterTools(s, mcp.NewHandlerSet(nil))

	msg := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))

	var names []string
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"detect_duplicates", "show_expressions"}, names)
}
