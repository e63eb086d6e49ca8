package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/stepwise-org/stepwise/intent"
	"github.com/stepwise-org/stepwise/tutor"
)

// ============================================================================
// MCP TOOL SERVER — one tool per operation
// ============================================================================

// ToolArgs is the shared input schema: a bare expression or equation, the
// operation comes from the tool name.
type ToolArgs struct {
	Input string `json:"input" jsonschema:"required,description=The expression or equation to work on, typed or voice-style (e.g. '2x^2 + 3x - 5 = 0' or 'x squared minus four')"`
}

// mcpTools pairs each tool with the verb prepended before classification,
// so the whole pipeline (vocabulary included) is reused unchanged.
var mcpTools = []struct {
	name        string
	verb        string
	description string
}{
	{"solve", "solve", "Solve a polynomial equation up to degree 6, returning roots and the full derivation steps."},
	{"factor", "factor", "Factor an expression by common factor, difference of squares, perfect square, quadratic splitting, or grouping."},
	{"simplify", "simplify", "Simplify an expression to a fixed point, one recorded rewrite per rule application."},
	{"expand", "expand", "Multiply out products and integer powers of sums."},
	{"derive", "derivative of", "Differentiate an expression, one recorded step per rule."},
	{"integrate", "integrate", "Integrate an expression by the antiderivative pattern table."},
	{"prove", "prove", "Check whether an equation holds as an identity by reducing the difference of its sides."},
	{"graph", "graph", "Sample an expression into a render-ready line chart, with vertex and root markers for quadratics."},
}

// NewMCPServer registers every operation as a tool over the shared tutor.
func NewMCPServer(t *tutor.Tutor, version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("stepwise", version, mcpserver.WithToolCapabilities(false))
	for _, tool := range mcpTools {
		s.AddTool(mcp.NewTool(tool.name,
			mcp.WithDescription(tool.description),
			mcp.WithInputSchema[ToolArgs](),
		), wrapTool(t, tool.verb))
	}
	return s
}

func wrapTool(t *tutor.Tutor, verb string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ToolArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Input == "" {
			return mcp.NewToolResultError("input is required"), nil
		}

		resp, err := t.Ask(ctx, verb+" "+args.Input, intent.ModalityTyped)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

// ServeMCP runs the tool server on stdio until the client disconnects.
func ServeMCP(t *tutor.Tutor, version string) error {
	return mcpserver.ServeStdio(NewMCPServer(t, version))
}
