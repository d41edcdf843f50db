package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"skillkit/config"
	"skillkit/gate"
	"skillkit/limits"
	"skillkit/tonl"
)

// Version is stamped into the MCP server identity.
const Version = "0.2.0"

type checkLineCountInput struct {
	Path string `json:"path" jsonschema:"path of the file to check"`
}

type tonlInput struct {
	Operation string   `json:"operation" jsonschema:"tonl operation (encode, decode, query, get, validate, stats)"`
	Content   string   `json:"content" jsonschema:"raw content staged into a temp file"`
	Args      []string `json:"args,omitempty" jsonschema:"extra arguments passed through to tonl"`
}

// RunServe starts a stdio MCP server exposing the gate and the tonl shim
// as tools, so assistants can call them without shelling out.
func RunServe(ctx context.Context, root string) error {
	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "skillkit", Version: Version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_line_count",
		Description: "Check whether a file is small enough to read directly or must be delegated.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in checkLineCountInput) (*mcp.CallToolResult, any, error) {
		v, err := gate.Check(in.Path, cfg.Threshold)
		if err != nil {
			return textResult(fmt.Sprintf("Error: %v", err), true), nil, nil
		}
		text := fmt.Sprintf("%s\nLINE_COUNT=%d\n%s\n", v.Decision, v.LineCount, v.Explanation())
		return textResult(text, false), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tonl",
		Description: "Run a tonl operation on raw content by staging it into a temp file.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in tonlInput) (*mcp.CallToolResult, any, error) {
		if in.Operation == "" || in.Content == "" {
			return textResult("Error: operation and content are required", true), nil, nil
		}

		// MCP callers cannot inherit stdio, so capture the converter output.
		var out, errOut bytes.Buffer
		shim := &tonl.Shim{Bin: cfg.TonlBin, Stdout: &out, Stderr: &errOut}

		code, err := shim.Run(in.Operation, in.Content, in.Args)
		if err != nil {
			return textResult(fmt.Sprintf("Error: %v", err), true), nil, nil
		}

		text := out.String()
		if errOut.Len() > 0 {
			text += errOut.String()
		}
		if code != 0 {
			text += fmt.Sprintf("\n(exit code %d)", code)
		}
		text = limits.TruncateAtLineBoundary(text, limits.MaxToolOutputBytes, "")
		return textResult(text, code != 0), nil, nil
	})

	return server.Run(ctx, &mcp.StdioTransport{})
}

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: isError,
	}
}
