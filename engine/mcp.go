package engine

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/feedloom/generate"
)

// RegisterMCP exposes the engine's read surface and tone control as MCP
// tools, so an agent can inspect what feedloom tracks on the page.
func (e *Engine) RegisterMCP(srv *mcp.Server) {
	e.registerSnapshotTool(srv)
	e.registerItemContentTool(srv)
	e.registerSetToneTool(srv)
}

type snapshotInput struct{}

func (e *Engine) registerSnapshotTool(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "feedloom_snapshot",
		Description: "Current reconciliation state: scan counters, tracked item identities, expanded panel, and the extracted user.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ snapshotInput) (*mcp.CallToolResult, Diagnostics, error) {
		return nil, e.Diagnostics(), nil
	})
}

type itemContentInput struct {
	LogicalID string `json:"logical_id" jsonschema:"Logical identity of the feed item, as listed by feedloom_snapshot"`
}

func (e *Engine) registerItemContentTool(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "feedloom_item_content",
		Description: "Extracted caption (plain and markdown) of one tracked feed item.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in itemContentInput) (*mcp.CallToolResult, ItemContent, error) {
		content, err := e.ItemContent(in.LogicalID)
		if err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
			}, ItemContent{}, nil
		}
		return nil, content, nil
	})
}

type setToneInput struct {
	Tone string `json:"tone" jsonschema:"Default tone for future drafting panels: professional, supportive, friendly, inquisitive, cheerful, or funny"`
}

type setToneOutput struct {
	Tone string `json:"tone"`
}

func (e *Engine) registerSetToneTool(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "feedloom_set_tone",
		Description: "Set the default tone used when a drafting panel opens.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in setToneInput) (*mcp.CallToolResult, setToneOutput, error) {
		t, err := generate.ParseTone(in.Tone)
		if err != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("invalid tone: %v", err)}},
			}, setToneOutput{}, nil
		}
		e.SetTone(t)
		return nil, setToneOutput{Tone: string(t)}, nil
	})
}
