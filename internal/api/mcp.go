package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPDeps holds the pipelines exposed over MCP.
type MCPDeps struct {
	Syncer      Syncer
	Recommender Recommender
	Deliverer   Deliverer
}

// NewMCPServer creates an MCP server exposing the curator pipelines, so an
// agent host can trigger a sync or ask for recommendations without going
// through the HTTP API.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"plexcurator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("plexcurator — AI movie curation for a Plex library: sync the catalog to the assistant, then ask for unwatched recommendations."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("sync_library",
			mcp.WithDescription("Upload the current movie library, including watched status, to the assistant's vector store. Replaces the previous snapshot."),
		),
		mcpSyncLibrary(deps),
	)

	s.AddTool(
		mcp.NewTool("recommend_movies",
			mcp.WithDescription("Ask the assistant for unwatched movie recommendations, create the curated playlist and send the notification."),
			mcp.WithBoolean("deliver", mcp.Description("Also create the playlist and notify (default true)")),
		),
		mcpRecommendMovies(deps),
	)

	return s
}

func mcpSyncLibrary(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := deps.Syncer.Run(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("sync failed: %v", err)), nil
		}

		b, err := json.Marshal(res)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpRecommendMovies(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		titles, err := deps.Recommender.Recommend(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("recommendation failed: %v", err)), nil
		}

		if req.GetBool("deliver", true) {
			out := deps.Deliverer.Deliver(ctx, titles)
			b, err := json.Marshal(out)
			if err != nil {
				return mcpError(fmt.Sprintf("failed to marshal outcome: %v", err)), nil
			}
			return mcpText(string(b)), nil
		}

		b, err := json.Marshal(map[string]any{"titles": titles})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal titles: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
