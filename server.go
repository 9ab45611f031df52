package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/okhomin/transcripts-mcp/store"
)

const serverVersion = "0.1.0"

type transcriptSearcher interface {
	Search(ctx context.Context, query string) ([]store.Match, error)
}

type searchResult struct {
	TranscriptID int64   `json:"transcript_id"`
	ChunkText    string  `json:"chunk_text"`
	Similarity   float64 `json:"similarity"`
}

type searchOutput struct {
	Results []searchResult `json:"results"`
}

// NewSearchServer builds the MCP server exposing a single search_transcripts
// tool. The server holds no per-call state, so it behaves identically over a
// long-lived stdio session and over stateless per-request HTTP.
func NewSearchServer(searcher transcriptSearcher, log *slog.Logger) *server.MCPServer {
	tool := mcp.NewTool("search_transcripts",
		mcp.WithDescription("Semantic search over ingested transcript chunks"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language search query"),
		),
		mcp.WithOutputSchema[searchOutput](),
	)

	srv := server.NewMCPServer("transcripts-mcp", serverVersion, server.WithToolCapabilities(false))
	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		matches, err := searcher.Search(ctx, query)
		if err != nil {
			log.Error("transcript search failed", "err", err)
			return mcp.NewToolResultError("transcript search failed"), nil
		}

		out := searchOutput{Results: make([]searchResult, 0, len(matches))}
		for _, m := range matches {
			out.Results = append(out.Results, searchResult{
				TranscriptID: m.TranscriptID,
				ChunkText:    m.Text,
				Similarity:   m.Similarity,
			})
		}

		// The structured content is canonical; the text rendering is the
		// same payload for transports that show prose.
		raw, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultStructured(out, string(raw)), nil
	})

	return srv
}
