package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/neilberkman/cpl/internal/core/catalog"
	"github.com/neilberkman/cpl/internal/core/models"
	"github.com/neilberkman/cpl/internal/core/search"
)

// PatternSummary is the list view of a pattern
type PatternSummary struct {
	ID        string   `json:"id"`
	ShortID   string   `json:"short_id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Context   string   `json:"context"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"created_at"`
}

// SearchMatch is a keyword hit and the fields it matched in
type SearchMatch struct {
	PatternSummary
	MatchedFields []string `json:"matched_fields"`
}

// Catalog is what the tools read from
type Catalog interface {
	List() ([]models.Pattern, error)
	Resolve(identifier string) (*models.Pattern, error)
}

// NewServer registers the pattern tools on an MCP server
func NewServer(store Catalog, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"cpl",
		version,
	)

	listTool := mcp.NewTool("list_patterns",
		mcp.WithDescription("List patterns from the local pattern catalog, optionally filtered by type, keyword or tags"),
		mcp.WithString("type",
			mcp.Description("Only patterns of this type: prompt, solution or code")),
		mcp.WithString("keyword",
			mcp.Description("Case-insensitive substring matched against name, context, solution and tags")),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags; every tag must be present")),
		mcp.WithNumber("limit",
			mcp.Description("Max patterns to return (default: 50)")),
	)
	s.AddTool(listTool, makeListPatternsHandler(store))

	getTool := mcp.NewTool("get_pattern",
		mcp.WithDescription("Retrieve one pattern by id, unique id prefix or exact name"),
		mcp.WithString("identifier",
			mcp.Required(),
			mcp.Description("Pattern id, id prefix (at least a few characters) or name")),
	)
	s.AddTool(getTool, makeGetPatternHandler(store))

	searchTool := mcp.NewTool("search_patterns",
		mcp.WithDescription("Search the pattern catalog and report which fields matched"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search term")),
	)
	s.AddTool(searchTool, makeSearchPatternsHandler(store))

	return s
}

// StartServer serves the tools over stdio until the client disconnects
func StartServer(store Catalog, version string) error {
	return server.ServeStdio(NewServer(store, version))
}

func makeListPatternsHandler(store Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		patterns, err := store.List()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load catalog: %v", err)), nil
		}

		filters := search.Filters{
			Type:    models.PatternType(request.GetString("type", "")),
			Keyword: request.GetString("keyword", ""),
			Tags:    splitTags(request.GetString("tags", "")),
		}
		if filters.Type != "" && !filters.Type.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("invalid type %q", filters.Type)), nil
		}

		limit := request.GetInt("limit", 50)
		matched := search.Apply(patterns, filters)
		if limit > 0 && len(matched) > limit {
			matched = matched[:limit]
		}

		results := make([]PatternSummary, 0, len(matched))
		for _, p := range matched {
			results = append(results, summarize(p))
		}
		return jsonResult(map[string]interface{}{
			"patterns": results,
			"total":    len(results),
		})
	}
}

func makeGetPatternHandler(store Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		identifier, err := request.RequireString("identifier")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		p, err := store.Resolve(identifier)
		if err != nil {
			var ambiguous *catalog.AmbiguousIdentifierError
			if errors.As(err, &ambiguous) {
				return mcp.NewToolResultError(ambiguous.Error()), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		if p == nil {
			return mcp.NewToolResultError(fmt.Sprintf("pattern not found: %s", identifier)), nil
		}
		return jsonResult(p)
	}
}

func makeSearchPatternsHandler(store Catalog) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		patterns, err := store.List()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load catalog: %v", err)), nil
		}

		hits := search.Search(patterns, query)
		results := make([]SearchMatch, 0, len(hits))
		for _, h := range hits {
			results = append(results, SearchMatch{
				PatternSummary: summarize(h.Pattern),
				MatchedFields:  h.Fields,
			})
		}
		return jsonResult(map[string]interface{}{
			"query":   query,
			"matches": results,
		})
	}
}

func summarize(p models.Pattern) PatternSummary {
	return PatternSummary{
		ID:        p.ID,
		ShortID:   catalog.ShortID(p.ID),
		Name:      p.Name,
		Type:      string(p.Type),
		Context:   p.Context,
		Tags:      p.Tags,
		CreatedAt: p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
