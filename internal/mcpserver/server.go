// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes route search tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/skyroute/internal/apperr"
	"github.com/starford/skyroute/internal/planner"
)

const guideURI = "skyroute://search-guide"

// Server wraps the MCP server with route search tools.
type Server struct {
	mcp *server.MCPServer
	svc *planner.Service
	loc *time.Location
	now func() time.Time
}

// New creates a new MCP server with all tools registered. loc localizes
// departure times given without an offset.
func New(svc *planner.Service, loc *time.Location) *Server {
	if loc == nil {
		loc = time.UTC
	}
	s := &Server{svc: svc, loc: loc, now: time.Now}

	s.mcp = server.NewMCPServer(
		"Skyroute",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("find_routes",
		mcp.WithDescription("Find the cheapest, fastest and least-transfer flight routes between two cities. "+
			"Read the search guide first via the get_search_guide tool or the "+guideURI+" resource."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Origin city, e.g. Moscow")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Destination city, e.g. Kazan")),
		mcp.WithString("date", mcp.Description("Departure date YYYY-MM-DD, or a full timestamp; defaults to today")),
		mcp.WithString("time", mcp.Description("Earliest departure time HH:MM; defaults to now for today, midnight otherwise")),
		mcp.WithNumber("max_hops", mcp.Description("Maximum number of flights per route")),
		mcp.WithNumber("min_layover_minutes", mcp.Description("Minimum connection time in minutes")),
	), s.findRoutes)

	s.mcp.AddTool(mcp.NewTool("list_cities",
		mcp.WithDescription("List the cities that can be searched, with their airport codes."),
		mcp.WithString("prefix", mcp.Description("Optional case-insensitive city name prefix")),
	), s.listCities)

	s.mcp.AddTool(mcp.NewTool("get_search_guide",
		mcp.WithDescription("Returns how route searches work: inputs, defaults and result fields."),
	), s.getSearchGuide)

	s.mcp.AddResource(
		mcp.NewResource(guideURI, "Route Search Guide",
			mcp.WithResourceDescription("How route searches interpret their inputs and rank results."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGuideResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) findRoutes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dep, err := planner.ParseDeparture(req.GetString("date", ""), req.GetString("time", ""), s.now(), s.loc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	q := planner.Query{From: from, To: to, Departure: dep, MaxHops: req.GetInt("max_hops", 0)}
	if m := req.GetFloat("min_layover_minutes", -1); m >= 0 {
		d := time.Duration(m * float64(time.Minute))
		q.MinLayover = &d
	}

	res, err := s.svc.Search(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(toolError(err)), nil
	}
	return jsonResult(res), nil
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err))
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listCities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cities, err := s.svc.Cities()
	if err != nil {
		return mcp.NewToolResultError(toolError(err)), nil
	}
	prefix := strings.ToLower(strings.TrimSpace(req.GetString("prefix", "")))

	var lines []string
	for _, c := range cities {
		if prefix != "" && !strings.HasPrefix(strings.ToLower(c.Name), prefix) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", c.Name, strings.Join(c.Airports, ", ")))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no cities found"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getSearchGuide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SearchGuide), nil
}

func (s *Server) readGuideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      guideURI,
			MIMEType: "text/markdown",
			Text:     SearchGuide,
		},
	}, nil
}

// toolError adds a hint to errors the caller can fix.
func toolError(err error) string {
	switch {
	case errors.Is(err, apperr.ErrUnknownCity):
		return err.Error() + "; call list_cities for valid names"
	case errors.Is(err, apperr.ErrSearchBudgetExceeded):
		return err.Error() + "; retry with a smaller max_hops"
	default:
		return err.Error()
	}
}
