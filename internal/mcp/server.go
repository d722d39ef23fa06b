// Package mcp exposes the normalizer as Model Context Protocol tools served
// over stdio.
package mcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/salmonumbrella/notion-normalize/internal/batch"
	clierrors "github.com/salmonumbrella/notion-normalize/internal/errors"
	"github.com/salmonumbrella/notion-normalize/internal/normalize"
	"github.com/salmonumbrella/notion-normalize/internal/output"
)

const (
	serverName = "notion-normalize"

	// ToolNormalize flattens a query response into plain records.
	ToolNormalize = "normalize_pages"
	// ToolPropertyTypes lists how each property type is flattened.
	ToolPropertyTypes = "list_property_types"
)

// Defaults are used for arguments a tool call leaves out.
type Defaults struct {
	CamelCase bool
	Collision normalize.CollisionPolicy
	Strict    bool
	Workers   int
	Output    output.Format
}

// Server serves the normalizer tools.
type Server struct {
	srv      *server.MCPServer
	defaults Defaults
	logger   *slog.Logger
}

// NewServer builds a server with both tools registered.
func NewServer(version string, defaults Defaults, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if defaults.Output == "" {
		defaults.Output = output.FormatJSON
	}

	s := &Server{
		srv: server.NewMCPServer(serverName, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		defaults: defaults,
		logger:   logger,
	}
	s.srv.AddTool(normalizeTool(), s.handleNormalize)
	s.srv.AddTool(propertyTypesTool(), s.handlePropertyTypes)
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.srv
}

// Serve speaks MCP over in/out until ctx is canceled or in reaches EOF.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer, errOut io.Writer) error {
	stdio := server.NewStdioServer(s.srv)
	stdio.SetErrorLogger(log.New(errOut, "", 0))
	s.logger.Debug("mcp server listening", "transport", "stdio")
	return stdio.Listen(ctx, in, out)
}

func normalizeTool() mcp.Tool {
	return mcp.NewTool(ToolNormalize,
		mcp.WithDescription("Flatten the properties of Notion pages into plain records. "+
			"Accepts a database query response, a JSON array of pages, a single page, or NDJSON pages."),
		mcp.WithString("input",
			mcp.Required(),
			mcp.Description("Raw JSON from a Notion database query"),
		),
		mcp.WithBoolean("camelcase",
			mcp.Description("Rename property keys to camelCase"),
		),
		mcp.WithString("collision",
			mcp.Description("What to do when two properties map to the same key"),
			mcp.Enum("last", "first", "error"),
		),
		mcp.WithBoolean("strict",
			mcp.Description("Fail on properties that carry no type"),
		),
		mcp.WithString("output",
			mcp.Description("Result format"),
			mcp.Enum("json", "ndjson", "yaml", "csv", "table", "text"),
		),
		mcp.WithString("query",
			mcp.Description("Optional jq filter applied to the records"),
		),
	)
}

func propertyTypesTool() mcp.Tool {
	return mcp.NewTool(ToolPropertyTypes,
		mcp.WithDescription("List each Notion property type, the field its value is read from, and the value used when that field is missing."),
	)
}

func (s *Server) handleNormalize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("input")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cfg := normalize.Config{
		CamelCase: req.GetBool("camelcase", s.defaults.CamelCase),
		Collision: s.defaults.Collision,
		Strict:    req.GetBool("strict", s.defaults.Strict),
	}
	if raw := req.GetString("collision", ""); raw != "" {
		policy, err := normalize.ParseCollisionPolicy(raw)
		if err != nil {
			return toolError(err), nil
		}
		cfg.Collision = policy
	}

	format := s.defaults.Output
	if raw := req.GetString("output", ""); raw != "" {
		if format, err = output.ParseFormat(raw); err != nil {
			return toolError(err), nil
		}
	}

	in, err := batch.Decode([]byte(input))
	if err != nil {
		return toolError(err), nil
	}

	records, err := normalize.NormalizeConcurrent(ctx, in.Pages, cfg, s.defaults.Workers)
	if err != nil {
		return toolError(err), nil
	}

	renderCtx := ctx
	if query := req.GetString("query", ""); query != "" {
		renderCtx = output.WithQuery(renderCtx, query)
	}

	var buf bytes.Buffer
	if err := output.NewPrinter(&buf, format).PrintRecords(renderCtx, records); err != nil {
		return toolError(err), nil
	}

	s.logger.Debug("mcp normalize", "shape", in.Shape, "pages", len(in.Pages), "format", format)
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handlePropertyTypes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	if err := output.NewPrinter(&buf, output.FormatJSON).PrintRecords(ctx, normalize.RuleRecords()); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// toolError reports a failure inside the tool result so the caller sees it
// as content rather than a protocol error.
func toolError(err error) *mcp.CallToolResult {
	msg := err.Error()
	if hint := clierrors.UserSuggestion(err); hint != "" {
		msg = fmt.Sprintf("%s\nhint: %s", msg, hint)
	}
	return mcp.NewToolResultError(msg)
}
