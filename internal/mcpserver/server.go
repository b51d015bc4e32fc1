// Package mcpserver serves the tool registry over the Model Context Protocol on stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mwiater/pagemcp/internal/tools"
)

var logger = xlog.NewPackageLogger("github.com/mwiater/pagemcp/internal", "mcpserver")

// Registry is the part of the tool registry the MCP surface uses.
type Registry interface {
	List() []tools.Definition
	Dispatch(ctx context.Context, req tools.Request) tools.Result
}

// Server adapts a Registry to an MCP server.
type Server struct {
	mcp   *server.MCPServer
	tools Registry
}

// New registers every tool of r with a new MCP server.
func New(r Registry, name, version string) (*Server, error) {
	s := &Server{
		mcp:   server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
		tools: r,
	}
	for _, def := range r.List() {
		tool, err := toolFor(def)
		if err != nil {
			return nil, err
		}
		s.mcp.AddTool(tool, s.handlerFor(def.Name))
	}
	return s, nil
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve reads requests from in and writes responses to out until ctx is
// cancelled or in reaches EOF.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	logger.KV(xlog.INFO, "status", "serving", "transport", "stdio")
	err := server.NewStdioServer(s.mcp).Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return errors.Wrap(err, "mcp stdio server failed")
}

func toolFor(def tools.Definition) (mcp.Tool, error) {
	schema, err := json.Marshal(def.InputSchema())
	if err != nil {
		return mcp.Tool{}, errors.Wrapf(err, "input schema for %q", def.Name)
	}
	tool := mcp.NewToolWithRawSchema(def.Name, def.Description, schema)
	if def.Annotations.ReadOnly {
		tool.Annotations.ReadOnlyHint = mcp.ToBoolPtr(true)
	}
	if def.Annotations.Destructive {
		tool.Annotations.DestructiveHint = mcp.ToBoolPtr(true)
	}
	return tool, nil
}

// handlerFor routes a tools/call through the registry so both surfaces share
// one dispatch path. Failures are reported in-band as tool errors.
func (s *Server) handlerFor(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := s.tools.Dispatch(ctx, tools.Request{Name: name, Arguments: req.GetArguments()})
		if !res.Success {
			return mcp.NewToolResultError(res.Error), nil
		}
		text, err := encode(res.Data)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func encode(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode tool result")
	}
	return string(data), nil
}
