// Package mcpserver advertises a scanned tool catalog to protocol clients
// and dispatches their tool calls through the bridge, over Model Context
// Protocol transports and over plain HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/tanradell/toolbridge/bridge"
)

// Config identifies the served implementation to protocol clients.
type Config struct {
	Name    string
	Version string
}

// Server exposes a bridge catalog over the Model Context Protocol.
type Server struct {
	executionBridge *bridge.Bridge
	config          Config
	logger          *zap.Logger
	protocolServer  *mcp.Server
}

// NewServer registers every cataloged tool on a fresh protocol server. The
// catalog was computed at startup and never changes, so registration happens
// exactly once.
func NewServer(executionBridge *bridge.Bridge, config Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	server := &Server{
		executionBridge: executionBridge,
		config:          config,
		logger:          logger,
		protocolServer: mcp.NewServer(&mcp.Implementation{
			Name:    config.Name,
			Version: config.Version,
		}, nil),
	}
	for _, descriptor := range executionBridge.Catalog().Tools() {
		server.registerTool(descriptor)
	}
	return server
}

// Run serves the protocol over the given transport until the context is
// canceled or the client disconnects.
func (server *Server) Run(ctx context.Context, transport mcp.Transport) error {
	server.logger.Info("serving tool catalog",
		zap.String("server", server.config.Name),
		zap.Int("tools", server.executionBridge.Catalog().Len()),
	)
	return server.protocolServer.Run(ctx, transport)
}

func (server *Server) registerTool(descriptor bridge.ToolDescriptor) {
	toolName := descriptor.Name
	tool := &mcp.Tool{
		Name:        toolName,
		Description: descriptor.Description,
		InputSchema: inputSchemaForTool(descriptor),
	}
	server.protocolServer.AddTool(tool, func(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		values, decodeErr := decodeArguments(request.Params.Arguments)
		if decodeErr != nil {
			return errorResult(fmt.Sprintf("decode arguments for %s: %v", toolName, decodeErr)), nil
		}
		result := server.executionBridge.Invoke(ctx, toolName, values)
		if !result.Succeeded {
			server.logger.Debug("tool invocation failed",
				zap.String("tool", toolName),
				zap.String("kind", result.FailureKind),
				zap.String("error", result.Error),
			)
			return errorResult(result.Error), nil
		}
		return textResult(result.Output), nil
	})
}

func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var values map[string]any
	if decodeErr := json.Unmarshal(raw, &values); decodeErr != nil {
		return nil, decodeErr
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
	}
}

func textResult(output string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: output}},
	}
}
