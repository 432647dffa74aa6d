// Package mcp exposes the player as an MCP server so agent hosts can load
// projects and drive the session lifecycle as tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/wyattjouan/stagehand"
	"github.com/wyattjouan/stagehand/pkg/domain"
)

// Server wraps a Player and exposes it over MCP.
type Server struct {
	player    *stagehand.Player
	mcpServer *server.MCPServer

	mu      sync.Mutex
	lastErr error
}

// NewServer creates the MCP server and registers its tools.
func NewServer(player *stagehand.Player) *Server {
	s := &Server{
		player:    player,
		mcpServer: server.NewMCPServer("stagehand-mcp", stagehand.Version),
	}

	// Load failures surface on the bus, not as return values; remember the
	// outcome of the most recent load for the load_project tool.
	player.Bus().LoadStarted.Subscribe(func(string) {
		s.mu.Lock()
		s.lastErr = nil
		s.mu.Unlock()
	})
	player.Bus().Error.Subscribe(func(err error) {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
	})

	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("load_project",
		mcp.WithDescription("Load a project by its remote identifier and attach a session."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Remote project identifier")),
	), s.handleLoad)

	lifecycle := []struct {
		name, desc string
		op         func() error
	}{
		{"resume", "Resume the attached session.", s.player.Resume},
		{"pause", "Pause the attached session.", s.player.Pause},
		{"stop_all", "Stop all running scripts.", s.player.StopAll},
		{"green_flag", "Restart scripts from the top, resuming first if paused.", s.player.TriggerGreenFlag},
		{"toggle_running", "Toggle between running and paused.", s.player.ToggleRunning},
	}
	for _, t := range lifecycle {
		op := t.op
		s.mcpServer.AddTool(mcp.NewTool(t.name, mcp.WithDescription(t.desc)),
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				if err := op(); err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return mcp.NewToolResultText(s.player.Status()), nil
			})
	}

	s.mcpServer.AddTool(mcp.NewTool("session_status",
		mcp.WithDescription("Describe the attached session, if any."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(s.player.Status()), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("set_options",
		mcp.WithDescription("Apply a partial options update (theme, frame_rate, turbo, username, autoplay, padding, max_width)."),
		mcp.WithString("patch", mcp.Required(), mcp.Description("JSON object with the fields to change")),
	), s.handleSetOptions)
}

func (s *Server) handleLoad(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, _ := args["id"].(string)
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	s.player.LoadByID(ctx, id)

	s.mu.Lock()
	loadErr := s.lastErr
	s.mu.Unlock()

	if loadErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", loadErr)), nil
	}
	return mcp.NewToolResultText(s.player.Status()), nil
}

func (s *Server) handleSetOptions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	raw, _ := args["patch"].(string)

	var body map[string]any
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("patch is not a JSON object: %v", err)), nil
	}
	var patch domain.Patch
	if err := mapstructure.Decode(body, &patch); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid patch: %v", err)), nil
	}

	next := s.player.SetOptions(patch)
	out, _ := json.Marshal(next)
	return mcp.NewToolResultText(string(out)), nil
}
