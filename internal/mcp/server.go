package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/oneko/internal/ipc"
)

const (
	ServerName    = "oneko"
	ServerVersion = "0.1.0"
)

// Daemon is the IPC surface the tools call. *ipc.Client satisfies it.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	SetMode(mode string) (*ipc.StatusData, error)
	SetVariant(variant string) (*ipc.StatusData, error)
	SetInverted(inverted *bool) (*ipc.StatusData, error)
	ToggleSleep() (*ipc.StatusData, error)
}

// Server is the MCP server exposing the running companion.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates an MCP server that forwards tool calls to daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_companion_status",
		Description: "Report the desktop companion's mode, skin, position, current animation and the display it is on.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List every display with its bounds, work area, detected taskbar edge and the spot where the companion sleeps on it.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_companion_mode",
		Description: "Switch the companion between follow, taskbar and sleep modes. The choice is persisted.",
	}, s.handleSetMode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_companion_variant",
		Description: "Change the companion's sprite skin. The choice is persisted.",
	}, s.handleSetVariant)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_companion_inverted",
		Description: "Turn color inversion on or off, or toggle it when no value is given. The choice is persisted.",
	}, s.handleSetInverted)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_companion_sleep",
		Description: "Put the companion to sleep, or wake it into the mode it was in before sleeping.",
	}, s.handleToggleSleep)
}
