// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/harperreed/calmirror/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServer registers the event tools and resources.
func NewMCPServer(app *App, version string) *mcp.Server {
	eventHandlers := handlers.NewEventHandlers(app.Events)
	resourceHandlers := handlers.NewResourceHandlers(app.Store)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "calmirror",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_events",
		Description: "List events mirrored from Google Calendar",
	}, eventHandlers.ListEvents)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_event",
		Description: "Create an all-day event on Google Calendar and mirror it locally",
	}, eventHandlers.CreateEvent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_event",
		Description: "Delete an event from Google Calendar and from the local mirror",
	}, eventHandlers.DeleteEvent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_event",
		Description: "Mark an event as validated (green)",
	}, eventHandlers.ValidateEvent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cancel_event",
		Description: "Mark an event as cancelled (light red)",
	}, eventHandlers.CancelEvent)

	server.AddResource(&mcp.Resource{
		URI:         handlers.EventsResourceURI,
		Name:        "events",
		Description: "All mirrored events",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: handlers.EventResourceURI,
		Name:        "event",
		Description: "A mirrored event by Google Calendar event ID",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(app *App, version string) error {
	log.Info("starting calmirror MCP server")

	server := NewMCPServer(app, version)
	return server.Run(context.Background(), &mcp.StdioTransport{})
}
