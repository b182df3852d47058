// ABOUTME: MCP resource handlers for exposing mirrored events
// ABOUTME: Provides read-only access to the local event records via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/calmirror/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ResourceScheme    = "calmirror://"
	EventsResourceURI = ResourceScheme + "events"
	EventResourceURI  = ResourceScheme + "events/{remote_event_id}"
)

// EventReader reads local records. db.EventsRepository implements it.
type EventReader interface {
	List(ctx context.Context) ([]models.Event, error)
	GetByRemoteID(ctx context.Context, remoteEventID string) (*models.Event, error)
}

type ResourceHandlers struct {
	store EventReader
}

func NewResourceHandlers(store EventReader) *ResourceHandlers {
	return &ResourceHandlers{store: store}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, ResourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", ResourceScheme)
	}

	path := strings.TrimPrefix(uri, ResourceScheme)
	parts := strings.Split(path, "/")

	switch {
	case parts[0] == "events" && len(parts) == 1:
		return h.readAllEvents(ctx, uri)
	case parts[0] == "events" && len(parts) == 2 && parts[1] != "":
		return h.readEvent(ctx, uri, parts[1])
	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
}

func (h *ResourceHandlers) readAllEvents(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	events, err := h.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	result := make([]EventOutput, len(events))
	for i := range events {
		result[i] = eventToOutput(&events[i])
	}

	return jsonResource(uri, result)
}

func (h *ResourceHandlers) readEvent(ctx context.Context, uri, remoteEventID string) (*mcp.ReadResourceResult, error) {
	event, err := h.store.GetByRemoteID(ctx, remoteEventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	if event == nil {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	return jsonResource(uri, eventToOutput(event))
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
