// ABOUTME: Event MCP tool handlers
// ABOUTME: Implements list, create, delete, validate and cancel tools over the synchronizer
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/calmirror/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// EventService is the synchronizer surface the tools drive.
type EventService interface {
	List(ctx context.Context) ([]models.Event, error)
	Create(ctx context.Context, input models.EventInput) (*models.Event, error)
	Delete(ctx context.Context, remoteEventID string) error
	Validate(ctx context.Context, remoteEventID string) error
	Cancel(ctx context.Context, remoteEventID string) error
}

type EventHandlers struct {
	events EventService
}

func NewEventHandlers(events EventService) *EventHandlers {
	return &EventHandlers{events: events}
}

type EventOutput struct {
	ID            string `json:"id"`
	RemoteEventID string `json:"remote_event_id"`
	Summary       string `json:"summary"`
	CreatedAt     string `json:"created_at"`
}

type ListEventsInput struct{}

type ListEventsOutput struct {
	Events []EventOutput `json:"events"`
}

func (h *EventHandlers) ListEvents(ctx context.Context, request *mcp.CallToolRequest, input ListEventsInput) (*mcp.CallToolResult, ListEventsOutput, error) {
	events, err := h.events.List(ctx)
	if err != nil {
		return nil, ListEventsOutput{}, fmt.Errorf("failed to list events: %w", err)
	}

	result := make([]EventOutput, len(events))
	for i := range events {
		result[i] = eventToOutput(&events[i])
	}

	return nil, ListEventsOutput{Events: result}, nil
}

type CreateEventInput struct {
	Start   string `json:"start" jsonschema:"First day of the event, YYYY-MM-DD (required)"`
	End     string `json:"end" jsonschema:"Last day of the event, YYYY-MM-DD (required)"`
	Summary string `json:"summary" jsonschema:"Event title (required)"`
}

func (h *EventHandlers) CreateEvent(ctx context.Context, request *mcp.CallToolRequest, input CreateEventInput) (*mcp.CallToolResult, EventOutput, error) {
	eventInput := models.EventInput{
		Start:   input.Start,
		End:     input.End,
		Summary: input.Summary,
	}
	if err := eventInput.Validate(); err != nil {
		return nil, EventOutput{}, err
	}

	event, err := h.events.Create(ctx, eventInput)
	if err != nil {
		return nil, EventOutput{}, fmt.Errorf("failed to create event: %w", err)
	}

	return nil, eventToOutput(event), nil
}

type EventIDInput struct {
	RemoteEventID string `json:"remote_event_id" jsonschema:"Google Calendar event ID (required)"`
}

type EventActionOutput struct {
	RemoteEventID string `json:"remote_event_id"`
	Status        string `json:"status"`
}

func (h *EventHandlers) DeleteEvent(ctx context.Context, request *mcp.CallToolRequest, input EventIDInput) (*mcp.CallToolResult, EventActionOutput, error) {
	return h.runAction(ctx, input, "deleted", h.events.Delete)
}

func (h *EventHandlers) ValidateEvent(ctx context.Context, request *mcp.CallToolRequest, input EventIDInput) (*mcp.CallToolResult, EventActionOutput, error) {
	return h.runAction(ctx, input, "validated", h.events.Validate)
}

func (h *EventHandlers) CancelEvent(ctx context.Context, request *mcp.CallToolRequest, input EventIDInput) (*mcp.CallToolResult, EventActionOutput, error) {
	return h.runAction(ctx, input, "cancelled", h.events.Cancel)
}

func (h *EventHandlers) runAction(ctx context.Context, input EventIDInput, status string, action func(context.Context, string) error) (*mcp.CallToolResult, EventActionOutput, error) {
	if input.RemoteEventID == "" {
		return nil, EventActionOutput{}, fmt.Errorf("remote_event_id is required")
	}

	if err := action(ctx, input.RemoteEventID); err != nil {
		return nil, EventActionOutput{}, fmt.Errorf("failed to mark event %s: %w", status, err)
	}

	return nil, EventActionOutput{RemoteEventID: input.RemoteEventID, Status: status}, nil
}

func eventToOutput(event *models.Event) EventOutput {
	return EventOutput{
		ID:            event.ID.String(),
		RemoteEventID: event.RemoteEventID,
		Summary:       event.Summary,
		CreatedAt:     event.CreatedAt.Format(time.RFC3339),
	}
}
