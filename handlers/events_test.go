// ABOUTME: Tests for event MCP tool and resource handlers
// ABOUTME: Validates tool input/output, error propagation and resource reads
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/calmirror/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	events  []models.Event
	created []models.EventInput
	calls   []string
	err     error
}

func (f *fakeService) List(context.Context) ([]models.Event, error) {
	return f.events, f.err
}

func (f *fakeService) Create(_ context.Context, input models.EventInput) (*models.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, input)
	event := models.Event{
		ID:            uuid.New(),
		RemoteEventID: "evt_001",
		Summary:       input.Summary,
		CreatedAt:     time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC),
	}
	f.events = append(f.events, event)
	return &event, nil
}

func (f *fakeService) GetByRemoteID(_ context.Context, id string) (*models.Event, error) {
	for i := range f.events {
		if f.events[i].RemoteEventID == id {
			return &f.events[i], nil
		}
	}
	return nil, f.err
}

func (f *fakeService) Delete(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete:"+id)
	return f.err
}

func (f *fakeService) Validate(_ context.Context, id string) error {
	f.calls = append(f.calls, "validate:"+id)
	return f.err
}

func (f *fakeService) Cancel(_ context.Context, id string) error {
	f.calls = append(f.calls, "cancel:"+id)
	return f.err
}

func TestCreateEventHandler(t *testing.T) {
	service := &fakeService{}
	h := NewEventHandlers(service)

	_, out, err := h.CreateEvent(context.Background(), nil, CreateEventInput{
		Start:   "2024-01-10",
		End:     "2024-01-12",
		Summary: "Team Offsite",
	})
	require.NoError(t, err)

	assert.Equal(t, "evt_001", out.RemoteEventID)
	assert.Equal(t, "Team Offsite", out.Summary)
	assert.Equal(t, "2024-01-09T12:00:00Z", out.CreatedAt)
	require.Len(t, service.created, 1)
}

func TestCreateEventHandlerRejectsInvalidInput(t *testing.T) {
	service := &fakeService{}
	h := NewEventHandlers(service)

	_, _, err := h.CreateEvent(context.Background(), nil, CreateEventInput{
		Start: "2024-01-10",
		End:   "2024-01-12",
	})
	assert.ErrorIs(t, err, models.ErrSummaryRequired)

	_, _, err = h.CreateEvent(context.Background(), nil, CreateEventInput{
		Start:   "2024-01-12",
		End:     "2024-01-10",
		Summary: "Backwards",
	})
	assert.ErrorIs(t, err, models.ErrEndBeforeStart)

	assert.Empty(t, service.created)
}

func TestListEventsHandler(t *testing.T) {
	service := &fakeService{}
	h := NewEventHandlers(service)

	_, out, err := h.ListEvents(context.Background(), nil, ListEventsInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Events)

	_, _, err = h.CreateEvent(context.Background(), nil, CreateEventInput{Start: "2024-01-10", End: "2024-01-10", Summary: "Standup"})
	require.NoError(t, err)

	_, out, err = h.ListEvents(context.Background(), nil, ListEventsInput{})
	require.NoError(t, err)
	require.Len(t, out.Events, 1)
	assert.Equal(t, "Standup", out.Events[0].Summary)
}

func TestEventActionHandlers(t *testing.T) {
	service := &fakeService{}
	h := NewEventHandlers(service)
	ctx := context.Background()
	input := EventIDInput{RemoteEventID: "evt_001"}

	_, out, err := h.ValidateEvent(ctx, nil, input)
	require.NoError(t, err)
	assert.Equal(t, "validated", out.Status)

	_, out, err = h.CancelEvent(ctx, nil, input)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", out.Status)

	_, out, err = h.DeleteEvent(ctx, nil, input)
	require.NoError(t, err)
	assert.Equal(t, "deleted", out.Status)
	assert.Equal(t, "evt_001", out.RemoteEventID)

	assert.Equal(t, []string{"validate:evt_001", "cancel:evt_001", "delete:evt_001"}, service.calls)
}

func TestEventActionRequiresID(t *testing.T) {
	service := &fakeService{}
	h := NewEventHandlers(service)

	_, _, err := h.DeleteEvent(context.Background(), nil, EventIDInput{})
	assert.EqualError(t, err, "remote_event_id is required")
	assert.Empty(t, service.calls)
}

func TestEventActionPropagatesError(t *testing.T) {
	cause := errors.New("remote unavailable")
	service := &fakeService{err: cause}
	h := NewEventHandlers(service)

	_, _, err := h.CancelEvent(context.Background(), nil, EventIDInput{RemoteEventID: "evt_001"})
	assert.ErrorIs(t, err, cause)
}

func TestReadEventsResource(t *testing.T) {
	service := &fakeService{}
	_, err := service.Create(context.Background(), models.EventInput{Start: "2024-01-10", End: "2024-01-12", Summary: "Team Offsite"})
	require.NoError(t, err)

	h := NewResourceHandlers(service)

	result, err := h.ReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: EventsResourceURI},
	})
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var events []EventOutput
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "evt_001", events[0].RemoteEventID)

	result, err = h.ReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "calmirror://events/evt_001"},
	})
	require.NoError(t, err)

	var event EventOutput
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &event))
	assert.Equal(t, "Team Offsite", event.Summary)
}

func TestReadResourceNotFound(t *testing.T) {
	h := NewResourceHandlers(&fakeService{})

	_, err := h.ReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "calmirror://events/missing"},
	})
	assert.Error(t, err)

	_, err = h.ReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "crm://contacts"},
	})
	assert.Error(t, err)
}
