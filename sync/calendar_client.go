// ABOUTME: Google Calendar API client for event operations
// ABOUTME: Wraps calendar.Service and reports every failure as a RemoteServiceError
package sync

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarClient is the subset of the remote calendar the synchronizer needs.
type CalendarClient interface {
	InsertEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)
	GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, event *calendar.Event) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// CalendarFactory builds a CalendarClient on top of an authenticated HTTP client.
type CalendarFactory func(ctx context.Context, httpClient *http.Client) (CalendarClient, error)

// GoogleCalendarClient talks to the Google Calendar API.
type GoogleCalendarClient struct {
	service *calendar.Service
}

// NewCalendarClient creates a Google Calendar client using httpClient.
// Extra options are appended after the HTTP client option.
func NewCalendarClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*GoogleCalendarClient, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &GoogleCalendarClient{service: service}, nil
}

// GoogleCalendarFactory returns a CalendarFactory producing GoogleCalendarClients.
func GoogleCalendarFactory(opts ...option.ClientOption) CalendarFactory {
	return func(ctx context.Context, httpClient *http.Client) (CalendarClient, error) {
		return NewCalendarClient(ctx, httpClient, opts...)
	}
}

// InsertEvent creates event in the calendar and returns the stored event.
func (c *GoogleCalendarClient) InsertEvent(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	created, err := c.service.Events.Insert(calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, &RemoteServiceError{Op: "insert", Err: err}
	}
	return created, nil
}

// GetEvent retrieves a single event by ID.
func (c *GoogleCalendarClient) GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	event, err := c.service.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, &RemoteServiceError{Op: "get", Err: err}
	}
	return event, nil
}

// UpdateEvent replaces an existing event.
func (c *GoogleCalendarClient) UpdateEvent(ctx context.Context, calendarID, eventID string, event *calendar.Event) (*calendar.Event, error) {
	updated, err := c.service.Events.Update(calendarID, eventID, event).Context(ctx).Do()
	if err != nil {
		return nil, &RemoteServiceError{Op: "update", Err: err}
	}
	return updated, nil
}

// DeleteEvent deletes an event from a calendar.
func (c *GoogleCalendarClient) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := c.service.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return &RemoteServiceError{Op: "delete", Err: err}
	}
	return nil
}
