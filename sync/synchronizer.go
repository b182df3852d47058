// ABOUTME: Keeps the remote calendar and the local event mirror consistent
// ABOUTME: Remote writes always happen first; the mirror is only touched after they succeed
package sync

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/harperreed/calmirror/models"
	"google.golang.org/api/calendar/v3"
)

// Authorizer hands out authenticated HTTP clients. TokenManager implements it.
type Authorizer interface {
	EnsureValidHandle(ctx context.Context) (*Handle, error)
}

// EventStore is the local mirror of remote events.
type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	List(ctx context.Context) ([]models.Event, error)
	DeleteByRemoteID(ctx context.Context, remoteEventID string) (bool, error)
}

// Synchronizer performs event operations against one remote calendar.
type Synchronizer struct {
	auth        Authorizer
	newCalendar CalendarFactory
	store       EventStore
	calendarID  string
}

// NewSynchronizer creates a Synchronizer for calendarID.
func NewSynchronizer(auth Authorizer, newCalendar CalendarFactory, store EventStore, calendarID string) *Synchronizer {
	return &Synchronizer{
		auth:        auth,
		newCalendar: newCalendar,
		store:       store,
		calendarID:  calendarID,
	}
}

// List returns all mirrored events.
func (s *Synchronizer) List(ctx context.Context) ([]models.Event, error) {
	return s.store.List(ctx)
}

// Create inserts an all-day event remotely and mirrors it locally.
func (s *Synchronizer) Create(ctx context.Context, input models.EventInput) (*models.Event, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	cal, err := s.calendar(ctx)
	if err != nil {
		return nil, err
	}

	colorID, _ := models.ColorID(models.ColorNew)
	payload := &calendar.Event{
		Summary: input.Summary,
		Start:   &calendar.EventDateTime{Date: input.Start},
		End:     &calendar.EventDateTime{Date: input.End},
		ColorId: colorID,
	}

	created, err := cal.InsertEvent(ctx, s.calendarID, payload)
	if err != nil {
		return nil, err
	}

	record := &models.Event{
		RemoteEventID: created.Id,
		Summary:       created.Summary,
	}
	if err := s.store.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("event %s created remotely but not mirrored: %w", created.Id, err)
	}
	log.Info("created event", "remote_id", record.RemoteEventID, "summary", record.Summary)

	return record, nil
}

// Delete removes the event remotely, then drops its mirror record if any.
func (s *Synchronizer) Delete(ctx context.Context, remoteEventID string) error {
	cal, err := s.calendar(ctx)
	if err != nil {
		return err
	}

	if err := cal.DeleteEvent(ctx, s.calendarID, remoteEventID); err != nil {
		return err
	}

	removed, err := s.store.DeleteByRemoteID(ctx, remoteEventID)
	if err != nil {
		return fmt.Errorf("event %s deleted remotely but mirror not updated: %w", remoteEventID, err)
	}
	if !removed {
		log.Debug("no mirror record for deleted event", "remote_id", remoteEventID)
	}
	log.Info("deleted event", "remote_id", remoteEventID)

	return nil
}

// SetClassification changes only the color of a remote event.
func (s *Synchronizer) SetClassification(ctx context.Context, remoteEventID, colorName string) error {
	colorID, ok := models.ColorID(colorName)
	if !ok {
		return fmt.Errorf("unknown color %q", colorName)
	}

	cal, err := s.calendar(ctx)
	if err != nil {
		return err
	}

	event, err := cal.GetEvent(ctx, s.calendarID, remoteEventID)
	if err != nil {
		return err
	}

	event.ColorId = colorID
	if _, err := cal.UpdateEvent(ctx, s.calendarID, remoteEventID, event); err != nil {
		return err
	}
	log.Info("classified event", "remote_id", remoteEventID, "color", colorName)

	return nil
}

// Validate marks an event as validated.
func (s *Synchronizer) Validate(ctx context.Context, remoteEventID string) error {
	return s.SetClassification(ctx, remoteEventID, models.ColorValidated)
}

// Cancel marks an event as cancelled.
func (s *Synchronizer) Cancel(ctx context.Context, remoteEventID string) error {
	return s.SetClassification(ctx, remoteEventID, models.ColorCancelled)
}

func (s *Synchronizer) calendar(ctx context.Context) (CalendarClient, error) {
	handle, err := s.auth.EnsureValidHandle(ctx)
	if err != nil {
		return nil, err
	}
	if handle.RedirectRequired() {
		return nil, &ConsentRequiredError{URL: handle.RedirectURL, State: handle.State}
	}

	cal, err := s.newCalendar(ctx, handle.Client)
	if err != nil {
		return nil, &RemoteServiceError{Op: "connect", Err: err}
	}
	return cal, nil
}
