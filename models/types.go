// ABOUTME: Data models for mirrored calendar events
// ABOUTME: Defines Event, EventInput, and the color classification vocabulary
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the date-only format used for event start and end values.
const DateLayout = "2006-01-02"

// Event is the local mirror of a remote calendar event.
type Event struct {
	ID            uuid.UUID `json:"id"`
	RemoteEventID string    `json:"remote_event_id"`
	Summary       string    `json:"summary"`
	CreatedAt     time.Time `json:"created_at"`
}

// EventInput carries a create request from one of the inbound surfaces.
type EventInput struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Summary string `json:"summary"`
}

var (
	ErrSummaryRequired = errors.New("summary is required")
	ErrEndBeforeStart  = errors.New("end date is before start date")
)

// Validate normalizes the input and checks dates and summary.
func (in *EventInput) Validate() error {
	in.Start = strings.TrimSpace(in.Start)
	in.End = strings.TrimSpace(in.End)
	in.Summary = strings.TrimSpace(in.Summary)

	start, err := time.Parse(DateLayout, in.Start)
	if err != nil {
		return fmt.Errorf("invalid start date %q: expected YYYY-MM-DD", in.Start)
	}
	end, err := time.Parse(DateLayout, in.End)
	if err != nil {
		return fmt.Errorf("invalid end date %q: expected YYYY-MM-DD", in.End)
	}
	if end.Before(start) {
		return ErrEndBeforeStart
	}
	if in.Summary == "" {
		return ErrSummaryRequired
	}
	return nil
}

// Color names understood by the remote calendar.
// ref: https://developers.google.com/calendar/api/v3/reference/colors/get
const (
	ColorBlue       = "blue"
	ColorGreen      = "green"
	ColorPurple     = "purple"
	ColorLightRed   = "light_red"
	ColorYellow     = "yellow"
	ColorOrange     = "orange"
	ColorLightBlue  = "light_blue"
	ColorGrey       = "grey"
	ColorBluePurple = "blue_purple"
	ColorDarkGreen  = "dark_green"
	ColorRed        = "red"
)

// Classifications applied by the application.
const (
	ColorNew       = ColorOrange
	ColorValidated = ColorGreen
	ColorCancelled = ColorLightRed
)

var colorIDs = map[string]string{
	ColorBlue:       "1",
	ColorGreen:      "2",
	ColorPurple:     "3",
	ColorLightRed:   "4",
	ColorYellow:     "5",
	ColorOrange:     "6",
	ColorLightBlue:  "7",
	ColorGrey:       "8",
	ColorBluePurple: "9",
	ColorDarkGreen:  "10",
	ColorRed:        "11",
}

// ColorID returns the remote color id for a color name.
func ColorID(name string) (string, bool) {
	id, ok := colorIDs[name]
	return id, ok
}
