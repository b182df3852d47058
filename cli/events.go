// ABOUTME: Event CLI commands
// ABOUTME: Human-friendly commands for creating, listing and classifying calendar events
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/calmirror/models"
	"github.com/harperreed/calmirror/sync"
)

// ListEventsCommand lists mirrored events
func ListEventsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("events list", flag.ExitOnError)
	_ = fs.Parse(args)

	events, err := app.Events.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	if len(events) == 0 {
		fmt.Fprintln(app.Out, "No events found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUMMARY\tREMOTE ID\tCREATED")
	fmt.Fprintln(w, "-------\t---------\t-------")

	for _, event := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			event.Summary,
			event.RemoteEventID,
			event.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}

	_ = w.Flush()
	fmt.Fprintf(app.Out, "\nTotal: %d event(s)\n", len(events))

	return nil
}

// CreateEventCommand creates an all-day event
func CreateEventCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("events create", flag.ExitOnError)
	start := fs.String("start", "", "Start date, YYYY-MM-DD (required)")
	end := fs.String("end", "", "End date, YYYY-MM-DD (required)")
	summary := fs.String("summary", "", "Event title (required)")
	_ = fs.Parse(args)

	input := models.EventInput{Start: *start, End: *end, Summary: *summary}
	if err := input.Validate(); err != nil {
		return err
	}

	event, err := app.Events.Create(context.Background(), input)
	if err != nil {
		return consentHint(fmt.Errorf("failed to create event: %w", err))
	}

	fmt.Fprintf(app.Out, "✓ Event created: %s (remote ID: %s)\n", event.Summary, event.RemoteEventID)
	return nil
}

// DeleteEventCommand deletes an event remotely and locally
func DeleteEventCommand(app *App, args []string) error {
	return runEventAction(app, "events delete", args, "deleted", app.Events.Delete)
}

// ValidateEventCommand marks an event as validated
func ValidateEventCommand(app *App, args []string) error {
	return runEventAction(app, "events validate", args, "validated", app.Events.Validate)
}

// CancelEventCommand marks an event as cancelled
func CancelEventCommand(app *App, args []string) error {
	return runEventAction(app, "events cancel", args, "cancelled", app.Events.Cancel)
}

func runEventAction(app *App, name string, args []string, done string, action func(context.Context, string) error) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: calmirror %s <remote-event-id>", name)
	}
	remoteEventID := fs.Arg(0)

	if err := action(context.Background(), remoteEventID); err != nil {
		return consentHint(fmt.Errorf("failed to update event %s: %w", remoteEventID, err))
	}

	fmt.Fprintf(app.Out, "✓ Event %s %s\n", remoteEventID, done)
	return nil
}

// consentHint points the user at the auth commands when the stored token
// cannot be refreshed.
func consentHint(err error) error {
	var consent *sync.ConsentRequiredError
	if errors.As(err, &consent) {
		return fmt.Errorf("%w\nrun 'calmirror auth url' to grant access again", err)
	}
	return err
}
