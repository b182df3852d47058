// ABOUTME: OAuth configuration for the Google Calendar API
// ABOUTME: Builds the Google OAuth2 config and random consent state values
package sync

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// NewOAuthConfig creates the OAuth2 config for managing calendar events.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{calendar.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
}

// NewState returns a fresh value for the OAuth state parameter.
func NewState() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
