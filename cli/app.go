// ABOUTME: Application wiring shared by every command
// ABOUTME: Builds the token manager, local store and synchronizer from configuration
package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/harperreed/calmirror/config"
	"github.com/harperreed/calmirror/db"
	"github.com/harperreed/calmirror/sync"
	"google.golang.org/api/option"
)

// App holds the wired components a command runs against.
type App struct {
	Config *config.Config
	DB     *sql.DB
	Store  *db.EventsRepository
	Tokens *sync.TokenManager
	Events *sync.Synchronizer
	Out    io.Writer
}

// NewApp opens the local database and wires the OAuth and calendar layers.
// calendarOpts are passed to the Google Calendar client.
func NewApp(cfg *config.Config, calendarOpts ...option.ClientOption) (*App, error) {
	clientID, clientSecret, err := cfg.GoogleClient()
	if err != nil {
		return nil, err
	}

	database, err := db.OpenDatabase(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	oauthConfig := sync.NewOAuthConfig(clientID, clientSecret, cfg.RedirectURL)
	tokens := sync.NewTokenManager(oauthConfig, sync.NewFileTokenStore(cfg.TokenPath))
	store := db.NewEventsRepository(database)

	return &App{
		Config: cfg,
		DB:     database,
		Store:  store,
		Tokens: tokens,
		Events: sync.NewSynchronizer(tokens, sync.GoogleCalendarFactory(calendarOpts...), store, cfg.CalendarID),
		Out:    os.Stdout,
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}
