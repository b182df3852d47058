// ABOUTME: Tests for remote-then-local event synchronization
// ABOUTME: Runs the synchronizer against a fake Calendar API and an in-memory SQLite mirror
package sync

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/harperreed/calmirror/db"
	"github.com/harperreed/calmirror/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuthorizer returns a fixed handle.
type stubAuthorizer struct {
	handle *Handle
	err    error
	calls  int
}

func (s *stubAuthorizer) EnsureValidHandle(context.Context) (*Handle, error) {
	s.calls++
	return s.handle, s.err
}

func setupTestDB(t *testing.T) *sql.DB {
	database, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test db: %v", err)
	}
	database.SetMaxOpenConns(1)
	if err := db.InitSchema(database); err != nil {
		t.Fatalf("Failed to init schema: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

type syncFixture struct {
	api   *fakeCalendarAPI
	auth  *stubAuthorizer
	store *db.EventsRepository
	sync  *Synchronizer
}

func newSyncFixture(t *testing.T) *syncFixture {
	api := newFakeCalendarAPI(t)
	auth := &stubAuthorizer{handle: &Handle{Client: api.server.Client()}}
	store := db.NewEventsRepository(setupTestDB(t))
	return &syncFixture{
		api:   api,
		auth:  auth,
		store: store,
		sync:  NewSynchronizer(auth, api.factory(), store, "primary"),
	}
}

func (f *syncFixture) records(t *testing.T) []models.Event {
	events, err := f.store.List(context.Background())
	require.NoError(t, err)
	return events
}

func TestSynchronizerCreate(t *testing.T) {
	f := newSyncFixture(t)

	record, err := f.sync.Create(context.Background(), models.EventInput{
		Start:   "2024-01-10",
		End:     "2024-01-12",
		Summary: "Team Offsite",
	})
	require.NoError(t, err)
	assert.Equal(t, "evt_001", record.RemoteEventID)
	assert.Equal(t, "Team Offsite", record.Summary)

	remote := f.api.events["evt_001"]
	require.NotNil(t, remote)
	assert.Equal(t, "2024-01-10", remote.Start.Date)
	assert.Equal(t, "2024-01-12", remote.End.Date)
	assert.Empty(t, remote.Start.DateTime)
	assert.Equal(t, "6", remote.ColorId, "new events are orange")

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, "evt_001", records[0].RemoteEventID)
	assert.Equal(t, "Team Offsite", records[0].Summary)
}

func TestSynchronizerCreateRemoteFailure(t *testing.T) {
	f := newSyncFixture(t)
	f.api.failInsert = true

	_, err := f.sync.Create(context.Background(), models.EventInput{
		Start:   "2024-01-10",
		End:     "2024-01-12",
		Summary: "Team Offsite",
	})
	require.Error(t, err)

	var remoteErr *RemoteServiceError
	assert.True(t, errors.As(err, &remoteErr))
	assert.Empty(t, f.records(t), "no local write after a failed remote create")
}

func TestSynchronizerCreateInvalidInput(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.sync.Create(context.Background(), models.EventInput{Start: "2024-01-10", End: "2024-01-12"})
	assert.ErrorIs(t, err, models.ErrSummaryRequired)
	assert.Zero(t, f.auth.calls)
	assert.Empty(t, f.api.calls)
}

func TestSynchronizerDelete(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	for _, summary := range []string{"first", "second", "third"} {
		_, err := f.sync.Create(ctx, models.EventInput{Start: "2024-02-01", End: "2024-02-02", Summary: summary})
		require.NoError(t, err)
	}

	require.NoError(t, f.sync.Delete(ctx, "evt_002"))

	_, stillRemote := f.api.events["evt_002"]
	assert.False(t, stillRemote)

	records := f.records(t)
	require.Len(t, records, 2)
	var ids []string
	for _, r := range records {
		ids = append(ids, r.RemoteEventID)
	}
	assert.ElementsMatch(t, []string{"evt_001", "evt_003"}, ids)
}

func TestSynchronizerDeleteWithoutLocalRecord(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	_, err := f.sync.Create(ctx, models.EventInput{Start: "2024-02-01", End: "2024-02-02", Summary: "kept"})
	require.NoError(t, err)

	// Created elsewhere: present remotely, absent from the mirror.
	f.api.events["evt_external"] = f.api.events["evt_001"]

	require.NoError(t, f.sync.Delete(ctx, "evt_external"))
	assert.Len(t, f.records(t), 1)
}

func TestSynchronizerDeleteRemoteFailure(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	_, err := f.sync.Create(ctx, models.EventInput{Start: "2024-02-01", End: "2024-02-02", Summary: "kept"})
	require.NoError(t, err)

	f.api.failDelete = true
	err = f.sync.Delete(ctx, "evt_001")
	require.Error(t, err)

	var remoteErr *RemoteServiceError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusInternalServerError, remoteErr.StatusCode())
	assert.Len(t, f.records(t), 1, "local record survives a failed remote delete")
}

func TestSynchronizerSetClassification(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	_, err := f.sync.Create(ctx, models.EventInput{Start: "2024-01-10", End: "2024-01-12", Summary: "Team Offsite"})
	require.NoError(t, err)

	require.NoError(t, f.sync.SetClassification(ctx, "evt_001", "green"))

	cal, err := f.api.factory()(ctx, f.api.server.Client())
	require.NoError(t, err)
	event, err := cal.GetEvent(ctx, "primary", "evt_001")
	require.NoError(t, err)

	greenID, _ := models.ColorID("green")
	assert.Equal(t, greenID, event.ColorId)
	assert.Equal(t, "Team Offsite", event.Summary, "other fields are preserved")

	records := f.records(t)
	require.Len(t, records, 1)
	assert.Equal(t, "Team Offsite", records[0].Summary, "mirror is untouched")
}

func TestSynchronizerValidateAndCancel(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	_, err := f.sync.Create(ctx, models.EventInput{Start: "2024-01-10", End: "2024-01-12", Summary: "Team Offsite"})
	require.NoError(t, err)

	require.NoError(t, f.sync.Validate(ctx, "evt_001"))
	assert.Equal(t, "2", f.api.events["evt_001"].ColorId)

	require.NoError(t, f.sync.Cancel(ctx, "evt_001"))
	assert.Equal(t, "4", f.api.events["evt_001"].ColorId)
}

func TestSynchronizerSetClassificationUnknownColor(t *testing.T) {
	f := newSyncFixture(t)

	err := f.sync.SetClassification(context.Background(), "evt_001", "magenta")
	assert.Error(t, err)
	assert.Empty(t, f.api.calls)
}

func TestSynchronizerSetClassificationMissingEvent(t *testing.T) {
	f := newSyncFixture(t)

	err := f.sync.SetClassification(context.Background(), "missing", "green")
	var remoteErr *RemoteServiceError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusNotFound, remoteErr.StatusCode())
}

func TestSynchronizerConsentRequired(t *testing.T) {
	f := newSyncFixture(t)
	f.auth.handle = &Handle{RedirectURL: "https://accounts.example.com/consent", State: "s1"}
	ctx := context.Background()

	_, err := f.sync.Create(ctx, models.EventInput{Start: "2024-01-10", End: "2024-01-12", Summary: "x"})
	var consentErr *ConsentRequiredError
	require.True(t, errors.As(err, &consentErr))
	assert.Equal(t, "https://accounts.example.com/consent", consentErr.URL)
	assert.Equal(t, "s1", consentErr.State)

	assert.True(t, errors.As(f.sync.Delete(ctx, "evt_001"), &consentErr))
	assert.True(t, errors.As(f.sync.Validate(ctx, "evt_001"), &consentErr))
	assert.True(t, errors.As(f.sync.Cancel(ctx, "evt_001"), &consentErr))

	assert.Empty(t, f.api.calls, "no remote call when consent is required")
	assert.Empty(t, f.records(t))
}

func TestSynchronizerAuthorizerError(t *testing.T) {
	f := newSyncFixture(t)
	f.auth.handle = nil
	f.auth.err = &AuthExchangeError{Payload: "invalid_grant"}

	err := f.sync.Delete(context.Background(), "evt_001")
	var exchangeErr *AuthExchangeError
	assert.True(t, errors.As(err, &exchangeErr))
	assert.Empty(t, f.api.calls)
}

func TestSynchronizerList(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	_, err := f.sync.Create(ctx, models.EventInput{Start: "2024-01-10", End: "2024-01-12", Summary: "one"})
	require.NoError(t, err)

	f.auth.handle = &Handle{RedirectURL: "https://accounts.example.com/consent"}
	events, err := f.sync.List(ctx)
	require.NoError(t, err, "listing reads only the mirror")
	assert.Len(t, events, 1)
}
