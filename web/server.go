// ABOUTME: Web UI server with embedded templates
// ABOUTME: Lists mirrored events, creates them, and handles the OAuth consent callback
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/calmirror/models"
	"github.com/harperreed/calmirror/sync"
)

//go:embed templates/*
var templatesFS embed.FS

const stateCookie = "calmirror_oauth_state"

// EventService is the event workflow behind the pages. sync.Synchronizer implements it.
type EventService interface {
	List(ctx context.Context) ([]models.Event, error)
	Create(ctx context.Context, input models.EventInput) (*models.Event, error)
	Delete(ctx context.Context, remoteEventID string) error
	Validate(ctx context.Context, remoteEventID string) error
	Cancel(ctx context.Context, remoteEventID string) error
}

// CodeExchanger completes the OAuth flow. sync.TokenManager implements it.
type CodeExchanger interface {
	ExchangeAuthCode(ctx context.Context, code string) error
}

type Server struct {
	events    EventService
	auth      CodeExchanger
	templates *template.Template
	mux       *http.ServeMux
}

func NewServer(events EventService, auth CodeExchanger) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		events:    events,
		auth:      auth,
		templates: tmpl,
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /{$}", s.handleList)
	s.mux.HandleFunc("GET /create", s.handleCreateForm)
	s.mux.HandleFunc("POST /create", s.handleCreate)
	s.mux.HandleFunc("/events/{id}/delete", s.handleAction(events.Delete))
	s.mux.HandleFunc("/events/{id}/validate", s.handleAction(events.Validate))
	s.mux.HandleFunc("/events/{id}/cancel", s.handleAction(events.Cancel))

	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves on addr until the server fails.
func (s *Server) Start(addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("starting web server", "addr", addr)
	return server.ListenAndServe()
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errMsg := query.Get("error"); errMsg != "" {
		http.Error(w, "authorization failed: "+errMsg, http.StatusBadRequest)
		return
	}

	if code := query.Get("code"); code != "" {
		s.handleCallback(w, r, code, query.Get("state"))
		return
	}

	events, err := s.events.List(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.renderTemplate(w, http.StatusOK, "index.html", map[string]interface{}{
		"Title":  "Events",
		"Events": events,
	})
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request, code, state string) {
	if cookie, err := r.Cookie(stateCookie); err == nil && cookie.Value != state {
		http.Error(w, "authorization state mismatch", http.StatusBadRequest)
		return
	}

	if err := s.auth.ExchangeAuthCode(r.Context(), code); err != nil {
		s.handleError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, http.StatusOK, "create.html", map[string]interface{}{
		"Title": "New event",
		"Input": models.EventInput{},
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	input := models.EventInput{
		Start:   r.PostForm.Get("start"),
		End:     r.PostForm.Get("end"),
		Summary: r.PostForm.Get("summary"),
	}
	if err := input.Validate(); err != nil {
		s.renderTemplate(w, http.StatusBadRequest, "create.html", map[string]interface{}{
			"Title": "New event",
			"Input": input,
			"Error": err.Error(),
		})
		return
	}

	if _, err := s.events.Create(r.Context(), input); err != nil {
		s.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleAction(action func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := action(r.Context(), r.PathValue("id")); err != nil {
			s.handleError(w, r, err)
			return
		}

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// handleError turns a workflow error into a response. A consent requirement
// becomes a redirect; everything else is logged and reported.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var consent *sync.ConsentRequiredError
	if errors.As(err, &consent) {
		if consent.State != "" {
			http.SetCookie(w, &http.Cookie{
				Name:     stateCookie,
				Value:    consent.State,
				Path:     "/",
				MaxAge:   600,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		http.Redirect(w, r, consent.URL, http.StatusFound)
		return
	}

	status := http.StatusInternalServerError
	var remoteErr *sync.RemoteServiceError
	var exchangeErr *sync.AuthExchangeError
	if errors.As(err, &remoteErr) || errors.As(err, &exchangeErr) {
		status = http.StatusBadGateway
	}

	log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	http.Error(w, err.Error(), status)
}

func (s *Server) renderTemplate(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error("template error", "template", name, "err", err)
	}
}
