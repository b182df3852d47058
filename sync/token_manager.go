// ABOUTME: OAuth token lifecycle for the calendar API
// ABOUTME: Loads the stored token, refreshes it when expired, or asks for user consent
package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

// expirySkew treats tokens about to expire as already expired.
const expirySkew = 30 * time.Second

// Handle is the outcome of EnsureValidHandle: either an HTTP client for the
// calendar API, or a consent URL the user must visit first.
type Handle struct {
	Client      *http.Client
	RedirectURL string
	State       string
}

// RedirectRequired reports whether the caller must redirect instead of calling the API.
func (h *Handle) RedirectRequired() bool {
	return h.RedirectURL != ""
}

// TokenManager owns the OAuth credential stored in a TokenStore.
type TokenManager struct {
	config   *oauth2.Config
	store    TokenStore
	now      func() time.Time
	newState func() string
}

// NewTokenManager creates a TokenManager using config for OAuth endpoints.
func NewTokenManager(config *oauth2.Config, store TokenStore) *TokenManager {
	return &TokenManager{
		config:   config,
		store:    store,
		now:      time.Now,
		newState: NewState,
	}
}

// EnsureValidHandle returns a client carrying a non-expired credential.
//
// Without a stored token the client carries no credential and API calls will
// be rejected. An expired token is refreshed and persisted when it has a
// refresh token; otherwise the handle asks for a consent redirect.
func (m *TokenManager) EnsureValidHandle(ctx context.Context) (*Handle, error) {
	token, err := m.store.LoadToken()
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	if token == nil {
		log.Debug("no stored token, calendar requests will be unauthenticated")
		return &Handle{Client: oauth2.NewClient(ctx, nil)}, nil
	}

	if !m.expired(token) {
		return &Handle{Client: m.client(ctx, token)}, nil
	}

	if token.RefreshToken == "" {
		state := m.newState()
		log.Info("token expired without refresh token, consent required")
		return &Handle{RedirectURL: m.ConsentURL(state), State: state}, nil
	}

	refreshed, err := m.refresh(ctx, token.RefreshToken)
	if err != nil {
		return nil, err
	}
	if err := m.store.SaveToken(refreshed); err != nil {
		return nil, fmt.Errorf("failed to save refreshed token: %w", err)
	}
	log.Debug("refreshed access token", "expiry", refreshed.Expiry)

	return &Handle{Client: m.client(ctx, refreshed)}, nil
}

// ExchangeAuthCode trades the code from the consent redirect for a token and stores it.
func (m *TokenManager) ExchangeAuthCode(ctx context.Context, code string) error {
	if code == "" {
		return &AuthExchangeError{Payload: "missing authorization code"}
	}

	token, err := m.config.Exchange(ctx, code)
	if err != nil {
		return exchangeError(err)
	}

	if err := m.store.SaveToken(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	log.Info("stored new OAuth token")

	return nil
}

// ConsentURL returns the URL of the consent screen for the given state.
func (m *TokenManager) ConsentURL(state string) string {
	return m.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account consent"),
	)
}

func (m *TokenManager) expired(token *oauth2.Token) bool {
	if token.AccessToken == "" {
		return true
	}
	if token.Expiry.IsZero() {
		return false
	}
	return !token.Expiry.After(m.now().Add(expirySkew))
}

func (m *TokenManager) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	// An empty access token forces the source to hit the token endpoint.
	src := m.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, exchangeError(err)
	}
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	return token, nil
}

func (m *TokenManager) client(ctx context.Context, token *oauth2.Token) *http.Client {
	src := &autoSaveTokenSource{
		source:     oauth2.ReuseTokenSource(token, m.config.TokenSource(ctx, token)),
		tokenStore: m.store,
		lastToken:  token,
	}
	return oauth2.NewClient(ctx, src)
}

// autoSaveTokenSource persists tokens refreshed by the HTTP transport.
type autoSaveTokenSource struct {
	source     oauth2.TokenSource
	tokenStore TokenStore
	lastToken  *oauth2.Token
}

func (a *autoSaveTokenSource) Token() (*oauth2.Token, error) {
	token, err := a.source.Token()
	if err != nil {
		return nil, err
	}

	if a.lastToken == nil || a.lastToken.AccessToken != token.AccessToken {
		if err := a.tokenStore.SaveToken(token); err != nil {
			return nil, fmt.Errorf("failed to save refreshed token: %w", err)
		}
		a.lastToken = token
	}

	return token, nil
}

func exchangeError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		payload := joinErrorFields(re.ErrorCode, re.ErrorDescription, re.ErrorURI)
		if payload == "" && re.Response != nil {
			payload = re.Response.Status
		}
		return &AuthExchangeError{Payload: payload, Err: err}
	}
	return &AuthExchangeError{Err: err}
}
