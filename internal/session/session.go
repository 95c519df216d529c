// Package session identifies browsers with a signed cookie so each one gets its own
// login form state. It does not authenticate anyone.
package session

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName         = "loginpage-session"
	sessionKeyBrowserID = "browser_id"
)

type contextKey struct{}

// Manager handles the browser-id cookie
type Manager struct {
	store *sessions.CookieStore
}

// NewManager creates a cookie-backed manager with HTTP-only cookies
func NewManager(secret string, maxAge int, secure bool, sameSite http.SameSite) *Manager {
	store := sessions.NewCookieStore([]byte(secret))

	// Configure session options
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true, // Prevent JavaScript access
		Secure:   secure,
		SameSite: sameSite,
	}

	return &Manager{store: store}
}

// BrowserID returns the id stored in the request cookie, issuing and saving a new one
// when the cookie is missing or cannot be decoded
func (m *Manager) BrowserID(w http.ResponseWriter, r *http.Request) (string, error) {
	// A tampered or stale cookie yields a fresh session alongside the error
	cookieSession, _ := m.store.Get(r, sessionName)
	if cookieSession == nil {
		return "", fmt.Errorf("failed to get cookie session")
	}

	if id, ok := cookieSession.Values[sessionKeyBrowserID].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.New().String()
	cookieSession.Values[sessionKeyBrowserID] = id
	if err := cookieSession.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to save cookie session: %w", err)
	}

	return id, nil
}

// Clear expires the browser-id cookie
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	cookieSession, _ := m.store.Get(r, sessionName)
	if cookieSession == nil {
		return nil
	}

	cookieSession.Options.MaxAge = -1
	if err := cookieSession.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear cookie session: %w", err)
	}
	return nil
}

// WithBrowserID stores the browser id in ctx
func WithBrowserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// BrowserIDFromContext retrieves the browser id stored by WithBrowserID
func BrowserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
