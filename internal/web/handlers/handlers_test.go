package handlers

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shindakun/loginpage/internal/config"
	"github.com/shindakun/loginpage/internal/login"
	"github.com/shindakun/loginpage/internal/models"
	"github.com/shindakun/loginpage/internal/session"
	"github.com/shindakun/loginpage/internal/web/templates"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandlers(t *testing.T, deps Deps) (*Handlers, *test.Hook) {
	t.Helper()

	cfg := config.Default()
	cfg.Session.Secret = strings.Repeat("k", 32)
	cfg.Login.SimulatedDelay = 0

	logger, hook := test.NewNullLogger()
	deps.Logger = logger

	h, err := New(cfg, deps)
	require.NoError(t, err)
	return h, hook
}

func withBrowser(r *http.Request, id string) *http.Request {
	return r.WithContext(session.WithBrowserID(r.Context(), id))
}

func postLogin(username, password string) *http.Request {
	form := url.Values{login.FieldUsername: {username}, login.FieldPassword: {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParsePages(t *testing.T) {
	pages, err := parsePages()
	require.NoError(t, err)

	for _, name := range pageNames {
		tmpl, ok := pages[name]
		require.True(t, ok, name)
		assert.NotNil(t, tmpl.Lookup("base"), name)
		assert.NotNil(t, tmpl.Lookup("login_form"), name)
	}
}

func TestShellRendersEmptyCenteredRegion(t *testing.T) {
	// The base layout alone, with no page supplying content
	tmpl, err := template.New("shell").Funcs(templateFuncs()).ParseFS(templates.FS, "layouts/base.html")
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, tmpl.ExecuteTemplate(&sb, "base", models.LoginPageData{
		Title:      "Empty",
		ShellClass: "flex items-center justify-center h-screen bg-background",
	}))
	assert.Contains(t, sb.String(), `<main class="flex items-center justify-center h-screen bg-background">`+"\n  </main>")
}

func TestLoginPageWithoutSessionUsesAnonymousForm(t *testing.T) {
	h, _ := newTestHandlers(t, Deps{})

	w := httptest.NewRecorder()
	h.LoginPage(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Pragma"))
	assert.Equal(t, 1, h.Forms().Len())
	_, ok := h.Forms().Peek("anonymous")
	assert.True(t, ok)
}

func TestLoginSubmitCallsPageCallback(t *testing.T) {
	done := make(chan models.Credentials, 1)
	h, hook := newTestHandlers(t, Deps{
		OnLoginSuccess: func(creds models.Credentials) { done <- creds },
	})

	w := httptest.NewRecorder()
	h.LoginSubmit(w, withBrowser(postLogin("alice", "secret"), "browser-1"))
	assert.Equal(t, http.StatusSeeOther, w.Code)

	creds := <-done
	assert.Equal(t, models.Credentials{Username: "alice", Password: "secret"}, creds)

	var pageLevel bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Login successful on page level" {
			pageLevel = true
			assert.Equal(t, "alice", entry.Data["username"])
		}
		assert.NotContains(t, entry.Message, "secret")
		for _, v := range entry.Data {
			assert.NotEqual(t, "secret", v)
		}
	}
	assert.True(t, pageLevel)
}

func TestLoginSubmitValidationFailure(t *testing.T) {
	h, _ := newTestHandlers(t, Deps{
		OnLoginSuccess: func(models.Credentials) { t.Error("callback must not run") },
	})

	w := httptest.NewRecorder()
	h.LoginSubmit(w, withBrowser(postLogin("", ""), "browser-1"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Username is required.")
	assert.Contains(t, w.Body.String(), "Password is required.")
	assert.Contains(t, w.Body.String(), `aria-invalid="true"`)
}

func TestLoginSubmitUsesInjectedAuthenticator(t *testing.T) {
	failed := make(chan struct{})
	h, _ := newTestHandlers(t, Deps{
		Authenticator: login.AuthenticatorFunc(func(context.Context, models.Credentials) error {
			defer close(failed)
			return assert.AnError
		}),
		OnLoginSuccess: func(models.Credentials) { t.Error("callback must not run after an error") },
	})

	w := httptest.NewRecorder()
	h.LoginSubmit(w, withBrowser(postLogin("alice", "secret"), "browser-1"))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	<-failed

	form, ok := h.Forms().Peek("browser-1")
	require.True(t, ok)
	assert.Eventually(t, func() bool {
		return form.State() == models.SubmissionStateIdle
	}, time.Second, 5*time.Millisecond)
}

func TestSignUpHandler(t *testing.T) {
	h, hook := newTestHandlers(t, Deps{})

	w := httptest.NewRecorder()
	h.SignUp(w, withBrowser(httptest.NewRequest(http.MethodPost, "/signup", nil), "browser-1"))

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Navigate to Sign Up page", hook.LastEntry().Message)
}
