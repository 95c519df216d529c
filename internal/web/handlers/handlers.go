package handlers

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/shindakun/loginpage/internal/config"
	"github.com/shindakun/loginpage/internal/login"
	"github.com/shindakun/loginpage/internal/metrics"
	"github.com/shindakun/loginpage/internal/models"
	"github.com/shindakun/loginpage/internal/session"
	"github.com/shindakun/loginpage/internal/version"
	"github.com/shindakun/loginpage/internal/web/static"
	"github.com/shindakun/loginpage/internal/web/ui"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators of the login page. Zero values get working defaults.
type Deps struct {
	Metrics *metrics.Metrics
	Logger  logrus.FieldLogger

	// Authenticator replaces the simulated submit operation
	Authenticator login.Authenticator

	// OnLoginSuccess is called after the page has handled a successful login.
	// This is where real session state and navigation would attach.
	OnLoginSuccess login.CompletionFunc
}

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	cfg       *config.Config
	forms     *login.Registry
	validator *login.Validator
	auth      login.Authenticator
	metrics   *metrics.Metrics
	onSuccess login.CompletionFunc
	logger    logrus.FieldLogger
	pages     map[string]*template.Template
	assets    http.Handler
}

// New creates a new Handlers instance
func New(cfg *config.Config, deps Deps) (*Handlers, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	auth := deps.Authenticator
	if auth == nil {
		auth = login.SimulatedAuthenticator{Delay: cfg.Login.SimulatedDelay}
	}

	h := &Handlers{
		cfg:       cfg,
		validator: login.NewValidator(),
		auth:      auth,
		metrics:   deps.Metrics,
		onSuccess: deps.OnLoginSuccess,
		logger:    logger.WithField("component", "login_page"),
		pages:     pages,
		assets:    http.StripPrefix("/static/", http.FileServer(http.FS(static.FS))),
	}
	h.forms = login.NewRegistry(cfg.Session.FormTTL, h.newForm, h.logger)

	return h, nil
}

// Forms exposes the per-browser form registry
func (h *Handlers) Forms() *login.Registry {
	return h.forms
}

// newForm builds a login form wired to this page's completion callback
func (h *Handlers) newForm() *login.Form {
	opts := []login.Option{
		login.WithValidator(h.validator),
		login.WithAuthenticator(h.auth),
		login.WithOnSuccess(h.onLoginSuccess),
		login.WithLogger(h.logger.WithField("component", "login_form")),
		login.WithClass(h.cfg.UI.FormClass),
	}
	if h.metrics != nil {
		opts = append(opts, login.WithRecorder(h.metrics))
	}
	return login.New(opts...)
}

// onLoginSuccess is the page-level completion callback
func (h *Handlers) onLoginSuccess(creds models.Credentials) {
	h.logger.WithField("username", creds.Username).Info("Login successful on page level")
	if h.metrics != nil {
		h.metrics.LoginSucceeded()
	}
	if h.onSuccess != nil {
		h.onSuccess(creds)
	}
}

// formFor returns the login form of the requesting browser
func (h *Handlers) formFor(r *http.Request) *login.Form {
	browserID, ok := session.BrowserIDFromContext(r.Context())
	if !ok {
		// Without the session middleware every request shares one anonymous form
		browserID = "anonymous"
	}
	return h.forms.Get(browserID)
}

// pageData builds the template data for a form snapshot
func (h *Handlers) pageData(r *http.Request, view login.View) models.LoginPageData {
	return models.LoginPageData{
		Title:         h.cfg.UI.Title,
		ShellClass:    ui.MergeClasses(ui.ShellClass, h.cfg.UI.ShellClass),
		FormClass:     ui.MergeClasses(ui.FormClass, view.Class),
		Username:      view.Username,
		Errors:        view.Errors,
		State:         view.State,
		CSRFToken:     csrf.Token(r),
		CSRFFieldName: h.cfg.Server.Security.CSRFFieldName,
		Version:       version.GetVersion(),
	}
}

// Landing redirects to the login page
func (h *Handlers) Landing(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// LoginPage renders the layout shell containing this browser's login form
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, h.formFor(r), http.StatusOK)
}

// LoginSubmit validates the posted form and starts the submission in the background
func (h *Handlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.WithError(err).Warn("Login form parse failed")
		http.Error(w, "Invalid form submission.", http.StatusBadRequest)
		return
	}

	form := h.formFor(r)
	values := login.Values{
		Username: r.PostForm.Get(login.FieldUsername),
		Password: r.PostForm.Get(login.FieldPassword),
	}

	sub, fieldErrors, err := form.Begin(values)
	switch {
	case errors.Is(err, login.ErrSubmissionInProgress):
		h.renderLogin(w, r, form, http.StatusConflict)
		return
	case err != nil:
		h.logger.WithError(err).Error("Login submission failed to start")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	case !fieldErrors.Empty():
		h.renderLogin(w, r, form, http.StatusUnprocessableEntity)
		return
	}

	// The submission outlives this request and cannot be cancelled by the client
	go sub.Run(context.WithoutCancel(r.Context()))

	if isHTMX(r) {
		h.renderLogin(w, r, form, http.StatusAccepted)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// SignUp handles the inert sign up control
func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	h.formFor(r).SignUp()
	w.WriteHeader(http.StatusNoContent)
}

// ServeStatic serves the embedded stylesheet and script
func (h *Handlers) ServeStatic(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	h.assets.ServeHTTP(w, r)
}

// NotFound renders the 404 page
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(r, login.View{})
	data.Title = "Not found"

	if err := h.renderTemplate(w, http.StatusNotFound, "404", data); err != nil {
		h.logger.WithError(err).Error("Error rendering 404 template")
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}

func (h *Handlers) renderLogin(w http.ResponseWriter, r *http.Request, form *login.Form, status int) {
	data := h.pageData(r, form.View())

	var err error
	if isHTMX(r) {
		err = h.renderPartial(w, status, "login_form", data)
	} else {
		err = h.renderTemplate(w, status, "login", data)
	}
	if err != nil {
		h.logger.WithError(err).Error("Error rendering login template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
