// Package web assembles the HTTP surface of the login page.
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shindakun/loginpage/internal/config"
	"github.com/shindakun/loginpage/internal/metrics"
	"github.com/shindakun/loginpage/internal/session"
	"github.com/shindakun/loginpage/internal/web/api"
	"github.com/shindakun/loginpage/internal/web/handlers"
	webmiddleware "github.com/shindakun/loginpage/internal/web/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter wires middleware and routes. m may be nil when metrics are disabled.
func NewRouter(cfg *config.Config, h *handlers.Handlers, sessions *session.Manager, m *metrics.Metrics, logger logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(webmiddleware.LoggingMiddleware(logger.WithField("component", "http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(webmiddleware.SecurityHeaders(cfg))
	r.Use(webmiddleware.MaxBytes(cfg.Server.Security.MaxRequestBytes))
	r.Use(webmiddleware.BrowserSession(sessions, logger))

	if cfg.Server.Security.CSRFEnabled {
		r.Use(webmiddleware.CSRFProtection(
			webmiddleware.CSRFKey(cfg.Session.Secret),
			cfg.IsHTTPS(),
			cfg.Server.Security.CSRFFieldName,
		))
	}

	// Public routes
	r.Get("/", h.Landing)
	r.Get("/login", h.LoginPage)

	// Form posts
	r.Group(func(r chi.Router) {
		if cfg.RateLimit.Enabled {
			limiter := webmiddleware.NewRateLimiter(
				cfg.RateLimit.RequestsPerWindow,
				cfg.RateLimit.WindowDuration,
				cfg.RateLimit.Burst,
			)
			r.Use(limiter.Middleware)
		}
		r.Post("/login", h.LoginSubmit)
		r.Post("/signup", h.SignUp)
	})

	// JSON API
	api.Mount(r, h.Forms())

	if cfg.Metrics.Enabled && m != nil {
		r.Handle(cfg.Metrics.Path, m.Handler())
	}

	// Static files
	r.Get("/static/*", h.ServeStatic)

	// 404 handler (must be last)
	r.NotFound(h.NotFound)

	return r
}
