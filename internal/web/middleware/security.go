package middleware

import (
	"net/http"

	"github.com/shindakun/loginpage/internal/config"
)

type header struct {
	name, value string
}

// responseHeaders lists the configured headers that have a value. HSTS is only sent
// when the public URL is HTTPS.
func responseHeaders(cfg *config.Config) []header {
	h := cfg.Server.Security.Headers
	candidates := []header{
		{"X-Frame-Options", h.XFrameOptions},
		{"X-Content-Type-Options", h.XContentTypeOptions},
		{"Referrer-Policy", h.ReferrerPolicy},
		{"Content-Security-Policy", h.ContentSecurityPolicy},
	}
	if cfg.IsHTTPS() {
		candidates = append(candidates, header{"Strict-Transport-Security", h.StrictTransportSecurity})
	}

	headers := candidates[:0]
	for _, c := range candidates {
		if c.value != "" {
			headers = append(headers, c)
		}
	}
	return headers
}

// SecurityHeaders adds the configured security headers to every response. The list is
// resolved once when the middleware is built.
func SecurityHeaders(cfg *config.Config) func(http.Handler) http.Handler {
	headers := responseHeaders(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, h := range headers {
				w.Header().Set(h.name, h.value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MaxBytes limits request body size. A limit of zero or less disables it.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
