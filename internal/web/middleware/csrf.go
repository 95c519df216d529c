package middleware

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/csrf"
)

// CSRFKey derives the 32-byte gorilla/csrf auth key from the session secret
func CSRFKey(secret string) []byte {
	sum := sha256.Sum256([]byte("csrf:" + secret))
	return sum[:]
}

// CSRFProtection creates a CSRF protection middleware using gorilla/csrf.
// When secure is false requests are marked as plaintext HTTP so the referer
// checks meant for TLS do not reject local development traffic.
func CSRFProtection(key []byte, secure bool, fieldName string) func(http.Handler) http.Handler {
	if fieldName == "" {
		fieldName = "csrf_token"
	}

	csrfMiddleware := csrf.Protect(
		key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.FieldName(fieldName),
		csrf.RequestHeader("X-CSRF-Token"), // For script and HTMX requests
		csrf.ErrorHandler(http.HandlerFunc(CSRFFailureHandler)),
	)

	return func(next http.Handler) http.Handler {
		protected := csrfMiddleware(next)
		if secure {
			return protected
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

// CSRFFailureHandler provides HTMX-aware error handling for CSRF failures
func CSRFFailureHandler(w http.ResponseWriter, r *http.Request) {
	// Check if this is an HTMX request
	if r.Header.Get("HX-Request") == "true" {
		// HTMX request - return HTML fragment with proper status
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`<p class="form-message" role="alert">Your session has expired. Refresh the page and try again.</p>`))
		return
	}

	// Regular request - return standard error
	http.Error(w, "CSRF token validation failed. Please refresh the page and try again.", http.StatusForbidden)
}
