package middleware

import (
	"net/http"

	"github.com/shindakun/loginpage/internal/session"
	"github.com/sirupsen/logrus"
)

// BrowserSession makes sure every request carries a browser id, issuing the cookie
// on first visit, and stores the id in the request context
func BrowserSession(manager *session.Manager, logger logrus.FieldLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := manager.BrowserID(w, r)
			if err != nil {
				logger.WithError(err).Error("Failed to establish browser session")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			ctx := session.WithBrowserID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
