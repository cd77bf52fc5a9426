package middleware

import (
	"encoding/json"
	"net/http"
)

// Readiness reports whether the database can serve requests.
type Readiness interface {
	Ready() bool
}

// RequireReady short-circuits with 503 while the database is not connected.
func RequireReady(rd Readiness) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rd.Ready() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "Database temporarily unavailable",
					"message": "Please try again in a few moments",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
