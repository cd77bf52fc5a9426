package observability

import (
	"net/http"
)

// Readiness reports whether the service can serve data requests.
type Readiness interface {
	Ready() bool
}

func HealthLiveHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func HealthReadyHandler(rd Readiness) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rd.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
