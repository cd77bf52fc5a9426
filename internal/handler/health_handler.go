package handler

import (
	"net/http"
	"time"

	"github.com/SARVESHVARADKAR123/profile-service/internal/middleware"
)

// isoMillis matches the millisecond ISO8601 form browsers produce.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// Health reports process liveness and whether the database is connected.
func Health(rd middleware.Readiness, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		db := "disconnected"
		if rd.Ready() {
			db = "connected"
		}

		writeJSON(w, http.StatusOK, healthResponse{
			Status:    "OK",
			Database:  db,
			Timestamp: now().UTC().Format(isoMillis),
		})
	}
}
