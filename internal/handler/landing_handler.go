package handler

import (
	"net/http"

	"github.com/SARVESHVARADKAR123/profile-service/web"
)

// Landing serves the embedded profile page.
func Landing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(web.Index)
}
