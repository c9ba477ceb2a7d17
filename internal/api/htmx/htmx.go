package htmx

import (
	"net/http"
	"strings"
)

func IsRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

// Redirect sends HTMX requests an HX-Redirect header and everything else a
// 303 so a POST is never replayed.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsRequest(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// FormStatus keeps HTMX form re-renders at 200, since htmx does not swap
// error responses by default. Plain form posts get the real status.
func FormStatus(r *http.Request, status int) int {
	if IsRequest(r) {
		return http.StatusOK
	}
	return status
}
