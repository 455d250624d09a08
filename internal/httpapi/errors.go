package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/radio-aktywne/showcaster/internal/showerr"
)

// writeError maps a showerr.Kind onto the HTTP status table of §6:
// validation -> 400, not-found -> 404, store/calendar -> 502, everything
// else (including invariant-violation, which should never reach a client
// under normal operation) -> 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch showerr.KindOf(err) {
	case showerr.Validation:
		status = http.StatusBadRequest
	case showerr.NotFound:
		status = http.StatusNotFound
	case showerr.Store, showerr.Calendar:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}
