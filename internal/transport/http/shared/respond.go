// Package shared centralizes JSON response envelopes so every handler maps
// domain errors and gate rejections the same way.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"vigil/internal/gate"
	dErrors "vigil/pkg/domain-errors"
)

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// WriteError maps an error to its HTTP response. Gate rejections become 429
// with the structured rejection body; coded domain errors map by code; all
// else is an opaque 500.
func WriteError(w http.ResponseWriter, err error) {
	var rej *gate.Rejection
	if errors.As(err, &rej) {
		status := http.StatusTooManyRequests
		switch rej.Kind {
		case gate.KindUnauthorizedScope:
			status = http.StatusForbidden
		case gate.KindConfidenceCapExceeded:
			status = http.StatusUnprocessableEntity
		}
		if rej.RetryAfterMinutes > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(rej.RetryAfterMinutes*60))
		}
		WriteJSON(w, status, rej)
		return
	}

	var de *dErrors.Error
	if errors.As(err, &de) {
		WriteJSON(w, dErrors.ToHTTPStatus(de.Code), map[string]string{
			"error":   string(de.Code),
			"message": de.Message,
		})
		return
	}

	WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": string(dErrors.CodeInternal),
	})
}
