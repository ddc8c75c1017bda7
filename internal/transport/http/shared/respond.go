// Package shared holds response helpers used by every handler package.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "lexseal/pkg/domain-errors"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// WriteError maps a domain error onto its HTTP status and writes the
// uniform error body. Non-domain errors become 500s with no detail leaked.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if errors.As(err, &de) {
		WriteJSON(w, dErrors.ToHTTPStatus(de.Code), ErrorResponse{
			Error:   string(de.Code),
			Message: de.Message,
		})
		return
	}
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: string(dErrors.CodeInternal),
	})
}
