// Package httputil holds the JSON response and error envelope helpers
// shared by all HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "civiq/pkg/domain-errors"
)

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders a domain error as a JSON error envelope. Internal and
// configuration faults omit the message so server details never leak to
// callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal && code != dErrors.CodeConfiguration {
		var de *dErrors.Error
		if errors.As(err, &de) {
			body.Description = de.Message
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(err), body)
}

// Decode reads a JSON request body into dst, rejecting unknown fields.
func Decode[T any](r *http.Request) (T, error) {
	var dst T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		return dst, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return dst, nil
}
