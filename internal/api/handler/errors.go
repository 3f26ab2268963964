package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/battleship-go/internal/api/apierr"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeJSON decodes a request body into v
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return NewInvalidRequestError("request body required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}
