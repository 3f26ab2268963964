package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/storage"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error codes
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInvalidFleet   = "INVALID_FLEET"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeNotYourTurn    = "NOT_YOUR_TURN"
	CodeDuplicateShot  = "DUPLICATE_SHOT"
	CodeInvalidState   = "INVALID_STATE"
	CodeNameCollision  = "NAME_COLLISION"
	CodeNotFound       = "NOT_FOUND"
	CodeGameNotFound   = "GAME_NOT_FOUND"
	CodePlayerNotFound = "PLAYER_NOT_FOUND"
	CodeInviteNotFound = "INVITE_NOT_FOUND"
	CodeConflict       = "CONFLICT"
	CodeInternalError  = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError. Messages of domain errors
// are passed through since they carry validation detail.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrInviteNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeInviteNotFound, "Invite not found"}}
	case errors.Is(err, model.ErrNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
	case errors.Is(err, model.ErrUnauthorized):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or missing credentials"}}
	case errors.Is(err, model.ErrInvalidState):
		return &httpError{http.StatusConflict, APIError{CodeInvalidState, err.Error()}}
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusConflict, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrDuplicateShot):
		return &httpError{http.StatusConflict, APIError{CodeDuplicateShot, "Cell already shot"}}
	case errors.Is(err, model.ErrInvalidFleet):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidFleet, err.Error()}}
	case errors.Is(err, model.ErrNameCollision):
		return &httpError{http.StatusConflict, APIError{CodeNameCollision, "Player names must differ"}}
	case errors.Is(err, model.ErrInvalidCell),
		errors.Is(err, model.ErrNameRequired),
		errors.Is(err, model.ErrInvalidMessage),
		errors.Is(err, model.ErrUnknownBot):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	case errors.Is(err, storage.ErrTxConflict):
		return &httpError{http.StatusConflict, APIError{CodeConflict, "Game is busy, try again"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
