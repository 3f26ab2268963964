package apierr_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/battleship-go/internal/api/apierr"
	"github.com/mcoot/battleship-go/internal/model"
	"github.com/mcoot/battleship-go/internal/storage"
)

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"game not found", model.ErrGameNotFound, http.StatusNotFound, apierr.CodeGameNotFound},
		{"invite not found", model.ErrInviteNotFound, http.StatusNotFound, apierr.CodeInviteNotFound},
		{"player not found", model.ErrPlayerNotFound, http.StatusNotFound, apierr.CodePlayerNotFound},
		{"bare not found", model.ErrNotFound, http.StatusNotFound, apierr.CodeNotFound},
		{"unauthorized", model.ErrUnauthorized, http.StatusUnauthorized, apierr.CodeUnauthorized},
		{"invalid state", model.ErrInvalidState, http.StatusConflict, apierr.CodeInvalidState},
		{"not your turn", model.ErrNotYourTurn, http.StatusConflict, apierr.CodeNotYourTurn},
		{"duplicate shot", model.ErrDuplicateShot, http.StatusConflict, apierr.CodeDuplicateShot},
		{"invalid fleet", fmt.Errorf("%w: carrier must be 5 cells long", model.ErrInvalidFleet), http.StatusBadRequest, apierr.CodeInvalidFleet},
		{"name collision", model.ErrNameCollision, http.StatusConflict, apierr.CodeNameCollision},
		{"invalid cell", model.ErrInvalidCell, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"name required", model.ErrNameRequired, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"message", model.ErrInvalidMessage, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"unknown bot", model.ErrUnknownBot, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"tx conflict", storage.ErrTxConflict, http.StatusConflict, apierr.CodeConflict},
		{"explicit invalid request", apierr.NewInvalidRequestError("bad body"), http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, apierr.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			apierr.WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body apierr.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
			assert.Equal(t, tt.status, apierr.Status(tt.err))
		})
	}
}

func TestFleetMessageCarriesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	apierr.WriteError(rec, fmt.Errorf("%w: destroyer touches cruiser", model.ErrInvalidFleet))

	var body apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error.Message, "destroyer touches cruiser")
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	apierr.WriteError(rec, errors.New("redis: connection refused"))

	assert.NotContains(t, rec.Body.String(), "redis")
}
