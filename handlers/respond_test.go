package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ekram2004/task-manager-saas-collaborative/models"
)

func TestStatusForKind(t *testing.T) {
	cases := map[models.ErrorKind]int{
		models.ErrValidation:       http.StatusBadRequest,
		models.ErrDuplicateName:    http.StatusBadRequest,
		models.ErrAlreadyMember:    http.StatusBadRequest,
		models.ErrInvalidOperation: http.StatusBadRequest,
		models.ErrNotFound:         http.StatusNotFound,
		models.ErrForbidden:        http.StatusForbidden,
		models.ErrInternal:         http.StatusInternalServerError,
	}

	for kind, want := range cases {
		assert.Equal(t, want, statusForKind(kind), "kind %s", kind)
	}
}

func TestWriteErrorBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, models.NewAppError(models.ErrForbidden, "Only the organization owner can manage members"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Forbidden", body["error"])
	assert.Equal(t, "Only the organization owner can manage members", body["message"])
}

func TestWriteErrorHidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, models.InternalError("Server error", assert.AnError))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Server error", body["message"])
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}
