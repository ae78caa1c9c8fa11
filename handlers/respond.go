package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Ekram2004/task-manager-saas-collaborative/logging"
	"github.com/Ekram2004/task-manager-saas-collaborative/models"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.ErrValidation, models.ErrDuplicateName, models.ErrAlreadyMember, models.ErrInvalidOperation:
		return http.StatusBadRequest
	case models.ErrNotFound:
		return http.StatusNotFound
	case models.ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders an AppError as a structured response. Internal causes
// are logged but never leaked to clients.
func writeError(w http.ResponseWriter, appErr *models.AppError) {
	if appErr.Kind == models.ErrInternal {
		logging.Logger.Errorf("Event ID: REQUEST_FAILED, Description: %v", appErr)
	}
	writeJSON(w, statusForKind(appErr.Kind), map[string]string{
		"error":   string(appErr.Kind),
		"message": appErr.Message,
	})
}
