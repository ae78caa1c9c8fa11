package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ekram2004/task-manager-saas-collaborative/middleware"
	"github.com/Ekram2004/task-manager-saas-collaborative/models"
)

func taskRequestWithRequester(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(middleware.WithRequester(req.Context(), models.User{Name: "Ada"}))
}

func TestTaskHandlersRequireRequester(t *testing.T) {
	h := NewTaskHandler(nil)

	endpoints := []func(http.ResponseWriter, *http.Request){
		h.GetTasks, h.GetTask, h.CreateTask, h.UpdateTask, h.DeleteTask,
	}

	for _, endpoint := range endpoints {
		rec := httptest.NewRecorder()
		endpoint(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestCreateTaskRejectsMalformedBody(t *testing.T) {
	h := NewTaskHandler(nil)

	rec := httptest.NewRecorder()
	h.CreateTask(rec, taskRequestWithRequester(http.MethodPost, "/api/tasks", "{not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTaskRejectsMalformedBody(t *testing.T) {
	h := NewTaskHandler(nil)

	rec := httptest.NewRecorder()
	h.UpdateTask(rec, taskRequestWithRequester(http.MethodPut, "/api/tasks/abc", "{not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTaskRejectsNonStringAssignee(t *testing.T) {
	h := NewTaskHandler(nil)

	rec := httptest.NewRecorder()
	h.UpdateTask(rec, taskRequestWithRequester(http.MethodPut, "/api/tasks/abc", `{"assignedTo": 42}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid assignedTo value")
}
