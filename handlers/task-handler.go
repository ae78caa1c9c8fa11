package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Ekram2004/task-manager-saas-collaborative/middleware"
	"github.com/Ekram2004/task-manager-saas-collaborative/models"
	"github.com/Ekram2004/task-manager-saas-collaborative/services"
)

type TaskHandler struct {
	Service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{Service: service}
}

type CreateTaskRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate"`
	AssignedTo  string              `json:"assignedTo"`
}

// UpdateTaskRequest distinguishes an absent assignedTo (leave unchanged) from
// an explicit null (unassign) by deferring that one field's decode.
type UpdateTaskRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *models.TaskStatus   `json:"status"`
	Priority    *models.TaskPriority `json:"priority"`
	DueDate     *time.Time           `json:"dueDate"`
	AssignedTo  json.RawMessage      `json:"assignedTo"`
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	tasks, appErr := h.Service.ListTasks(r.Context(), requester)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(tasks),
		"data":  tasks,
	})
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	task, appErr := h.Service.GetTask(r.Context(), requester, vars["id"])
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": task})
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request data", http.StatusBadRequest)
		return
	}

	task, appErr := h.Service.CreateTask(r.Context(), requester, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
	})
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"data": task})
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request data", http.StatusBadRequest)
		return
	}

	update := services.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}

	if len(req.AssignedTo) > 0 {
		if bytes.Equal(bytes.TrimSpace(req.AssignedTo), []byte("null")) {
			update.Unassign = true
		} else {
			var assignee string
			if err := json.Unmarshal(req.AssignedTo, &assignee); err != nil {
				http.Error(w, "Invalid assignedTo value", http.StatusBadRequest)
				return
			}
			update.AssignedTo = &assignee
		}
	}

	vars := mux.Vars(r)
	task, appErr := h.Service.UpdateTask(r.Context(), requester, vars["id"], update)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": task})
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	if appErr := h.Service.DeleteTask(r.Context(), requester, vars["id"]); appErr != nil {
		writeError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task removed"})
}
