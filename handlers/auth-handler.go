package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Ekram2004/task-manager-saas-collaborative/middleware"
	"github.com/Ekram2004/task-manager-saas-collaborative/services"
)

type AuthHandler struct {
	UserService *services.UserService
}

func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{UserService: userService}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validRegistration(req RegisterRequest) bool {
	if strings.TrimSpace(req.Name) == "" || req.Password == "" {
		return false
	}
	email := strings.TrimSpace(req.Email)
	return email != "" && strings.Contains(email, "@")
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request data", http.StatusBadRequest)
		return
	}

	if !validRegistration(req) {
		http.Error(w, "Name, email and password are required", http.StatusBadRequest)
		return
	}

	user, token, appErr := h.UserService.Register(r.Context(), req.Name, req.Email, req.Password)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request data", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, token, appErr := h.UserService.Login(r.Context(), req.Email, req.Password)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Logged in successfully",
		"token":   token,
		"user":    user,
	})
}

// Me returns the authenticated user's current snapshot, organization and role
// included, straight from the database.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": requester})
}
