package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Ekram2004/task-manager-saas-collaborative/middleware"
	"github.com/Ekram2004/task-manager-saas-collaborative/models"
	"github.com/Ekram2004/task-manager-saas-collaborative/services"
)

type OrganizationHandler struct {
	Service *services.OrganizationService
}

func NewOrganizationHandler(service *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{Service: service}
}

type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

type AddMemberRequest struct {
	Email string `json:"email"`
}

func (h *OrganizationHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request data", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "Organization name is required", http.StatusBadRequest)
		return
	}

	organization, appErr := h.Service.CreateOrganization(r.Context(), requester, req.Name)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	// Echo back the requester's new binding so clients can update their
	// local user state without re-logging in.
	requester.Organization = &organization.ID
	requester.Role = models.RoleOwner

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "Organization created successfully",
		"organization": organization,
		"user":         requester,
	})
}

func (h *OrganizationHandler) GetMyOrganization(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	view, appErr := h.Service.GetMyOrganization(r.Context(), requester)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"organization": view})
}

func (h *OrganizationHandler) GetMyMembers(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	members, appErr := h.Service.GetMyMembers(r.Context(), requester)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}

func (h *OrganizationHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request data", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		http.Error(w, "Member email is required", http.StatusBadRequest)
		return
	}

	vars := mux.Vars(r)
	member, appErr := h.Service.AddMember(r.Context(), requester, vars["id"], req.Email)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Member added successfully",
		"member":  member,
	})
}

func (h *OrganizationHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	requester, ok := middleware.RequesterFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	if appErr := h.Service.RemoveMember(r.Context(), requester, vars["id"], vars["memberId"]); appErr != nil {
		writeError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Member removed successfully"})
}
