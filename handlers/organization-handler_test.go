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

func orgRequestWithRequester(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(middleware.WithRequester(req.Context(), models.User{Name: "Ada"}))
}

func TestCreateOrganizationRequiresRequester(t *testing.T) {
	h := NewOrganizationHandler(nil)

	rec := httptest.NewRecorder()
	h.CreateOrganization(rec, httptest.NewRequest(http.MethodPost, "/api/organizations", strings.NewReader(`{"name":"Acme"}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrganizationRejectsEmptyName(t *testing.T) {
	h := NewOrganizationHandler(nil)

	for _, body := range []string{`{}`, `{"name":"   "}`} {
		rec := httptest.NewRecorder()
		h.CreateOrganization(rec, orgRequestWithRequester(http.MethodPost, "/api/organizations", body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestAddMemberRejectsEmptyEmail(t *testing.T) {
	h := NewOrganizationHandler(nil)

	rec := httptest.NewRecorder()
	h.AddMember(rec, orgRequestWithRequester(http.MethodPost, "/api/organizations/x/members", `{"email":""}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddMemberRejectsMalformedBody(t *testing.T) {
	h := NewOrganizationHandler(nil)

	rec := httptest.NewRecorder()
	h.AddMember(rec, orgRequestWithRequester(http.MethodPost, "/api/organizations/x/members", "{not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
