package authz

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/logger"
)

func setupTestHandlers() (*mux.Router, *MockRoleAssignmentStore) {
	mockStore := &MockRoleAssignmentStore{}
	catalog, _ := NewPermissionCatalog()
	graph, _ := NewRoleGraph()
	evaluator := NewEvaluator(catalog, graph)
	log := logger.New("debug")

	mutations := NewRoleMutationService(mockStore, graph, evaluator, log)
	handlers := NewHandlers(mutations, evaluator, mockStore, log)

	router := mux.NewRouter()
	handlers.RegisterRoutes(router)
	return router, mockStore
}

func requestAs(method, target string, body []byte, actor *authz.Actor) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(ContextWithActor(req.Context(), actor))
}

func adminActor() *authz.Actor {
	return &authz.Actor{UserID: "admin-1", Roles: []authz.Role{authz.RolePracticeAdministrator}}
}

func TestAssignRoleHandler_Created(t *testing.T) {
	router, mockStore := setupTestHandlers()
	mockAdminActor(mockStore, "admin-1")
	mockStore.On("ListActiveRoles", mock.Anything, "user-1").Return([]authz.RoleAssignment{}, nil)
	mockStore.On("Insert", mock.Anything, mock.AnythingOfType("*authz.RoleAssignment")).Return(nil)

	body, _ := json.Marshal(map[string]string{"role": "clinician"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestAs("POST", "/users/user-1/roles", body, adminActor()))

	require.Equal(t, http.StatusCreated, rec.Code)

	var assignment authz.RoleAssignment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assignment))
	assert.Equal(t, "user-1", assignment.UserID)
	assert.Equal(t, authz.RoleClinician, assignment.Role)
}

func TestAssignRoleHandler_PrerequisiteConflict(t *testing.T) {
	router, mockStore := setupTestHandlers()
	mockAdminActor(mockStore, "admin-1")
	mockStore.On("ListActiveRoles", mock.Anything, "user-1").Return([]authz.RoleAssignment{}, nil)

	body, _ := json.Marshal(map[string]string{"role": "supervisor"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestAs("POST", "/users/user-1/roles", body, adminActor()))

	assert.Equal(t, http.StatusConflict, rec.Code)

	var errBody map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, authz.ErrorCodePrerequisiteMissing, errBody["code"])
}

func TestAssignRoleHandler_UnknownRole(t *testing.T) {
	router, _ := setupTestHandlers()

	body, _ := json.Marshal(map[string]string{"role": "superuser"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestAs("POST", "/users/user-1/roles", body, adminActor()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssignRoleHandler_NoActor(t *testing.T) {
	router, _ := setupTestHandlers()

	body, _ := json.Marshal(map[string]string{"role": "clinician"})
	req := httptest.NewRequest("POST", "/users/user-1/roles", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRemoveRoleHandler_NoContent(t *testing.T) {
	router, mockStore := setupTestHandlers()
	mockAdminActor(mockStore, "admin-1")
	mockStore.On("ListActiveRoles", mock.Anything, "user-1").
		Return([]authz.RoleAssignment{activeAssignment("user-1", authz.RoleClinician)}, nil)
	mockStore.On("Deactivate", mock.Anything, "user-1", authz.RoleClinician, "admin-1").Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestAs("DELETE", "/users/user-1/roles/clinician", nil, adminActor()))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	mockStore.AssertExpectations(t)
}

func TestRemoveRoleHandler_DependentConflict(t *testing.T) {
	router, mockStore := setupTestHandlers()
	mockAdminActor(mockStore, "admin-1")
	mockStore.On("ListActiveRoles", mock.Anything, "user-1").
		Return([]authz.RoleAssignment{
			activeAssignment("user-1", authz.RoleClinician),
			activeAssignment("user-1", authz.RoleClinicalAdministrator),
		}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestAs("DELETE", "/users/user-1/roles/clinician", nil, adminActor()))

	assert.Equal(t, http.StatusConflict, rec.Code)

	var errBody map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, authz.ErrorCodeDependentRoleActive, errBody["code"])
}

func TestListRolesHandler(t *testing.T) {
	router, mockStore := setupTestHandlers()

	mockStore.On("ListActiveRoles", mock.Anything, "user-1").
		Return([]authz.RoleAssignment{activeAssignment("user-1", authz.RoleClinician)}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestAs("GET", "/users/user-1/roles", nil, adminActor()))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		UserID      string                 `json:"user_id"`
		Assignments []authz.RoleAssignment `json:"assignments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body.UserID)
	require.Len(t, body.Assignments, 1)
	assert.Equal(t, authz.RoleClinician, body.Assignments[0].Role)
}

func TestListRolesHandler_IncludeInactive(t *testing.T) {
	router, mockStore := setupTestHandlers()

	mockStore.On("ListAssignments", mock.Anything, "user-1").
		Return([]authz.RoleAssignment{activeAssignment("user-1", authz.RoleClinician)}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestAs("GET", "/users/user-1/roles?include_inactive=true", nil, adminActor()))

	assert.Equal(t, http.StatusOK, rec.Code)
	mockStore.AssertCalled(t, "ListAssignments", mock.Anything, "user-1")
	mockStore.AssertNotCalled(t, "ListActiveRoles", mock.Anything, "user-1")
}

func TestListRolesHandler_Forbidden(t *testing.T) {
	router, _ := setupTestHandlers()

	actor := &authz.Actor{UserID: "clinician-1", Roles: []authz.Role{authz.RoleClinician}}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestAs("GET", "/users/user-1/roles", nil, actor))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListRoleCatalogHandler(t *testing.T) {
	router, _ := setupTestHandlers()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, requestAs("GET", "/roles", nil, adminActor()))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Roles []struct {
			Role        authz.Role `json:"role"`
			DisplayName string     `json:"display_name"`
		} `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Roles, 9)

	names := make(map[authz.Role]string, len(body.Roles))
	for _, entry := range body.Roles {
		names[entry.Role] = entry.DisplayName
	}
	assert.Equal(t, "Practice Administrator", names[authz.RolePracticeAdministrator])
	assert.Equal(t, "Clinician", names[authz.RoleClinician])

	// Sorted by role for stable output
	for i := 1; i < len(body.Roles); i++ {
		assert.Less(t, string(body.Roles[i-1].Role), string(body.Roles[i].Role))
	}
}

func TestListRoleCatalogHandler_NoActor(t *testing.T) {
	router, _ := setupTestHandlers()

	req := httptest.NewRequest("GET", "/roles", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckAccessHandler(t *testing.T) {
	router, _ := setupTestHandlers()

	tests := []struct {
		name    string
		actor   *authz.Actor
		request map[string]string
		allowed bool
	}{
		{
			name:    "admin schedule read",
			actor:   adminActor(),
			request: map[string]string{"category": "schedule", "action": "read", "scope": "all"},
			allowed: true,
		},
		{
			name:    "clinician own notes",
			actor:   &authz.Actor{UserID: "c-1", Roles: []authz.Role{authz.RoleClinician}},
			request: map[string]string{"category": "clinical_notes", "action": "read", "scope": "own_only"},
			allowed: true,
		},
		{
			name:    "scope defaults to all",
			actor:   &authz.Actor{UserID: "c-1", Roles: []authz.Role{authz.RoleClinician}},
			request: map[string]string{"category": "clinical_notes", "action": "read"},
			allowed: false,
		},
		{
			name:    "intern insurance billing hard deny",
			actor:   &authz.Actor{UserID: "i-1", Roles: []authz.Role{authz.RoleIntern, authz.RolePracticeBiller}},
			request: map[string]string{"category": "billing", "action": "bill_insurance", "scope": "all"},
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.request)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, requestAs("POST", "/access/check", body, tt.actor))

			require.Equal(t, http.StatusOK, rec.Code)

			var resp checkAccessResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.allowed, resp.Allowed)
		})
	}
}
