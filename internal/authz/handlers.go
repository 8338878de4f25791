package authz

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/logger"
)

// Handlers provides HTTP handlers for role administration and access checks
type Handlers struct {
	mutations *RoleMutationService
	evaluator *Evaluator
	store     authz.RoleAssignmentStore
	logger    *logger.Logger
}

// NewHandlers creates a new instance of the authorization handlers
func NewHandlers(mutations *RoleMutationService, evaluator *Evaluator, store authz.RoleAssignmentStore, log *logger.Logger) *Handlers {
	return &Handlers{
		mutations: mutations,
		evaluator: evaluator,
		store:     store,
		logger:    log,
	}
}

// RegisterRoutes registers all authorization routes with the router
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/roles", h.ListRoleCatalog).Methods("GET")
	router.HandleFunc("/users/{userID}/roles", h.AssignRole).Methods("POST")
	router.HandleFunc("/users/{userID}/roles", h.ListRoles).Methods("GET")
	router.HandleFunc("/users/{userID}/roles/{role}", h.RemoveRole).Methods("DELETE")
	router.HandleFunc("/access/check", h.CheckAccess).Methods("POST")
}

type roleCatalogEntry struct {
	Role        authz.Role `json:"role"`
	DisplayName string     `json:"display_name"`
}

// ListRoleCatalog returns the role vocabulary with display names, for
// assignment UIs
func (h *Handlers) ListRoleCatalog(w http.ResponseWriter, r *http.Request) {
	if _, ok := ActorFromContext(r.Context()); !ok {
		h.writeError(w, http.StatusUnauthorized, "no authenticated actor")
		return
	}

	roles := authz.ValidRoles()
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })

	entries := make([]roleCatalogEntry, 0, len(roles))
	for _, role := range roles {
		entries = append(entries, roleCatalogEntry{
			Role:        role,
			DisplayName: authz.RoleDisplayNames[role],
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"roles": entries})
}

type assignRoleRequest struct {
	Role string `json:"role"`
}

// AssignRole handles role assignment requests
func (h *Handlers) AssignRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "no authenticated actor")
		return
	}

	targetUserID := mux.Vars(r)["userID"]

	var req assignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := authz.ParseRole(req.Role)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	assignment, err := h.mutations.Assign(r.Context(), actor.UserID, targetUserID, role)
	if err != nil {
		h.writeAuthzError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, assignment)
}

// RemoveRole handles role removal requests
func (h *Handlers) RemoveRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "no authenticated actor")
		return
	}

	vars := mux.Vars(r)
	targetUserID := vars["userID"]

	role, err := authz.ParseRole(vars["role"])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.mutations.Remove(r.Context(), actor.UserID, targetUserID, role); err != nil {
		h.writeAuthzError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRoles returns all assignments for a user. Revoked rows are included
// when ?include_inactive=true, for audit inspection.
func (h *Handlers) ListRoles(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "no authenticated actor")
		return
	}

	if !h.evaluator.CanAssignRoles(actor.Roles) && !h.evaluator.CanViewAuditLogs(actor.Roles) {
		h.writeError(w, http.StatusForbidden, "insufficient privileges")
		return
	}

	targetUserID := mux.Vars(r)["userID"]

	var assignments []authz.RoleAssignment
	var err error
	if r.URL.Query().Get("include_inactive") == "true" {
		assignments, err = h.store.ListAssignments(r.Context(), targetUserID)
	} else {
		assignments, err = h.store.ListActiveRoles(r.Context(), targetUserID)
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to list role assignments")
		h.writeError(w, http.StatusInternalServerError, "failed to list role assignments")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":     targetUserID,
		"assignments": assignments,
	})
}

type checkAccessRequest struct {
	Category string `json:"category"`
	Action   string `json:"action"`
	Scope    string `json:"scope"`
}

type checkAccessResponse struct {
	Allowed bool `json:"allowed"`
}

// CheckAccess evaluates a permission query for the calling actor
func (h *Handlers) CheckAccess(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "no authenticated actor")
		return
	}

	var req checkAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scope := authz.Scope(req.Scope)
	if req.Scope == "" {
		scope = authz.ScopeAll
	}

	allowed := h.evaluator.Allows(actor.Roles, authz.Category(req.Category), authz.Action(req.Action), scope)
	h.writeJSON(w, http.StatusOK, checkAccessResponse{Allowed: allowed})
}

// writeAuthzError maps the error taxonomy onto HTTP status codes
func (h *Handlers) writeAuthzError(w http.ResponseWriter, err error) {
	authzErr, ok := authz.GetAuthzError(err)
	if !ok {
		h.logger.WithError(err).Error("Role mutation failed")
		h.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, authz.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, authz.ErrPrerequisiteMissing), errors.Is(err, authz.ErrDependentRoleActive):
		status = http.StatusConflict
	case errors.Is(err, authz.ErrUnknownRole):
		status = http.StatusBadRequest
	case errors.Is(err, authz.ErrDataUnavailable):
		status = http.StatusServiceUnavailable
	}

	h.writeJSON(w, status, map[string]interface{}{
		"error": authzErr.Message,
		"type":  authzErr.Type,
		"code":  authzErr.Code,
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
