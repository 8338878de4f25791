package authz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/authz"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/logger"
	"github.com/Yi-Jacob/mentalspace-ehr-sub008/pkg/monitoring"
)

// RoleMutationService assigns and removes role assignments while preserving
// the role-dependency invariant. Mutations against the same target user are
// serialized; different users proceed in parallel.
type RoleMutationService struct {
	store     authz.RoleAssignmentStore
	graph     *RoleGraph
	evaluator *Evaluator
	logger    *logger.Logger

	userLocks map[string]*sync.Mutex
	locksMu   sync.Mutex
}

// NewRoleMutationService creates a new role mutation service
func NewRoleMutationService(store authz.RoleAssignmentStore, graph *RoleGraph, evaluator *Evaluator, log *logger.Logger) *RoleMutationService {
	return &RoleMutationService{
		store:     store,
		graph:     graph,
		evaluator: evaluator,
		logger:    log,
		userLocks: make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing mutations for one target user
func (s *RoleMutationService) userLock(userID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// Assign grants a role to the target user. Re-assigning an already-active
// role is an idempotent success returning the existing assignment; duplicate
// rows would pollute the audit history without changing any decision.
func (s *RoleMutationService) Assign(ctx context.Context, actorID, targetUserID string, role authz.Role) (assignment *authz.RoleAssignment, err error) {
	defer func() { monitoring.RecordRoleMutation("assign", err) }()

	if !authz.IsValidRole(role) {
		err = authz.ErrUnknownRole.WithRole(string(role)).WithContext(targetUserID)
		s.auditRejection(actorID, targetUserID, role, "assign", err)
		return nil, err
	}

	if err = s.checkActor(ctx, actorID); err != nil {
		s.auditRejection(actorID, targetUserID, role, "assign", err)
		return nil, err
	}

	lock := s.userLock(targetUserID)
	lock.Lock()
	defer lock.Unlock()

	activeRoles, listErr := s.store.ListActiveRoles(ctx, targetUserID)
	if listErr != nil {
		err = fmt.Errorf("failed to list active roles for %s: %w", targetUserID, listErr)
		return nil, err
	}

	for i := range activeRoles {
		if activeRoles[i].Role == role {
			// Already held; nothing to write.
			return &activeRoles[i], nil
		}
	}

	if prerequisite, required := s.graph.RequiresOf(role); required {
		if !holdsRole(activeRoles, prerequisite) {
			err = authz.ErrPrerequisiteMissing.
				WithContext(targetUserID).
				WithRole(string(prerequisite))
			s.auditRejection(actorID, targetUserID, role, "assign", err)
			return nil, err
		}
	}

	assignment = &authz.RoleAssignment{
		ID:         uuid.New().String(),
		UserID:     targetUserID,
		Role:       role,
		IsActive:   true,
		AssignedBy: actorID,
		AssignedAt: time.Now().UTC(),
	}

	if insertErr := s.store.Insert(ctx, assignment); insertErr != nil {
		err = fmt.Errorf("failed to insert role assignment: %w", insertErr)
		return nil, err
	}

	s.logger.Audit(actorID, authz.AuditEventRoleAssigned, targetUserID, true, map[string]interface{}{
		"role":          string(role),
		"assignment_id": assignment.ID,
	})

	return assignment, nil
}

// Remove deactivates the target user's assignment for a role. The row is
// kept with is_active=false; reactivation requires a fresh Assign. Removing
// a role the user does not hold is an idempotent no-op.
func (s *RoleMutationService) Remove(ctx context.Context, actorID, targetUserID string, role authz.Role) (err error) {
	defer func() { monitoring.RecordRoleMutation("remove", err) }()

	if !authz.IsValidRole(role) {
		err = authz.ErrUnknownRole.WithRole(string(role)).WithContext(targetUserID)
		s.auditRejection(actorID, targetUserID, role, "remove", err)
		return err
	}

	if err = s.checkActor(ctx, actorID); err != nil {
		s.auditRejection(actorID, targetUserID, role, "remove", err)
		return err
	}

	lock := s.userLock(targetUserID)
	lock.Lock()
	defer lock.Unlock()

	activeRoles, listErr := s.store.ListActiveRoles(ctx, targetUserID)
	if listErr != nil {
		err = fmt.Errorf("failed to list active roles for %s: %w", targetUserID, listErr)
		return err
	}

	if !holdsRole(activeRoles, role) {
		// Not held; nothing to deactivate. Mirrors the assign side.
		return nil
	}

	for _, dependent := range s.graph.DependentsOf(role) {
		if holdsRole(activeRoles, dependent) {
			err = authz.ErrDependentRoleActive.
				WithContext(targetUserID).
				WithRole(string(dependent))
			s.auditRejection(actorID, targetUserID, role, "remove", err)
			return err
		}
	}

	if deactivateErr := s.store.Deactivate(ctx, targetUserID, role, actorID); deactivateErr != nil {
		err = fmt.Errorf("failed to deactivate role assignment: %w", deactivateErr)
		return err
	}

	s.logger.Audit(actorID, authz.AuditEventRoleRemoved, targetUserID, true, map[string]interface{}{
		"role": string(role),
	})

	return nil
}

// checkActor verifies the acting user holds the role-assignment right
func (s *RoleMutationService) checkActor(ctx context.Context, actorID string) error {
	assignments, err := s.store.ListActiveRoles(ctx, actorID)
	if err != nil {
		return fmt.Errorf("failed to resolve actor roles for %s: %w", actorID, err)
	}

	roles := make([]authz.Role, 0, len(assignments))
	for _, a := range assignments {
		roles = append(roles, a.Role)
	}

	if !s.evaluator.CanAssignRoles(roles) {
		return authz.ErrPermissionDenied.WithContext(actorID)
	}
	return nil
}

func (s *RoleMutationService) auditRejection(actorID, targetUserID string, role authz.Role, operation string, cause error) {
	s.logger.Audit(actorID, authz.AuditEventMutationRejected, targetUserID, false, map[string]interface{}{
		"operation": operation,
		"role":      string(role),
		"reason":    cause.Error(),
	})
}

func holdsRole(assignments []authz.RoleAssignment, role authz.Role) bool {
	for _, a := range assignments {
		if a.Role == role {
			return true
		}
	}
	return false
}
