package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// catalogEntry seeds one permission in the global catalog.
type catalogEntry struct {
	resource    string
	action      string
	description string
}

// defaultCatalog is the built-in permission catalog. Owners hold everything
// implicitly; the entries here feed the admin/lawyer/assistant role bundles.
var defaultCatalog = []catalogEntry{
	{"clients", "read", "View clients"},
	{"clients", "create", "Create clients"},
	{"clients", "update", "Edit clients"},
	{"clients", "archive", "Archive clients"},
	{"cases", "read", "View cases"},
	{"cases", "create", "Open cases"},
	{"cases", "update", "Edit cases"},
	{"cases", "close", "Close cases"},
	{"documents", "read", "View documents"},
	{"documents", "create", "Register documents"},
	{"documents", "delete", "Delete documents"},
	{"deadlines", "read", "View deadlines"},
	{"deadlines", "create", "Create deadlines"},
	{"deadlines", "update", "Complete or edit deadlines"},
	{"deadlines", "delete", "Delete deadlines"},
	{"time_entries", "read", "View time entries"},
	{"time_entries", "create", "Log time"},
	{"time_entries", "delete", "Delete time entries"},
	{"members", "read", "View members"},
	{"members", "manage", "Invite and manage members"},
	{"audit", "read", "View the audit trail"},
	{"tenant", "manage", "Edit firm settings"},
}

// roleBundles maps each built-in role to its permission names. Owner is
// absent on purpose: owners are granted everything at evaluation time.
var roleBundles = map[string][]string{
	models.RoleAdmin: {
		"clients:read", "clients:create", "clients:update", "clients:archive",
		"cases:read", "cases:create", "cases:update", "cases:close",
		"documents:read", "documents:create", "documents:delete",
		"deadlines:read", "deadlines:create", "deadlines:update", "deadlines:delete",
		"time_entries:read", "time_entries:create", "time_entries:delete",
		"members:read", "members:manage",
		"audit:read",
		"tenant:manage",
	},
	models.RoleLawyer: {
		"clients:read", "clients:create", "clients:update",
		"cases:read", "cases:create", "cases:update", "cases:close",
		"documents:read", "documents:create",
		"deadlines:read", "deadlines:create", "deadlines:update",
		"time_entries:read", "time_entries:create",
		"members:read",
	},
	models.RoleAssistant: {
		"clients:read",
		"cases:read",
		"documents:read",
		"deadlines:read", "deadlines:create", "deadlines:update",
		"time_entries:read", "time_entries:create",
	},
}

// RBACService manages the permission catalog, per-tenant role bundles and
// direct member grants.
type RBACService struct {
	rbac   *repository.RBACRepository
	store  *tenantctx.Store
	logger *logrus.Logger
}

// NewRBACService creates a new RBAC service
func NewRBACService(rbac *repository.RBACRepository, store *tenantctx.Store, logger *logrus.Logger) *RBACService {
	return &RBACService{
		rbac:   rbac,
		store:  store,
		logger: logger,
	}
}

// EnsureCatalog upserts the built-in permission catalog. Runs at startup;
// idempotent.
func (s *RBACService) EnsureCatalog(ctx context.Context) error {
	for _, entry := range defaultCatalog {
		p := &models.Permission{
			Resource:    entry.resource,
			Action:      entry.action,
			Description: entry.description,
			IsSystem:    true,
		}
		if err := s.rbac.EnsurePermission(ctx, p); err != nil {
			return fmt.Errorf("failed to seed permission %s:%s: %w", entry.resource, entry.action, err)
		}
	}
	s.logger.WithField("permissions", len(defaultCatalog)).Info("Permission catalog ensured")
	return nil
}

// ProvisionTenantRoles creates the built-in role bundles for a new tenant.
// Called right after signup, before any tenant context exists, so the roles
// carry an explicit tenant id.
func (s *RBACService) ProvisionTenantRoles(ctx context.Context, tenantID uuid.UUID) error {
	for roleName, permNames := range roleBundles {
		perms := make([]models.Permission, 0, len(permNames))
		for _, name := range permNames {
			p, err := s.rbac.GetPermissionByName(ctx, name)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("permission %q missing from catalog", name)
			}
			perms = append(perms, *p)
		}

		role := &models.Role{
			Name:     roleName,
			IsSystem: true,
		}
		role.TenantID = tenantID
		if err := s.rbac.CreateRole(ctx, role); err != nil {
			return fmt.Errorf("failed to create role %q: %w", roleName, err)
		}
		if err := s.rbac.ReplaceRolePermissions(ctx, role, perms); err != nil {
			return fmt.Errorf("failed to attach permissions to role %q: %w", roleName, err)
		}
	}
	s.logger.WithField("tenant_id", tenantID).Info("Default roles provisioned")
	return nil
}

// GrantRequest creates one direct grant or denial for a member.
type GrantRequest struct {
	Resource  string     `json:"resource" binding:"required"`
	Action    string     `json:"action" binding:"required"`
	Context   string     `json:"context"`
	Granted   *bool      `json:"granted"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Grant records a direct per-member permission grant or denial within the
// active tenant.
func (s *RBACService) Grant(ctx context.Context, userID uuid.UUID, req *GrantRequest) (*models.MemberPermission, error) {
	name := models.PermissionName(req.Resource, req.Action, req.Context)
	perm, err := s.rbac.GetPermissionByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if perm == nil {
		return nil, NewValidationError("permission", fmt.Sprintf("%q is not in the catalog", name))
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		return nil, NewValidationError("expires_at", "must be in the future")
	}

	granted := true
	if req.Granted != nil {
		granted = *req.Granted
	}

	var grantedBy *uuid.UUID
	if tc, ok := s.store.Current(ctx); ok {
		grantedBy = tc.UserID
	}

	mp := &models.MemberPermission{
		UserID:       userID,
		PermissionID: perm.ID,
		Granted:      granted,
		ExpiresAt:    req.ExpiresAt,
		GrantedBy:    grantedBy,
	}
	if err := s.rbac.CreateMemberPermission(ctx, mp); err != nil {
		return nil, err
	}
	mp.Permission = perm
	return mp, nil
}

// ListGrants returns a member's direct grants and denials.
func (s *RBACService) ListGrants(ctx context.Context, userID uuid.UUID) ([]models.MemberPermission, error) {
	return s.rbac.ListMemberPermissions(ctx, userID)
}

// Revoke removes a direct grant.
func (s *RBACService) Revoke(ctx context.Context, grantID uuid.UUID) error {
	return s.rbac.DeleteMemberPermission(ctx, grantID)
}
