package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// RBACRepository handles the permission catalog, tenant roles and direct
// per-member grants. Roles and member grants are tenant-owned and go through
// the scope; the permission catalog is global.
type RBACRepository struct {
	scope TenantScope
}

// NewRBACRepository creates a new RBAC repository
func NewRBACRepository(db *gorm.DB, store *tenantctx.Store) *RBACRepository {
	return &RBACRepository{scope: NewTenantScope(db, store)}
}

// EnsurePermission upserts a catalog entry by its derived name. The conflict
// clause keeps it idempotent when several replicas seed the catalog at once;
// the loser of the race reads back the winner's row.
func (r *RBACRepository) EnsurePermission(ctx context.Context, p *models.Permission) error {
	if p.Name == "" {
		p.Name = models.PermissionName(p.Resource, p.Action, p.Context)
	}
	err := r.scope.DB().WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(p).Error
	if err != nil {
		return err
	}
	var existing models.Permission
	if err := r.scope.DB().WithContext(ctx).First(&existing, "name = ?", p.Name).Error; err != nil {
		return err
	}
	*p = existing
	return nil
}

// GetPermissionByName looks a catalog entry up by its unique name.
func (r *RBACRepository) GetPermissionByName(ctx context.Context, name string) (*models.Permission, error) {
	var p models.Permission
	err := r.scope.DB().WithContext(ctx).First(&p, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// CreateRole persists a tenant role, stamping it with the active tenant.
func (r *RBACRepository) CreateRole(ctx context.Context, role *models.Role) error {
	if err := r.scope.Stamp(ctx, role); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Create(role).Error
}

// GetRoleByName returns the tenant's role with its permissions preloaded.
func (r *RBACRepository) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.scope.Scoped(ctx).
		Preload("Permissions").
		First(&role, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// ReplaceRolePermissions swaps a role's permission bundle.
func (r *RBACRepository) ReplaceRolePermissions(ctx context.Context, role *models.Role, perms []models.Permission) error {
	if err := r.scope.EnsureOwnership(ctx, role); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Model(role).Association("Permissions").Replace(perms)
}

// CreateMemberPermission persists one direct grant or denial, stamped with
// the active tenant.
func (r *RBACRepository) CreateMemberPermission(ctx context.Context, mp *models.MemberPermission) error {
	if err := r.scope.Stamp(ctx, mp); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Create(mp).Error
}

// ListMemberPermissions returns the user's direct grants and denials within
// the active tenant, with the catalog entries preloaded.
func (r *RBACRepository) ListMemberPermissions(ctx context.Context, userID uuid.UUID) ([]models.MemberPermission, error) {
	var grants []models.MemberPermission
	err := r.scope.Scoped(ctx).
		Preload("Permission").
		Where("user_id = ?", userID).
		Find(&grants).Error
	return grants, err
}

// DeleteMemberPermission removes a direct grant within the active tenant.
func (r *RBACRepository) DeleteMemberPermission(ctx context.Context, id uuid.UUID) error {
	return r.scope.Scoped(ctx).Delete(&models.MemberPermission{}, "id = ?", id).Error
}
