package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
)

// TenantRepository handles tenants, users and memberships. These tables are
// the tenancy directory itself and are deliberately not tenant-scoped: tenant
// resolution has to look tenants up before any context exists.
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// CreateTenant persists a new tenant.
func (r *TenantRepository) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

// GetTenantByID retrieves a tenant regardless of its active flag.
func (r *TenantRepository) GetTenantByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

// GetTenantBySubdomain retrieves a tenant by its unique subdomain.
func (r *TenantRepository) GetTenantBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.WithContext(ctx).First(&tenant, "subdomain = ?", subdomain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

// UpdateTenant persists changes to a tenant row.
func (r *TenantRepository) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	return r.db.WithContext(ctx).Save(tenant).Error
}

// SuspendTenant soft-suspends a tenant. Tenants are never hard-deleted in
// normal operation.
func (r *TenantRepository) SuspendTenant(ctx context.Context, id uuid.UUID, reason string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Tenant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":        false,
			"suspended_at":     now,
			"suspended_reason": reason,
		}).Error
}

// ListTenants lists tenants with pagination, newest first.
func (r *TenantRepository) ListTenants(ctx context.Context, page Pagination) ([]models.Tenant, int64, error) {
	var tenants []models.Tenant
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Tenant{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&tenants).Error
	if err != nil {
		return nil, 0, err
	}
	return tenants, total, nil
}

// ExistsBySubdomain reports whether a tenant already claims the subdomain.
func (r *TenantRepository) ExistsBySubdomain(ctx context.Context, subdomain string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Tenant{}).
		Where("subdomain = ?", subdomain).
		Count(&count).Error
	return count > 0, err
}

// ============================================================================
// Users
// ============================================================================

// CreateUser persists a new global user account.
func (r *TenantRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByID retrieves a user by id.
func (r *TenantRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *TenantRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ============================================================================
// Memberships
// ============================================================================

// CreateMembership persists a new tenant membership row.
func (r *TenantRepository) CreateMembership(ctx context.Context, m *models.TenantMembership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// GetMembership retrieves the membership row for a (tenant, user) pair, if
// any, regardless of its active flag.
func (r *TenantRepository) GetMembership(ctx context.Context, tenantID, userID uuid.UUID) (*models.TenantMembership, error) {
	var m models.TenantMembership
	err := r.db.WithContext(ctx).
		First(&m, "tenant_id = ? AND user_id = ?", tenantID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// FirstActiveMembership returns the user's first active membership in an
// active tenant, preloading the tenant. Used as the last tenant resolution
// fallback for authenticated callers.
func (r *TenantRepository) FirstActiveMembership(ctx context.Context, userID uuid.UUID) (*models.TenantMembership, error) {
	var m models.TenantMembership
	err := r.db.WithContext(ctx).
		Joins("JOIN tenants ON tenants.id = tenant_users.tenant_id AND tenants.is_active = ?", true).
		Where("tenant_users.user_id = ? AND tenant_users.is_active = ?", userID, true).
		Order("tenant_users.created_at ASC").
		Preload("Tenant").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListMemberships lists the membership rows of one tenant.
func (r *TenantRepository) ListMemberships(ctx context.Context, tenantID uuid.UUID) ([]models.TenantMembership, error) {
	var memberships []models.TenantMembership
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&memberships).Error
	return memberships, err
}

// UpdateMembership persists changes to a membership row.
func (r *TenantRepository) UpdateMembership(ctx context.Context, m *models.TenantMembership) error {
	return r.db.WithContext(ctx).Save(m).Error
}
