package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// AuditRepositoryInterface is implemented by AuditRepository; the permission
// service and scheduler depend on the interface so tests can mock the store.
type AuditRepositoryInterface interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter *models.AuditLogFilter) ([]models.AuditLog, int64, error)
	ListForTenant(ctx context.Context, tenantID uuid.UUID, filter *models.AuditLogFilter) ([]models.AuditLog, int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditRepository handles database operations for audit log entries. Entries
// are immutable: create and query only, plus the age-based retention delete.
type AuditRepository struct {
	scope TenantScope
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB, store *tenantctx.Store) *AuditRepository {
	return &AuditRepository{scope: NewTenantScope(db, store)}
}

// Create persists one audit entry, stamped with the active tenant. Entries
// written by admin tooling may carry an explicit tenant id instead.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if err := r.scope.Stamp(ctx, entry); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Create(entry).Error
}

// List returns the active tenant's audit entries, newest first.
func (r *AuditRepository) List(ctx context.Context, filter *models.AuditLogFilter) ([]models.AuditLog, int64, error) {
	return r.list(r.scope.Scoped(ctx), filter)
}

// ListForTenant returns an explicit tenant's audit entries regardless of the
// active context. Administrative escape hatch.
func (r *AuditRepository) ListForTenant(ctx context.Context, tenantID uuid.UUID, filter *models.AuditLogFilter) ([]models.AuditLog, int64, error) {
	return r.list(r.scope.ForTenant(ctx, tenantID), filter)
}

func (r *AuditRepository) list(query *gorm.DB, filter *models.AuditLogFilter) ([]models.AuditLog, int64, error) {
	var entries []models.AuditLog
	var total int64

	query = query.Model(&models.AuditLog{})
	query = applyAuditFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := 50
	offset := 0
	if filter != nil {
		if filter.Limit > 0 {
			limit = filter.Limit
		}
		if filter.Offset > 0 {
			offset = filter.Offset
		}
	}

	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func applyAuditFilters(query *gorm.DB, filter *models.AuditLogFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Resource != "" {
		query = query.Where("resource = ?", filter.Resource)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ResourceID != "" {
		query = query.Where("resource_id = ?", filter.ResourceID)
	}
	if filter.Result != "" {
		query = query.Where("result = ?", filter.Result)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}
	return query
}

// DeleteOlderThan removes entries older than the cutoff across all tenants.
// Runs from the retention job with no tenant context; the cross-tenant query
// is the explicit, reviewable escape hatch.
func (r *AuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.scope.CrossTenant(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
