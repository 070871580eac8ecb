package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// CaseFilter represents filter criteria for listing cases
type CaseFilter struct {
	ClientID          *uuid.UUID
	Status            string
	ResponsibleUserID *uuid.UUID
	Search            string
	Pagination
}

// CaseRepository handles database operations for cases and case events.
type CaseRepository struct {
	scope TenantScope
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *gorm.DB, store *tenantctx.Store) *CaseRepository {
	return &CaseRepository{scope: NewTenantScope(db, store)}
}

// Create persists a new case stamped with the active tenant.
func (r *CaseRepository) Create(ctx context.Context, c *models.Case) error {
	if err := r.scope.Stamp(ctx, c); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Create(c).Error
}

// GetByID retrieves one of the active tenant's cases.
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID, preloads ...string) (*models.Case, error) {
	query := r.scope.Scoped(ctx)
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	var c models.Case
	err := query.First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// List returns the active tenant's cases with filtering and pagination.
func (r *CaseRepository) List(ctx context.Context, filter CaseFilter) ([]models.Case, int64, error) {
	var cases []models.Case
	var total int64

	query := r.scope.Scoped(ctx).Model(&models.Case{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ResponsibleUserID != nil {
		query = query.Where("responsible_user_id = ?", *filter.ResponsibleUserID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR number LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("opened_at DESC").
		Limit(filter.Limit()).
		Offset(filter.Offset()).
		Find(&cases).Error
	if err != nil {
		return nil, 0, err
	}
	return cases, total, nil
}

// Update persists changes to a case after verifying tenant ownership.
func (r *CaseRepository) Update(ctx context.Context, c *models.Case) error {
	if err := r.scope.EnsureOwnership(ctx, c); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Save(c).Error
}

// Delete removes one of the active tenant's cases.
func (r *CaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.scope.Scoped(ctx).Delete(&models.Case{}, "id = ?", id).Error
}

// CreateEvent appends a timeline event stamped with the active tenant.
func (r *CaseRepository) CreateEvent(ctx context.Context, event *models.CaseEvent) error {
	if err := r.scope.Stamp(ctx, event); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Create(event).Error
}

// ListEvents returns a case's timeline, newest first.
func (r *CaseRepository) ListEvents(ctx context.Context, caseID uuid.UUID, page Pagination) ([]models.CaseEvent, int64, error) {
	var events []models.CaseEvent
	var total int64

	query := r.scope.Scoped(ctx).Model(&models.CaseEvent{}).Where("case_id = ?", caseID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("occurred_at DESC").
		Limit(page.Limit()).
		Offset(page.Offset()).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListForTenant lists an explicit tenant's cases regardless of the active
// context. Administrative escape hatch.
func (r *CaseRepository) ListForTenant(ctx context.Context, tenantID uuid.UUID, filter CaseFilter) ([]models.Case, int64, error) {
	var cases []models.Case
	var total int64

	query := r.scope.ForTenant(ctx, tenantID).Model(&models.Case{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("opened_at DESC").
		Limit(filter.Limit()).
		Offset(filter.Offset()).
		Find(&cases).Error
	if err != nil {
		return nil, 0, err
	}
	return cases, total, nil
}
