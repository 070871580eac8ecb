package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// DeadlineFilter represents filter criteria for listing deadlines
type DeadlineFilter struct {
	CaseID     *uuid.UUID
	Status     string
	AssignedTo *uuid.UUID
	DueBefore  *time.Time
	Pagination
}

// DeadlineRepository handles database operations for deadlines.
type DeadlineRepository struct {
	scope TenantScope
}

// NewDeadlineRepository creates a new deadline repository
func NewDeadlineRepository(db *gorm.DB, store *tenantctx.Store) *DeadlineRepository {
	return &DeadlineRepository{scope: NewTenantScope(db, store)}
}

// Create persists a new deadline stamped with the active tenant.
func (r *DeadlineRepository) Create(ctx context.Context, d *models.Deadline) error {
	if err := r.scope.Stamp(ctx, d); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Create(d).Error
}

// GetByID retrieves one of the active tenant's deadlines.
func (r *DeadlineRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Deadline, error) {
	var d models.Deadline
	err := r.scope.Scoped(ctx).First(&d, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// List returns the active tenant's deadlines with filtering and pagination.
func (r *DeadlineRepository) List(ctx context.Context, filter DeadlineFilter) ([]models.Deadline, int64, error) {
	var deadlines []models.Deadline
	var total int64

	query := r.scope.Scoped(ctx).Model(&models.Deadline{})
	if filter.CaseID != nil {
		query = query.Where("case_id = ?", *filter.CaseID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_at <= ?", *filter.DueBefore)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("due_at ASC").
		Limit(filter.Limit()).
		Offset(filter.Offset()).
		Find(&deadlines).Error
	if err != nil {
		return nil, 0, err
	}
	return deadlines, total, nil
}

// Update persists changes to a deadline after verifying tenant ownership.
func (r *DeadlineRepository) Update(ctx context.Context, d *models.Deadline) error {
	if err := r.scope.EnsureOwnership(ctx, d); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Save(d).Error
}

// Delete removes one of the active tenant's deadlines.
func (r *DeadlineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.scope.Scoped(ctx).Delete(&models.Deadline{}, "id = ?", id).Error
}

// MarkOverdueAsMissed flips pending deadlines past their due date to missed.
// Called by the scheduler without tenant context; the advisory unscoped read
// behavior applies and the update runs across all tenants deliberately.
func (r *DeadlineRepository) MarkOverdueAsMissed(ctx context.Context, now time.Time) (int64, error) {
	result := r.scope.CrossTenant(ctx).
		Model(&models.Deadline{}).
		Where("status = ? AND due_at < ?", models.DeadlineStatusPending, now).
		Update("status", models.DeadlineStatusMissed)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
