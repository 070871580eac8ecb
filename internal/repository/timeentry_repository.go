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

// TimeEntryFilter represents filter criteria for listing time entries
type TimeEntryFilter struct {
	CaseID   *uuid.UUID
	UserID   *uuid.UUID
	Billable *bool
	From     *time.Time
	To       *time.Time
	Pagination
}

// TimeEntrySummary aggregates logged work for billing views.
type TimeEntrySummary struct {
	TotalMinutes    int64 `json:"total_minutes"`
	BillableMinutes int64 `json:"billable_minutes"`
	EntryCount      int64 `json:"entry_count"`
}

// TimeEntryRepository handles database operations for time entries.
type TimeEntryRepository struct {
	scope TenantScope
}

// NewTimeEntryRepository creates a new time entry repository
func NewTimeEntryRepository(db *gorm.DB, store *tenantctx.Store) *TimeEntryRepository {
	return &TimeEntryRepository{scope: NewTenantScope(db, store)}
}

// Create persists a new time entry stamped with the active tenant.
func (r *TimeEntryRepository) Create(ctx context.Context, entry *models.TimeEntry) error {
	if err := r.scope.Stamp(ctx, entry); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Create(entry).Error
}

// GetByID retrieves one of the active tenant's time entries.
func (r *TimeEntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := r.scope.Scoped(ctx).First(&entry, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// List returns the active tenant's time entries with filtering and pagination.
func (r *TimeEntryRepository) List(ctx context.Context, filter TimeEntryFilter) ([]models.TimeEntry, int64, error) {
	var entries []models.TimeEntry
	var total int64

	query := r.applyFilters(r.scope.Scoped(ctx).Model(&models.TimeEntry{}), filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("worked_on DESC").
		Limit(filter.Limit()).
		Offset(filter.Offset()).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Summarize aggregates the tenant's logged minutes for the filter window.
func (r *TimeEntryRepository) Summarize(ctx context.Context, filter TimeEntryFilter) (*TimeEntrySummary, error) {
	var summary TimeEntrySummary

	query := r.applyFilters(r.scope.Scoped(ctx).Model(&models.TimeEntry{}), filter)
	err := query.Select(
		"COALESCE(SUM(minutes), 0) AS total_minutes, " +
			"COALESCE(SUM(CASE WHEN billable THEN minutes ELSE 0 END), 0) AS billable_minutes, " +
			"COUNT(*) AS entry_count").
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// Update persists changes to a time entry after verifying tenant ownership.
func (r *TimeEntryRepository) Update(ctx context.Context, entry *models.TimeEntry) error {
	if err := r.scope.EnsureOwnership(ctx, entry); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Save(entry).Error
}

// Delete removes one of the active tenant's time entries.
func (r *TimeEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.scope.Scoped(ctx).Delete(&models.TimeEntry{}, "id = ?", id).Error
}

func (r *TimeEntryRepository) applyFilters(query *gorm.DB, filter TimeEntryFilter) *gorm.DB {
	if filter.CaseID != nil {
		query = query.Where("case_id = ?", *filter.CaseID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Billable != nil {
		query = query.Where("billable = ?", *filter.Billable)
	}
	if filter.From != nil {
		query = query.Where("worked_on >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("worked_on <= ?", *filter.To)
	}
	return query
}
