package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// DocumentFilter represents filter criteria for listing documents
type DocumentFilter struct {
	CaseID   *uuid.UUID
	ClientID *uuid.UUID
	Search   string
	Pagination
}

// DocumentRepository handles database operations for document metadata.
type DocumentRepository struct {
	scope TenantScope
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *gorm.DB, store *tenantctx.Store) *DocumentRepository {
	return &DocumentRepository{scope: NewTenantScope(db, store)}
}

// Create persists document metadata stamped with the active tenant.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if err := r.scope.Stamp(ctx, doc); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Create(doc).Error
}

// GetByID retrieves one of the active tenant's documents.
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := r.scope.Scoped(ctx).First(&doc, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// List returns the active tenant's documents with filtering and pagination.
func (r *DocumentRepository) List(ctx context.Context, filter DocumentFilter) ([]models.Document, int64, error) {
	var docs []models.Document
	var total int64

	query := r.scope.Scoped(ctx).Model(&models.Document{})
	if filter.CaseID != nil {
		query = query.Where("case_id = ?", *filter.CaseID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR file_name LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Limit(filter.Limit()).
		Offset(filter.Offset()).
		Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Update persists changes to document metadata after verifying ownership.
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	if err := r.scope.EnsureOwnership(ctx, doc); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Save(doc).Error
}

// Delete removes one of the active tenant's documents.
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.scope.Scoped(ctx).Delete(&models.Document{}, "id = ?", id).Error
}

// ListForTenant lists an explicit tenant's documents regardless of the active
// context. Administrative escape hatch.
func (r *DocumentRepository) ListForTenant(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) ([]models.Document, int64, error) {
	var docs []models.Document
	var total int64

	query := r.scope.ForTenant(ctx, tenantID).Model(&models.Document{})
	if filter.CaseID != nil {
		query = query.Where("case_id = ?", *filter.CaseID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Limit(filter.Limit()).
		Offset(filter.Offset()).
		Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}
