package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// ClientFilter represents filter criteria for listing clients
type ClientFilter struct {
	Status string
	Search string
	Pagination
}

// ClientRepository handles database operations for clients. All queries run
// through the tenant scope; the CrossTenant/ForTenant variants are the
// explicit administrative bypasses.
type ClientRepository struct {
	scope TenantScope
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB, store *tenantctx.Store) *ClientRepository {
	return &ClientRepository{scope: NewTenantScope(db, store)}
}

// Create persists a new client stamped with the active tenant.
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if err := r.scope.Stamp(ctx, client); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Create(client).Error
}

// GetByID retrieves one of the active tenant's clients.
func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	err := r.scope.Scoped(ctx).First(&client, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

// List returns the active tenant's clients with filtering and pagination.
func (r *ClientRepository) List(ctx context.Context, filter ClientFilter) ([]models.Client, int64, error) {
	var clients []models.Client
	var total int64

	query := r.scope.Scoped(ctx).Model(&models.Client{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("name ASC").
		Limit(filter.Limit()).
		Offset(filter.Offset()).
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

// Update persists changes to a client after verifying tenant ownership.
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	if err := r.scope.EnsureOwnership(ctx, client); err != nil {
		return err
	}
	return r.scope.DB().WithContext(ctx).Save(client).Error
}

// Delete removes one of the active tenant's clients.
func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.scope.Scoped(ctx).Delete(&models.Client{}, "id = ?", id).Error
}

// GetByIDCrossTenant retrieves a client by id with no tenant predicate.
// Administrative escape hatch; normal handlers must use GetByID.
func (r *ClientRepository) GetByIDCrossTenant(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	err := r.scope.CrossTenant(ctx).First(&client, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

// ListForTenant lists an explicit tenant's clients regardless of the active
// context. Administrative escape hatch.
func (r *ClientRepository) ListForTenant(ctx context.Context, tenantID uuid.UUID, filter ClientFilter) ([]models.Client, int64, error) {
	var clients []models.Client
	var total int64

	query := r.scope.ForTenant(ctx, tenantID).Model(&models.Client{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("name ASC").
		Limit(filter.Limit()).
		Offset(filter.Offset()).
		Find(&clients).Error
	if err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}
