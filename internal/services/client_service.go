package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// ClientService handles business logic for clients.
type ClientService struct {
	repo   *repository.ClientRepository
	audit  *AuditService
	store  *tenantctx.Store
	logger *logrus.Logger
}

// NewClientService creates a new client service
func NewClientService(repo *repository.ClientRepository, audit *AuditService, store *tenantctx.Store, logger *logrus.Logger) *ClientService {
	return &ClientService{
		repo:   repo,
		audit:  audit,
		store:  store,
		logger: logger,
	}
}

// Create validates and persists a new client, then records the action.
func (s *ClientService) Create(ctx context.Context, client *models.Client, meta *RequestMeta) (*models.Client, error) {
	client.Name = strings.TrimSpace(client.Name)
	if len(client.Name) < 2 {
		return nil, NewValidationError("name", "must be at least 2 characters")
	}
	if client.ClientType == "" {
		client.ClientType = "person"
	}
	if client.Status == "" {
		client.Status = models.ClientStatusActive
	}

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}

	s.logAction(ctx, meta, "create", client.ID, map[string]interface{}{
		"name":        client.Name,
		"client_type": client.ClientType,
	})
	return client, nil
}

// Get returns one of the active tenant's clients.
func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrRecordNotFound
	}
	return client, nil
}

// List returns the active tenant's clients.
func (s *ClientService) List(ctx context.Context, filter repository.ClientFilter) ([]models.Client, int64, error) {
	return s.repo.List(ctx, filter)
}

// Update persists client changes.
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, apply func(*models.Client) error, meta *RequestMeta) (*models.Client, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(client); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}

	s.logAction(ctx, meta, "update", client.ID, nil)
	return client, nil
}

// Archive marks a client archived instead of deleting it.
func (s *ClientService) Archive(ctx context.Context, id uuid.UUID, meta *RequestMeta) (*models.Client, error) {
	return s.Update(ctx, id, func(c *models.Client) error {
		now := time.Now()
		c.Status = models.ClientStatusArchived
		c.ArchivedAt = &now
		return nil
	}, meta)
}

func (s *ClientService) logAction(ctx context.Context, meta *RequestMeta, action string, resourceID uuid.UUID, payload map[string]interface{}) {
	tc, ok := s.store.Current(ctx)
	if !ok {
		return
	}
	entry := &models.AuditLog{
		TenantID:   tc.TenantID,
		UserID:     tc.UserID,
		Resource:   "clients",
		Action:     action,
		ResourceID: resourceID.String(),
		Result:     models.ResultSuccess,
	}
	if meta != nil {
		entry.Method = meta.Method
		entry.Path = meta.Path
		entry.IPAddress = meta.IPAddress
		entry.RequestID = meta.RequestID
	}
	if err := s.audit.LogAction(ctx, entry, payload); err != nil {
		s.logger.WithError(err).Warn("Failed to audit client action")
	}
}
