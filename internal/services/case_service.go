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

// CaseService handles business logic for cases and their timeline.
type CaseService struct {
	repo    *repository.CaseRepository
	clients *repository.ClientRepository
	audit   *AuditService
	store   *tenantctx.Store
	logger  *logrus.Logger
}

// NewCaseService creates a new case service
func NewCaseService(repo *repository.CaseRepository, clients *repository.ClientRepository, audit *AuditService, store *tenantctx.Store, logger *logrus.Logger) *CaseService {
	return &CaseService{
		repo:    repo,
		clients: clients,
		audit:   audit,
		store:   store,
		logger:  logger,
	}
}

// Open creates a new case for an existing client of the same tenant and
// appends the opening timeline event.
func (s *CaseService) Open(ctx context.Context, c *models.Case, meta *RequestMeta) (*models.Case, error) {
	c.Title = strings.TrimSpace(c.Title)
	if len(c.Title) < 2 {
		return nil, NewValidationError("title", "must be at least 2 characters")
	}

	client, err := s.clients.GetByID(ctx, c.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, NewValidationError("client_id", "client does not exist")
	}

	if c.Status == "" {
		c.Status = models.CaseStatusOpen
	}
	if c.OpenedAt.IsZero() {
		c.OpenedAt = time.Now()
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	event := &models.CaseEvent{
		CaseID:      c.ID,
		EventType:   "case_opened",
		Description: "Case opened",
		OccurredAt:  c.OpenedAt,
	}
	if tc, ok := s.store.Current(ctx); ok {
		event.CreatedBy = tc.UserID
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		s.logger.WithError(err).WithField("case_id", c.ID).Warn("Failed to append opening event")
	}

	s.logAction(ctx, meta, "create", c.ID, map[string]interface{}{
		"title":     c.Title,
		"client_id": c.ClientID.String(),
	})
	return c, nil
}

// Get returns one of the active tenant's cases.
func (s *CaseService) Get(ctx context.Context, id uuid.UUID, preloads ...string) (*models.Case, error) {
	c, err := s.repo.GetByID(ctx, id, preloads...)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrRecordNotFound
	}
	return c, nil
}

// List returns the active tenant's cases.
func (s *CaseService) List(ctx context.Context, filter repository.CaseFilter) ([]models.Case, int64, error) {
	return s.repo.List(ctx, filter)
}

// Update persists case changes.
func (s *CaseService) Update(ctx context.Context, id uuid.UUID, apply func(*models.Case) error, meta *RequestMeta) (*models.Case, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(c); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.logAction(ctx, meta, "update", c.ID, nil)
	return c, nil
}

// Close marks a case closed and appends the closing timeline event.
func (s *CaseService) Close(ctx context.Context, id uuid.UUID, meta *RequestMeta) (*models.Case, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == models.CaseStatusClosed {
		return nil, NewConflictError("case", "case is already closed")
	}

	now := time.Now()
	c.Status = models.CaseStatusClosed
	c.ClosedAt = &now
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	event := &models.CaseEvent{
		CaseID:      c.ID,
		EventType:   "case_closed",
		Description: "Case closed",
		OccurredAt:  now,
	}
	if tc, ok := s.store.Current(ctx); ok {
		event.CreatedBy = tc.UserID
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		s.logger.WithError(err).WithField("case_id", c.ID).Warn("Failed to append closing event")
	}

	s.logAction(ctx, meta, "close", c.ID, nil)
	return c, nil
}

// AddEvent appends a timeline event to a case.
func (s *CaseService) AddEvent(ctx context.Context, caseID uuid.UUID, event *models.CaseEvent) (*models.CaseEvent, error) {
	if event.EventType == "" {
		return nil, NewValidationError("event_type", "is required")
	}

	if _, err := s.Get(ctx, caseID); err != nil {
		return nil, err
	}

	event.CaseID = caseID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if tc, ok := s.store.Current(ctx); ok && event.CreatedBy == nil {
		event.CreatedBy = tc.UserID
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Timeline lists a case's events, newest first.
func (s *CaseService) Timeline(ctx context.Context, caseID uuid.UUID, page repository.Pagination) ([]models.CaseEvent, int64, error) {
	if _, err := s.Get(ctx, caseID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListEvents(ctx, caseID, page)
}

func (s *CaseService) logAction(ctx context.Context, meta *RequestMeta, action string, resourceID uuid.UUID, payload map[string]interface{}) {
	tc, ok := s.store.Current(ctx)
	if !ok {
		return
	}
	entry := &models.AuditLog{
		TenantID:   tc.TenantID,
		UserID:     tc.UserID,
		Resource:   "cases",
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
		s.logger.WithError(err).Warn("Failed to audit case action")
	}
}
