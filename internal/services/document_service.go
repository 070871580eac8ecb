package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// DocumentService handles business logic for document metadata. File bytes
// live in external storage; only the descriptor is managed here.
type DocumentService struct {
	repo   *repository.DocumentRepository
	cases  *repository.CaseRepository
	store  *tenantctx.Store
	logger *logrus.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(repo *repository.DocumentRepository, cases *repository.CaseRepository, store *tenantctx.Store, logger *logrus.Logger) *DocumentService {
	return &DocumentService{
		repo:   repo,
		cases:  cases,
		store:  store,
		logger: logger,
	}
}

// Register validates and persists document metadata.
func (s *DocumentService) Register(ctx context.Context, doc *models.Document) (*models.Document, error) {
	doc.Title = strings.TrimSpace(doc.Title)
	if doc.Title == "" {
		return nil, NewValidationError("title", "is required")
	}
	if doc.FileName == "" {
		return nil, NewValidationError("file_name", "is required")
	}
	if doc.StorageKey == "" {
		return nil, NewValidationError("storage_key", "is required")
	}

	if doc.CaseID != nil {
		c, err := s.cases.GetByID(ctx, *doc.CaseID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, NewValidationError("case_id", "case does not exist")
		}
	}

	if doc.UploadedBy == nil {
		if tc, ok := s.store.Current(ctx); ok {
			doc.UploadedBy = tc.UserID
		}
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Get returns one of the active tenant's documents.
func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrRecordNotFound
	}
	return doc, nil
}

// List returns the active tenant's documents.
func (s *DocumentService) List(ctx context.Context, filter repository.DocumentFilter) ([]models.Document, int64, error) {
	return s.repo.List(ctx, filter)
}

// Update persists document metadata changes.
func (s *DocumentService) Update(ctx context.Context, id uuid.UUID, apply func(*models.Document) error) (*models.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(doc); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes document metadata.
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
