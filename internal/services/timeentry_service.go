package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// TimeEntryService handles business logic for logged work.
type TimeEntryService struct {
	repo   *repository.TimeEntryRepository
	cases  *repository.CaseRepository
	store  *tenantctx.Store
	logger *logrus.Logger
}

// NewTimeEntryService creates a new time entry service
func NewTimeEntryService(repo *repository.TimeEntryRepository, cases *repository.CaseRepository, store *tenantctx.Store, logger *logrus.Logger) *TimeEntryService {
	return &TimeEntryService{
		repo:   repo,
		cases:  cases,
		store:  store,
		logger: logger,
	}
}

// Log validates and persists a time entry on an existing case. The entry is
// attributed to the authenticated user unless one was set explicitly.
func (s *TimeEntryService) Log(ctx context.Context, entry *models.TimeEntry) (*models.TimeEntry, error) {
	if entry.Minutes < 1 {
		return nil, NewValidationError("minutes", "must be at least 1")
	}

	c, err := s.cases.GetByID(ctx, entry.CaseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, NewValidationError("case_id", "case does not exist")
	}

	if entry.UserID == uuid.Nil {
		if tc, ok := s.store.Current(ctx); ok && tc.UserID != nil {
			entry.UserID = *tc.UserID
		}
	}
	if entry.UserID == uuid.Nil {
		return nil, NewValidationError("user_id", "is required")
	}
	if entry.WorkedOn.IsZero() {
		entry.WorkedOn = time.Now()
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Get returns one of the active tenant's time entries.
func (s *TimeEntryService) Get(ctx context.Context, id uuid.UUID) (*models.TimeEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrRecordNotFound
	}
	return entry, nil
}

// List returns the active tenant's time entries.
func (s *TimeEntryService) List(ctx context.Context, filter repository.TimeEntryFilter) ([]models.TimeEntry, int64, error) {
	return s.repo.List(ctx, filter)
}

// Summarize aggregates logged minutes for billing views.
func (s *TimeEntryService) Summarize(ctx context.Context, filter repository.TimeEntryFilter) (*repository.TimeEntrySummary, error) {
	return s.repo.Summarize(ctx, filter)
}

// Update persists time entry changes.
func (s *TimeEntryService) Update(ctx context.Context, id uuid.UUID, apply func(*models.TimeEntry) error) (*models.TimeEntry, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(entry); err != nil {
		return nil, err
	}
	if entry.Minutes < 1 {
		return nil, NewValidationError("minutes", "must be at least 1")
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes a time entry.
func (s *TimeEntryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
