package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
)

// DeadlineService handles business logic for case deadlines.
type DeadlineService struct {
	repo   *repository.DeadlineRepository
	cases  *repository.CaseRepository
	logger *logrus.Logger
}

// NewDeadlineService creates a new deadline service
func NewDeadlineService(repo *repository.DeadlineRepository, cases *repository.CaseRepository, logger *logrus.Logger) *DeadlineService {
	return &DeadlineService{
		repo:   repo,
		cases:  cases,
		logger: logger,
	}
}

// Create validates and persists a new deadline on an existing case.
func (s *DeadlineService) Create(ctx context.Context, d *models.Deadline) (*models.Deadline, error) {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return nil, NewValidationError("title", "is required")
	}
	if d.DueAt.IsZero() {
		return nil, NewValidationError("due_at", "is required")
	}

	c, err := s.cases.GetByID(ctx, d.CaseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, NewValidationError("case_id", "case does not exist")
	}

	if d.Status == "" {
		d.Status = models.DeadlineStatusPending
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Get returns one of the active tenant's deadlines.
func (s *DeadlineService) Get(ctx context.Context, id uuid.UUID) (*models.Deadline, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrRecordNotFound
	}
	return d, nil
}

// List returns the active tenant's deadlines.
func (s *DeadlineService) List(ctx context.Context, filter repository.DeadlineFilter) ([]models.Deadline, int64, error) {
	return s.repo.List(ctx, filter)
}

// Complete marks a pending deadline done.
func (s *DeadlineService) Complete(ctx context.Context, id uuid.UUID) (*models.Deadline, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status == models.DeadlineStatusDone {
		return nil, NewConflictError("deadline", "deadline is already done")
	}

	now := time.Now()
	d.Status = models.DeadlineStatusDone
	d.CompletedAt = &now
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Update persists deadline changes.
func (s *DeadlineService) Update(ctx context.Context, id uuid.UUID, apply func(*models.Deadline) error) (*models.Deadline, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(d); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes a deadline.
func (s *DeadlineService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SweepOverdue flips pending deadlines past their due date to missed. Runs
// from the scheduler across all tenants.
func (s *DeadlineService) SweepOverdue(ctx context.Context) (int64, error) {
	flipped, err := s.repo.MarkOverdueAsMissed(ctx, time.Now())
	if err != nil {
		s.logger.WithError(err).Error("Overdue deadline sweep failed")
		return 0, err
	}
	if flipped > 0 {
		s.logger.WithField("missed", flipped).Info("Marked overdue deadlines as missed")
	}
	return flipped, nil
}
