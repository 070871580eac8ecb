package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

var validRoles = map[string]bool{
	models.RoleOwner:     true,
	models.RoleAdmin:     true,
	models.RoleLawyer:    true,
	models.RoleAssistant: true,
}

// InviteRequest invites a person into the active tenant.
type InviteRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" binding:"required"`
}

// MembershipService manages the members of the active tenant.
type MembershipService struct {
	repo   *repository.TenantRepository
	store  *tenantctx.Store
	logger *logrus.Logger
}

// NewMembershipService creates a new membership service
func NewMembershipService(repo *repository.TenantRepository, store *tenantctx.Store, logger *logrus.Logger) *MembershipService {
	return &MembershipService{
		repo:   repo,
		store:  store,
		logger: logger,
	}
}

// Invite adds a user to the active tenant, creating the account when the
// email is new. Existing active members cannot be invited twice.
func (s *MembershipService) Invite(ctx context.Context, req *InviteRequest) (*models.TenantMembership, error) {
	tenantID, err := s.store.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	if !validRoles[req.Role] {
		return nil, NewValidationError("role", "must be one of owner, admin, lawyer, assistant")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{
			Email:     email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			IsActive:  true,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.GetMembership(ctx, tenantID, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.IsActive {
			return nil, NewConflictError("membership", "user is already a member of this tenant")
		}
		existing.IsActive = true
		existing.Role = req.Role
		if err := s.repo.UpdateMembership(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	now := time.Now()
	membership := &models.TenantMembership{
		TenantID:  tenantID,
		UserID:    user.ID,
		Role:      req.Role,
		IsActive:  true,
		InvitedAt: &now,
	}
	if err := s.repo.CreateMembership(ctx, membership); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"user_id":   user.ID,
		"role":      req.Role,
	}).Info("Member invited")
	return membership, nil
}

// List returns every membership of the active tenant.
func (s *MembershipService) List(ctx context.Context) ([]models.TenantMembership, error) {
	tenantID, err := s.store.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMemberships(ctx, tenantID)
}

// ChangeRole updates a member's role. The last owner cannot be demoted.
func (s *MembershipService) ChangeRole(ctx context.Context, userID uuid.UUID, role string) (*models.TenantMembership, error) {
	tenantID, err := s.store.RequireTenantID(ctx)
	if err != nil {
		return nil, err
	}
	if !validRoles[role] {
		return nil, NewValidationError("role", "must be one of owner, admin, lawyer, assistant")
	}

	membership, err := s.repo.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, ErrRecordNotFound
	}

	if membership.Role == models.RoleOwner && role != models.RoleOwner {
		if err := s.ensureNotLastOwner(ctx, tenantID, userID); err != nil {
			return nil, err
		}
	}

	membership.Role = role
	if err := s.repo.UpdateMembership(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// Deactivate soft-removes a member from the tenant. The last owner cannot be
// deactivated.
func (s *MembershipService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	tenantID, err := s.store.RequireTenantID(ctx)
	if err != nil {
		return err
	}

	membership, err := s.repo.GetMembership(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if membership == nil || !membership.IsActive {
		return ErrRecordNotFound
	}

	if membership.Role == models.RoleOwner {
		if err := s.ensureNotLastOwner(ctx, tenantID, userID); err != nil {
			return err
		}
	}

	membership.IsActive = false
	if err := s.repo.UpdateMembership(ctx, membership); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"user_id":   userID,
	}).Info("Member deactivated")
	return nil
}

func (s *MembershipService) ensureNotLastOwner(ctx context.Context, tenantID, userID uuid.UUID) error {
	memberships, err := s.repo.ListMemberships(ctx, tenantID)
	if err != nil {
		return err
	}
	for _, m := range memberships {
		if m.UserID != userID && m.Role == models.RoleOwner && m.IsActive {
			return nil
		}
	}
	return NewConflictError("membership", fmt.Sprintf("user %s is the last active owner", userID))
}
