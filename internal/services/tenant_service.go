package services

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/cache"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{1,61}[a-z0-9])?$`)

// reservedSubdomains can never be claimed by a tenant.
var reservedSubdomains = map[string]bool{
	"www":   true,
	"api":   true,
	"admin": true,
	"app":   true,
	"mail":  true,
}

// ResolutionInput carries the request attributes tenant resolution considers,
// in precedence order: explicit header, then host subdomain, then the
// authenticated user's first active membership.
type ResolutionInput struct {
	HeaderTenantID string
	Host           string
	UserID         *uuid.UUID
}

// SignupRequest creates a firm together with its owner account.
type SignupRequest struct {
	FirmName  string `json:"firm_name" binding:"required,min=2,max=255"`
	Subdomain string `json:"subdomain" binding:"required,min=3,max=63"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// TenantService handles tenant lifecycle and per-request tenant resolution.
type TenantService struct {
	repo   *repository.TenantRepository
	cache  *cache.TenantCache
	logger *logrus.Logger
	db     *gorm.DB
}

// NewTenantService creates a new tenant service
func NewTenantService(db *gorm.DB, repo *repository.TenantRepository, tenantCache *cache.TenantCache, logger *logrus.Logger) *TenantService {
	return &TenantService{
		repo:   repo,
		cache:  tenantCache,
		logger: logger,
		db:     db,
	}
}

// Resolve determines the tenant for one request. An explicit X-Tenant-ID
// header wins, then the host subdomain, then the authenticated user's first
// active membership. Authenticated callers must additionally hold an active
// membership in whatever tenant was resolved.
func (s *TenantService) Resolve(ctx context.Context, input ResolutionInput) (*tenantctx.Context, error) {
	tenant, membership, err := s.resolveTenant(ctx, input)
	if err != nil {
		return nil, err
	}

	if input.UserID != nil && membership == nil {
		membership, err = s.repo.GetMembership(ctx, tenant.ID, *input.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load membership: %w", err)
		}
		if membership == nil || !membership.IsActive {
			return nil, ErrMembershipForbidden
		}
	}

	return &tenantctx.Context{
		TenantID:   tenant.ID,
		Tenant:     tenant,
		UserID:     input.UserID,
		Membership: membership,
	}, nil
}

func (s *TenantService) resolveTenant(ctx context.Context, input ResolutionInput) (*models.Tenant, *models.TenantMembership, error) {
	if raw := strings.TrimSpace(input.HeaderTenantID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, nil, ErrTenantNotFound
		}
		tenant, err := s.repo.GetTenantByID(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if tenant == nil || !tenant.IsActive {
			return nil, nil, ErrTenantNotFound
		}
		return tenant, nil, nil
	}

	if subdomain := ExtractSubdomain(input.Host); subdomain != "" {
		tenant, err := s.lookupBySubdomain(ctx, subdomain)
		if err != nil {
			return nil, nil, err
		}
		if tenant == nil || !tenant.IsActive {
			return nil, nil, ErrTenantNotFound
		}
		return tenant, nil, nil
	}

	if input.UserID != nil {
		membership, err := s.repo.FirstActiveMembership(ctx, *input.UserID)
		if err != nil {
			return nil, nil, err
		}
		if membership != nil && membership.Tenant != nil && membership.Tenant.IsActive {
			return membership.Tenant, membership, nil
		}
	}

	return nil, nil, ErrTenantRequired
}

func (s *TenantService) lookupBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	if s.cache != nil {
		if tenant, err := s.cache.GetBySubdomain(ctx, subdomain); err == nil {
			return tenant, nil
		}
	}

	tenant, err := s.repo.GetTenantBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	if tenant != nil && s.cache != nil {
		s.cache.Set(ctx, tenant)
	}
	return tenant, nil
}

// ExtractSubdomain pulls the tenant subdomain out of a request host. On
// development hosts (anything under localhost) one extra label is enough:
// "acme.localhost:3333" resolves to "acme". Elsewhere the host needs at
// least three labels, so "acme.example.com" resolves to "acme" but a bare
// "example.com" carries no subdomain.
func ExtractSubdomain(host string) string {
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)

	labels := strings.Split(host, ".")
	if strings.Contains(host, "localhost") {
		if len(labels) > 1 {
			return labels[0]
		}
		return ""
	}
	if len(labels) >= 3 {
		return labels[0]
	}
	return ""
}

// Signup provisions a firm: tenant, owner account and owner membership in one
// transaction.
func (s *TenantService) Signup(ctx context.Context, req *SignupRequest) (*models.Tenant, *models.User, error) {
	subdomain := strings.ToLower(strings.TrimSpace(req.Subdomain))
	if err := ValidateSubdomain(subdomain); err != nil {
		return nil, nil, err
	}

	exists, err := s.repo.ExistsBySubdomain(ctx, subdomain)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, NewConflictError("tenant", fmt.Sprintf("subdomain %q is already taken", subdomain))
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	tenant := &models.Tenant{
		Name:      strings.TrimSpace(req.FirmName),
		Subdomain: subdomain,
		Plan:      models.PlanFree,
		IsActive:  true,
	}

	user := existing
	now := time.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			return err
		}
		if user == nil {
			user = &models.User{
				Email:     email,
				FirstName: req.FirstName,
				LastName:  req.LastName,
				IsActive:  true,
			}
			if err := tx.Create(user).Error; err != nil {
				return err
			}
		}
		membership := &models.TenantMembership{
			TenantID: tenant.ID,
			UserID:   user.ID,
			Role:     models.RoleOwner,
			IsActive: true,
			JoinedAt: &now,
		}
		return tx.Create(membership).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("signup failed: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": tenant.ID,
		"subdomain": tenant.Subdomain,
		"owner_id":  user.ID,
	}).Info("Tenant provisioned")
	return tenant, user, nil
}

// GetTenant returns one tenant by id.
func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.repo.GetTenantByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	return tenant, nil
}

// UpdateTenant persists tenant changes and drops the cached resolution entry.
func (s *TenantService) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	if err := s.repo.UpdateTenant(ctx, tenant); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, tenant.Subdomain)
	}
	return nil
}

// Suspend soft-disables a tenant. Resolution refuses suspended tenants, so
// the cache entry is dropped immediately.
func (s *TenantService) Suspend(ctx context.Context, id uuid.UUID, reason string) error {
	tenant, err := s.repo.GetTenantByID(ctx, id)
	if err != nil {
		return err
	}
	if tenant == nil {
		return ErrTenantNotFound
	}
	if err := s.repo.SuspendTenant(ctx, id, reason); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, tenant.Subdomain)
	}
	s.logger.WithFields(logrus.Fields{
		"tenant_id": id,
		"reason":    reason,
	}).Warn("Tenant suspended")
	return nil
}

// ListTenants pages through all tenants. Administrative surface only.
func (s *TenantService) ListTenants(ctx context.Context, page repository.Pagination) ([]models.Tenant, int64, error) {
	return s.repo.ListTenants(ctx, page)
}

// ValidateSubdomain enforces the subdomain charset and the reserved list.
func ValidateSubdomain(subdomain string) error {
	if len(subdomain) < 3 || len(subdomain) > 63 {
		return NewValidationError("subdomain", "must be between 3 and 63 characters")
	}
	if !subdomainPattern.MatchString(subdomain) {
		return NewValidationError("subdomain", "must contain only lowercase letters, digits and hyphens")
	}
	if reservedSubdomains[subdomain] {
		return NewValidationError("subdomain", "is reserved")
	}
	return nil
}
