package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// PermissionCheck names one required capability as a structured triple.
// Callers always pass the parts; names are derived, never parsed.
type PermissionCheck struct {
	Resource   string
	Action     string
	Context    string
	ResourceID string
}

// Name derives the catalog name for the check.
func (c PermissionCheck) Name() string {
	return models.PermissionName(c.Resource, c.Action, c.Context)
}

// RequestMeta carries HTTP request details into audit entries. Nil outside
// request handling. Payload is the decoded JSON body, if any; it is
// sanitized before it reaches an audit row.
type RequestMeta struct {
	Method    string
	Path      string
	IPAddress string
	RequestID string
	Payload   map[string]interface{}
}

// PermissionService evaluates permission checks against the caller's
// membership, roles and direct grants. Every evaluation writes one audit
// entry; auditing is mandatory but an audit failure never changes the
// decision already made.
type PermissionService struct {
	rbac    *repository.RBACRepository
	tenants *repository.TenantRepository
	audit   AuditRecorder
	store   *tenantctx.Store
	logger  *logrus.Logger
	now     func() time.Time
}

// NewPermissionService creates a new permission service
func NewPermissionService(
	rbac *repository.RBACRepository,
	tenants *repository.TenantRepository,
	audit AuditRecorder,
	store *tenantctx.Store,
	logger *logrus.Logger,
) *PermissionService {
	return &PermissionService{
		rbac:    rbac,
		tenants: tenants,
		audit:   audit,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// RequireAll evaluates every check and fails unless all of them are granted.
func (s *PermissionService) RequireAll(ctx context.Context, meta *RequestMeta, checks ...PermissionCheck) error {
	return s.require(ctx, meta, true, checks)
}

// RequireAny evaluates checks in order and succeeds at the first grant.
func (s *PermissionService) RequireAny(ctx context.Context, meta *RequestMeta, checks ...PermissionCheck) error {
	return s.require(ctx, meta, false, checks)
}

func (s *PermissionService) require(ctx context.Context, meta *RequestMeta, all bool, checks []PermissionCheck) error {
	if len(checks) == 0 {
		return nil
	}

	eval, err := s.newEvaluation(ctx)
	if err != nil {
		return err
	}

	required := make([]string, 0, len(checks))
	for _, check := range checks {
		required = append(required, check.Name())
	}

	anyGranted := false
	allGranted := true
	for _, check := range checks {
		granted, reason := eval.decide(check)
		s.recordDecision(ctx, eval, meta, check, granted, reason)
		if granted {
			anyGranted = true
			if !all {
				return nil
			}
		} else {
			allGranted = false
		}
	}

	if all && allGranted {
		return nil
	}
	if !all && anyGranted {
		return nil
	}
	return &PermissionDeniedError{Required: required}
}

// Check evaluates a single permission and returns the decision without
// failing. Still audited.
func (s *PermissionService) Check(ctx context.Context, meta *RequestMeta, check PermissionCheck) (bool, error) {
	eval, err := s.newEvaluation(ctx)
	if err != nil {
		return false, err
	}
	granted, reason := eval.decide(check)
	s.recordDecision(ctx, eval, meta, check, granted, reason)
	return granted, nil
}

// evaluation is the per-call snapshot of the caller's grants: direct member
// permissions plus the permission bundle of the membership role. Loaded once
// even when several checks are evaluated together.
type evaluation struct {
	tc         *tenantctx.Context
	membership *models.TenantMembership
	direct     []models.MemberPermission
	rolePerms  map[string]struct{}
	now        time.Time
}

func (s *PermissionService) newEvaluation(ctx context.Context) (*evaluation, error) {
	tc, err := s.store.Require(ctx)
	if err != nil {
		return nil, err
	}

	eval := &evaluation{tc: tc, now: s.now()}

	if tc.UserID == nil {
		return eval, nil
	}

	membership := tc.Membership
	if membership == nil {
		membership, err = s.tenants.GetMembership(ctx, tc.TenantID, *tc.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load membership: %w", err)
		}
	}
	eval.membership = membership
	if membership == nil || !membership.IsActive {
		return eval, nil
	}

	eval.direct, err = s.rbac.ListMemberPermissions(ctx, *tc.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load member permissions: %w", err)
	}

	eval.rolePerms = map[string]struct{}{}
	if membership.Role != models.RoleOwner {
		role, err := s.rbac.GetRoleByName(ctx, membership.Role)
		if err != nil {
			return nil, fmt.Errorf("failed to load role %q: %w", membership.Role, err)
		}
		if role != nil {
			for _, p := range role.Permissions {
				eval.rolePerms[p.Name] = struct{}{}
			}
		}
	}
	return eval, nil
}

// decide applies the precedence rules: unauthenticated and non-members are
// always denied; a direct non-expired denial beats everything; then direct
// grants; owners hold every permission; finally the role bundle.
func (e *evaluation) decide(check PermissionCheck) (bool, string) {
	if e.tc.UserID == nil {
		return false, "no authenticated user"
	}
	if e.membership == nil || !e.membership.IsActive {
		return false, "no active membership in tenant"
	}

	name := check.Name()
	for i := range e.direct {
		mp := &e.direct[i]
		if mp.Permission == nil || mp.Permission.Name != name {
			continue
		}
		if mp.Expired(e.now) {
			continue
		}
		if !mp.Granted {
			return false, "denied by direct member permission"
		}
		return true, "granted by direct member permission"
	}

	if e.membership.Role == models.RoleOwner {
		return true, "granted by owner role"
	}
	if _, ok := e.rolePerms[name]; ok {
		return true, fmt.Sprintf("granted by role %q", e.membership.Role)
	}
	return false, "no matching grant"
}

func (s *PermissionService) recordDecision(ctx context.Context, eval *evaluation, meta *RequestMeta, check PermissionCheck, granted bool, reason string) {
	result := models.ResultDenied
	if granted {
		result = models.ResultGranted
	}

	entry := &models.AuditLog{
		TenantID:   eval.tc.TenantID,
		UserID:     eval.tc.UserID,
		Resource:   check.Resource,
		Action:     check.Action,
		Context:    check.Context,
		ResourceID: check.ResourceID,
		Result:     result,
		Reason:     reason,
	}
	if meta != nil {
		entry.Method = meta.Method
		entry.Path = meta.Path
		entry.IPAddress = meta.IPAddress
		entry.RequestID = meta.RequestID
		if meta.Payload != nil {
			if data, err := json.Marshal(Sanitize(meta.Payload)); err == nil {
				entry.RequestData = datatypes.JSON(data)
			}
		}
	}

	s.audit.RecordDecision(ctx, entry)

	if !granted {
		s.logger.WithFields(logrus.Fields{
			"tenant_id":  eval.tc.TenantID,
			"user_id":    eval.tc.UserID,
			"permission": check.Name(),
			"reason":     reason,
		}).Debug("Permission denied")
	}
}
