package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

type capturingRecorder struct {
	entries []*models.AuditLog
}

func (r *capturingRecorder) RecordDecision(ctx context.Context, entry *models.AuditLog) {
	r.entries = append(r.entries, entry)
}

// brokenRecorder simulates an audit store outage: nothing is persisted.
type brokenRecorder struct{}

func (brokenRecorder) RecordDecision(ctx context.Context, entry *models.AuditLog) {}

type permFixture struct {
	db       *gorm.DB
	store    *tenantctx.Store
	rbac     *repository.RBACRepository
	tenants  *repository.TenantRepository
	recorder *capturingRecorder
	svc      *PermissionService

	tenantID uuid.UUID
	userID   uuid.UUID
}

func newPermFixture(t *testing.T, role string) *permFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.TenantMembership{},
		&models.Permission{},
		&models.Role{},
		&models.MemberPermission{},
		&models.AuditLog{},
	))

	store := tenantctx.NewStore()
	f := &permFixture{
		db:       db,
		store:    store,
		rbac:     repository.NewRBACRepository(db, store),
		tenants:  repository.NewTenantRepository(db),
		recorder: &capturingRecorder{},
		tenantID: uuid.New(),
		userID:   uuid.New(),
	}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	f.svc = NewPermissionService(f.rbac, f.tenants, f.recorder, store, log)

	membership := &models.TenantMembership{
		TenantID: f.tenantID,
		UserID:   f.userID,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(membership).Error)
	return f
}

func (f *permFixture) ctx() context.Context {
	return f.store.Bind(context.Background(), &tenantctx.Context{
		TenantID: f.tenantID,
		UserID:   &f.userID,
	})
}

func (f *permFixture) seedRolePermission(t *testing.T, roleName, resource, action string) *models.Permission {
	t.Helper()
	ctx := f.ctx()

	perm := &models.Permission{Resource: resource, Action: action}
	require.NoError(t, f.rbac.EnsurePermission(ctx, perm))

	role, err := f.rbac.GetRoleByName(ctx, roleName)
	require.NoError(t, err)
	if role == nil {
		role = &models.Role{Name: roleName}
		require.NoError(t, f.rbac.CreateRole(ctx, role))
	}
	perms := append(role.Permissions, *perm)
	require.NoError(t, f.rbac.ReplaceRolePermissions(ctx, role, perms))
	return perm
}

func (f *permFixture) seedDirect(t *testing.T, resource, action string, granted bool, expiresAt *time.Time) {
	t.Helper()
	ctx := f.ctx()

	perm := &models.Permission{Resource: resource, Action: action}
	require.NoError(t, f.rbac.EnsurePermission(ctx, perm))
	require.NoError(t, f.rbac.CreateMemberPermission(ctx, &models.MemberPermission{
		UserID:       f.userID,
		PermissionID: perm.ID,
		Granted:      granted,
		ExpiresAt:    expiresAt,
	}))
}

func TestOwnerHoldsEveryPermission(t *testing.T) {
	f := newPermFixture(t, models.RoleOwner)

	err := f.svc.RequireAll(f.ctx(), nil,
		PermissionCheck{Resource: "cases", Action: "delete"},
		PermissionCheck{Resource: "documents", Action: "read"},
	)
	assert.NoError(t, err)
}

func TestRoleBundleGrants(t *testing.T) {
	f := newPermFixture(t, models.RoleLawyer)
	f.seedRolePermission(t, models.RoleLawyer, "cases", "read")

	assert.NoError(t, f.svc.RequireAll(f.ctx(), nil, PermissionCheck{Resource: "cases", Action: "read"}))

	err := f.svc.RequireAll(f.ctx(), nil, PermissionCheck{Resource: "cases", Action: "delete"})
	denied, ok := IsPermissionDenied(err)
	require.True(t, ok)
	assert.Equal(t, []string{"cases:delete"}, denied.Required)
}

func TestDirectGrantWithoutRole(t *testing.T) {
	f := newPermFixture(t, models.RoleAssistant)
	f.seedDirect(t, "documents", "read", true, nil)

	assert.NoError(t, f.svc.RequireAll(f.ctx(), nil, PermissionCheck{Resource: "documents", Action: "read"}))
}

func TestDirectDenialOverridesRoleGrant(t *testing.T) {
	f := newPermFixture(t, models.RoleLawyer)
	f.seedRolePermission(t, models.RoleLawyer, "cases", "read")
	f.seedDirect(t, "cases", "read", false, nil)

	err := f.svc.RequireAll(f.ctx(), nil, PermissionCheck{Resource: "cases", Action: "read"})
	_, ok := IsPermissionDenied(err)
	assert.True(t, ok)

	last := f.recorder.entries[len(f.recorder.entries)-1]
	assert.Equal(t, models.ResultDenied, last.Result)
	assert.Equal(t, "denied by direct member permission", last.Reason)
}

func TestExpiredDirectGrantIsIgnored(t *testing.T) {
	f := newPermFixture(t, models.RoleAssistant)
	past := time.Now().Add(-time.Hour)
	f.seedDirect(t, "cases", "read", true, &past)

	err := f.svc.RequireAll(f.ctx(), nil, PermissionCheck{Resource: "cases", Action: "read"})
	_, ok := IsPermissionDenied(err)
	assert.True(t, ok)
}

func TestExpiredDirectDenialFallsThroughToRole(t *testing.T) {
	f := newPermFixture(t, models.RoleLawyer)
	f.seedRolePermission(t, models.RoleLawyer, "cases", "read")
	past := time.Now().Add(-time.Hour)
	f.seedDirect(t, "cases", "read", false, &past)

	assert.NoError(t, f.svc.RequireAll(f.ctx(), nil, PermissionCheck{Resource: "cases", Action: "read"}))
}

func TestRequireAnySucceedsOnFirstGrant(t *testing.T) {
	f := newPermFixture(t, models.RoleLawyer)
	f.seedRolePermission(t, models.RoleLawyer, "cases", "update")

	err := f.svc.RequireAny(f.ctx(), nil,
		PermissionCheck{Resource: "cases", Action: "update"},
		PermissionCheck{Resource: "cases", Action: "delete"},
	)
	assert.NoError(t, err)
	// Short-circuits after the first grant, so exactly one audited decision.
	assert.Len(t, f.recorder.entries, 1)
}

func TestRequireAnyFailsWhenNothingMatches(t *testing.T) {
	f := newPermFixture(t, models.RoleAssistant)

	err := f.svc.RequireAny(f.ctx(), nil,
		PermissionCheck{Resource: "cases", Action: "update"},
		PermissionCheck{Resource: "cases", Action: "delete"},
	)
	denied, ok := IsPermissionDenied(err)
	require.True(t, ok)
	assert.Equal(t, []string{"cases:update", "cases:delete"}, denied.Required)
	assert.Len(t, f.recorder.entries, 2)
}

func TestEveryEvaluationIsAudited(t *testing.T) {
	f := newPermFixture(t, models.RoleLawyer)
	f.seedRolePermission(t, models.RoleLawyer, "cases", "read")

	meta := &RequestMeta{Method: "GET", Path: "/api/v1/cases", IPAddress: "10.0.0.7", RequestID: "req-123"}
	err := f.svc.RequireAll(f.ctx(), meta,
		PermissionCheck{Resource: "cases", Action: "read", ResourceID: "case-1"},
		PermissionCheck{Resource: "cases", Action: "delete"},
	)
	_, ok := IsPermissionDenied(err)
	require.True(t, ok)

	require.Len(t, f.recorder.entries, 2)

	granted := f.recorder.entries[0]
	assert.Equal(t, models.ResultGranted, granted.Result)
	assert.Equal(t, "cases", granted.Resource)
	assert.Equal(t, "read", granted.Action)
	assert.Equal(t, "case-1", granted.ResourceID)
	assert.Equal(t, "GET", granted.Method)
	assert.Equal(t, "req-123", granted.RequestID)
	assert.Equal(t, f.tenantID, granted.TenantID)
	require.NotNil(t, granted.UserID)
	assert.Equal(t, f.userID, *granted.UserID)

	deniedEntry := f.recorder.entries[1]
	assert.Equal(t, models.ResultDenied, deniedEntry.Result)
	assert.Equal(t, "no matching grant", deniedEntry.Reason)
}

func TestDecisionAuditCarriesSanitizedPayload(t *testing.T) {
	f := newPermFixture(t, models.RoleOwner)

	meta := &RequestMeta{
		Method: "POST",
		Path:   "/api/v1/clients",
		Payload: map[string]interface{}{
			"name":     "Jane Doe",
			"password": "hunter2",
			"profile":  map[string]interface{}{"access_token": "abc123"},
		},
	}
	require.NoError(t, f.svc.RequireAll(f.ctx(), meta, PermissionCheck{Resource: "clients", Action: "create"}))

	require.Len(t, f.recorder.entries, 1)
	raw := f.recorder.entries[0].RequestData
	require.NotEmpty(t, raw)

	var snapshot map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Equal(t, "Jane Doe", snapshot["name"])
	assert.Equal(t, RedactedValue, snapshot["password"])
	profile, ok := snapshot["profile"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, RedactedValue, profile["access_token"])
	assert.NotContains(t, string(raw), "hunter2")
	assert.NotContains(t, string(raw), "abc123")
}

func TestAuditOutageNeverFlipsDecision(t *testing.T) {
	f := newPermFixture(t, models.RoleOwner)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := NewPermissionService(f.rbac, f.tenants, brokenRecorder{}, f.store, log)

	assert.NoError(t, svc.RequireAll(f.ctx(), nil, PermissionCheck{Resource: "cases", Action: "delete"}))
}

func TestMissingTenantContextFailsFast(t *testing.T) {
	f := newPermFixture(t, models.RoleOwner)

	err := f.svc.RequireAll(context.Background(), nil, PermissionCheck{Resource: "cases", Action: "read"})
	assert.ErrorIs(t, err, tenantctx.ErrMissingTenantContext)
	assert.Empty(t, f.recorder.entries)
}

func TestUnauthenticatedCallerIsDenied(t *testing.T) {
	f := newPermFixture(t, models.RoleOwner)
	ctx := f.store.Bind(context.Background(), &tenantctx.Context{TenantID: f.tenantID})

	err := f.svc.RequireAll(ctx, nil, PermissionCheck{Resource: "cases", Action: "read"})
	_, ok := IsPermissionDenied(err)
	assert.True(t, ok)

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, "no authenticated user", f.recorder.entries[0].Reason)
}

func TestInactiveMembershipIsDenied(t *testing.T) {
	f := newPermFixture(t, models.RoleOwner)
	require.NoError(t, f.db.Model(&models.TenantMembership{}).
		Where("tenant_id = ? AND user_id = ?", f.tenantID, f.userID).
		Update("is_active", false).Error)

	err := f.svc.RequireAll(f.ctx(), nil, PermissionCheck{Resource: "cases", Action: "read"})
	_, ok := IsPermissionDenied(err)
	assert.True(t, ok)

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, "no active membership in tenant", f.recorder.entries[0].Reason)
}

func TestMembershipOfOtherTenantDoesNotCount(t *testing.T) {
	f := newPermFixture(t, models.RoleOwner)
	otherTenant := uuid.New()
	ctx := f.store.Bind(context.Background(), &tenantctx.Context{
		TenantID: otherTenant,
		UserID:   &f.userID,
	})

	err := f.svc.RequireAll(ctx, nil, PermissionCheck{Resource: "cases", Action: "read"})
	_, ok := IsPermissionDenied(err)
	assert.True(t, ok)
}
