package services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
)

func newTenantService(t *testing.T) (*TenantService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.TenantMembership{},
	))
	svc := NewTenantService(db, repository.NewTenantRepository(db), nil, quietLogger())
	return svc, db
}

func seedTenant(t *testing.T, db *gorm.DB, subdomain string, active bool) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{
		Name:      subdomain,
		Subdomain: subdomain,
		IsActive:  active,
	}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

func seedMember(t *testing.T, db *gorm.DB, tenantID uuid.UUID, role string, active bool) uuid.UUID {
	t.Helper()
	user := &models.User{Email: uuid.NewString() + "@example.com", IsActive: true}
	require.NoError(t, db.Create(user).Error)
	now := time.Now()
	membership := &models.TenantMembership{
		TenantID: tenantID,
		UserID:   user.ID,
		Role:     role,
		IsActive: active,
		JoinedAt: &now,
	}
	require.NoError(t, db.Create(membership).Error)
	if !active {
		// GORM replaces a zero value with the column's default:true on
		// create, so persist the flag with an explicit update.
		require.NoError(t, db.Model(membership).Update("is_active", false).Error)
	}
	return user.ID
}

func TestExtractSubdomain(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"acme.example.com", "acme"},
		{"acme.example.com:8080", "acme"},
		{"ACME.Example.com", "acme"},
		{"example.com", ""},
		{"acme.localhost", "acme"},
		{"acme.localhost:3333", "acme"},
		{"localhost:3333", ""},
		{"localhost", ""},
		{"deep.acme.example.com", "deep"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractSubdomain(tt.host), "host %q", tt.host)
	}
}

func TestValidateSubdomain(t *testing.T) {
	assert.NoError(t, ValidateSubdomain("acme"))
	assert.NoError(t, ValidateSubdomain("acme-law-42"))

	assert.Error(t, ValidateSubdomain("ab"))
	assert.Error(t, ValidateSubdomain("-acme"))
	assert.Error(t, ValidateSubdomain("acme-"))
	assert.Error(t, ValidateSubdomain("Acme"))
	assert.Error(t, ValidateSubdomain("www"))
	assert.Error(t, ValidateSubdomain("api"))
}

func TestResolvePrefersHeaderOverHost(t *testing.T) {
	svc, db := newTenantService(t)
	byHeader := seedTenant(t, db, "byheader", true)
	seedTenant(t, db, "byhost", true)

	tc, err := svc.Resolve(context.Background(), ResolutionInput{
		HeaderTenantID: byHeader.ID.String(),
		Host:           "byhost.example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, byHeader.ID, tc.TenantID)
}

func TestResolveBySubdomain(t *testing.T) {
	svc, db := newTenantService(t)
	tenant := seedTenant(t, db, "acme", true)

	tc, err := svc.Resolve(context.Background(), ResolutionInput{Host: "acme.example.com"})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, tc.TenantID)
	require.NotNil(t, tc.Tenant)
	assert.Equal(t, "acme", tc.Tenant.Subdomain)
}

func TestResolveByFirstActiveMembership(t *testing.T) {
	svc, db := newTenantService(t)
	tenant := seedTenant(t, db, "firm", true)
	userID := seedMember(t, db, tenant.ID, models.RoleLawyer, true)

	tc, err := svc.Resolve(context.Background(), ResolutionInput{Host: "example.com", UserID: &userID})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, tc.TenantID)
	require.NotNil(t, tc.Membership)
	assert.Equal(t, models.RoleLawyer, tc.Membership.Role)
}

func TestResolveFailsWithNoSignal(t *testing.T) {
	svc, _ := newTenantService(t)

	_, err := svc.Resolve(context.Background(), ResolutionInput{Host: "example.com"})
	assert.ErrorIs(t, err, ErrTenantRequired)
}

func TestResolveUnknownSubdomain(t *testing.T) {
	svc, _ := newTenantService(t)

	_, err := svc.Resolve(context.Background(), ResolutionInput{Host: "ghost.example.com"})
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestResolveMalformedHeaderIsNotFound(t *testing.T) {
	svc, _ := newTenantService(t)

	_, err := svc.Resolve(context.Background(), ResolutionInput{HeaderTenantID: "not-a-uuid"})
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestResolveRejectsSuspendedTenant(t *testing.T) {
	svc, db := newTenantService(t)
	tenant := seedTenant(t, db, "frozen", true)
	require.NoError(t, svc.Suspend(context.Background(), tenant.ID, "billing overdue"))

	_, err := svc.Resolve(context.Background(), ResolutionInput{Host: "frozen.example.com"})
	assert.ErrorIs(t, err, ErrTenantNotFound)

	_, err = svc.Resolve(context.Background(), ResolutionInput{HeaderTenantID: tenant.ID.String()})
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestResolveRequiresActiveMembershipForAuthenticatedUsers(t *testing.T) {
	svc, db := newTenantService(t)
	tenant := seedTenant(t, db, "acme", true)
	other := seedTenant(t, db, "other", true)
	outsider := seedMember(t, db, other.ID, models.RoleLawyer, true)

	_, err := svc.Resolve(context.Background(), ResolutionInput{
		Host:   "acme.example.com",
		UserID: &outsider,
	})
	assert.ErrorIs(t, err, ErrMembershipForbidden)

	_ = tenant
}

func TestResolveRejectsDeactivatedMembership(t *testing.T) {
	svc, db := newTenantService(t)
	tenant := seedTenant(t, db, "acme", true)
	former := seedMember(t, db, tenant.ID, models.RoleAssistant, false)

	_, err := svc.Resolve(context.Background(), ResolutionInput{
		Host:   "acme.example.com",
		UserID: &former,
	})
	assert.ErrorIs(t, err, ErrMembershipForbidden)
}

func TestSignupProvisionsTenantOwnerAndMembership(t *testing.T) {
	svc, db := newTenantService(t)

	tenant, user, err := svc.Signup(context.Background(), &SignupRequest{
		FirmName:  "Silva & Associados",
		Subdomain: "Silva ",
		Email:     "OWNER@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "silva", tenant.Subdomain)
	assert.Equal(t, "owner@example.com", user.Email)

	var membership models.TenantMembership
	require.NoError(t, db.First(&membership, "tenant_id = ? AND user_id = ?", tenant.ID, user.ID).Error)
	assert.Equal(t, models.RoleOwner, membership.Role)
	assert.True(t, membership.IsActive)
}

func TestSignupRejectsTakenSubdomain(t *testing.T) {
	svc, db := newTenantService(t)
	seedTenant(t, db, "taken", true)

	_, _, err := svc.Signup(context.Background(), &SignupRequest{
		FirmName:  "Outro",
		Subdomain: "taken",
		Email:     "x@example.com",
	})
	_, ok := IsConflictError(err)
	assert.True(t, ok)
}

func TestSignupRejectsReservedSubdomain(t *testing.T) {
	svc, _ := newTenantService(t)

	_, _, err := svc.Signup(context.Background(), &SignupRequest{
		FirmName:  "Infra",
		Subdomain: "admin",
		Email:     "x@example.com",
	})
	_, ok := IsValidationError(err)
	assert.True(t, ok)
}
