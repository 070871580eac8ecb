package repository

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
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

func newTestDB(t *testing.T) *gorm.DB {
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
		&models.Client{},
		&models.Case{},
		&models.CaseEvent{},
		&models.Document{},
		&models.Deadline{},
		&models.TimeEntry{},
		&models.AuditLog{},
	))
	return db
}

func bindTenant(store *tenantctx.Store, tenantID uuid.UUID) context.Context {
	return store.Bind(context.Background(), &tenantctx.Context{TenantID: tenantID})
}

func TestScopedQueriesIsolateTenants(t *testing.T) {
	db := newTestDB(t)
	store := tenantctx.NewStore()
	repo := NewClientRepository(db, store)

	tenantA := uuid.New()
	tenantB := uuid.New()
	ctxA := bindTenant(store, tenantA)
	ctxB := bindTenant(store, tenantB)

	require.NoError(t, repo.Create(ctxA, &models.Client{Name: "Alice Advocacia"}))
	require.NoError(t, repo.Create(ctxA, &models.Client{Name: "Apex Holdings"}))
	require.NoError(t, repo.Create(ctxB, &models.Client{Name: "Borges e Filhos"}))

	clientsA, totalA, err := repo.List(ctxA, ClientFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, totalA)
	for _, c := range clientsA {
		assert.Equal(t, tenantA, c.TenantID)
	}

	clientsB, totalB, err := repo.List(ctxB, ClientFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, totalB)
	assert.Equal(t, "Borges e Filhos", clientsB[0].Name)
}

func TestGetByIDDoesNotLeakAcrossTenants(t *testing.T) {
	db := newTestDB(t)
	store := tenantctx.NewStore()
	repo := NewClientRepository(db, store)

	tenantA := uuid.New()
	tenantB := uuid.New()
	ctxA := bindTenant(store, tenantA)
	ctxB := bindTenant(store, tenantB)

	client := &models.Client{Name: "Confidential Client"}
	require.NoError(t, repo.Create(ctxA, client))

	got, err := repo.GetByID(ctxB, client.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "a row owned by another tenant must look like it does not exist")

	got, err = repo.GetByID(ctxA, client.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, client.ID, got.ID)
}

func TestStampAttributesActiveTenant(t *testing.T) {
	db := newTestDB(t)
	store := tenantctx.NewStore()
	repo := NewClientRepository(db, store)

	tenantID := uuid.New()
	ctx := bindTenant(store, tenantID)

	client := &models.Client{Name: "Stamped"}
	require.NoError(t, repo.Create(ctx, client))
	assert.Equal(t, tenantID, client.TenantID)
	assert.NotEqual(t, uuid.Nil, client.ID)
}

func TestStampFailsFastWithoutContext(t *testing.T) {
	db := newTestDB(t)
	store := tenantctx.NewStore()
	repo := NewClientRepository(db, store)

	err := repo.Create(context.Background(), &models.Client{Name: "Orphan"})
	assert.ErrorIs(t, err, tenantctx.ErrMissingTenantContext)

	var count int64
	require.NoError(t, db.Model(&models.Client{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestStampKeepsExplicitTenant(t *testing.T) {
	db := newTestDB(t)
	store := tenantctx.NewStore()
	repo := NewClientRepository(db, store)

	explicit := uuid.New()
	client := &models.Client{Name: "Pre-attributed"}
	client.TenantID = explicit

	require.NoError(t, repo.Create(context.Background(), client))
	assert.Equal(t, explicit, client.TenantID)
}

func TestHeaderFallbackScopesReads(t *testing.T) {
	db := newTestDB(t)
	store := tenantctx.NewStore()
	repo := NewClientRepository(db, store)

	tenantA := uuid.New()
	tenantB := uuid.New()
	require.NoError(t, repo.Create(bindTenant(store, tenantA), &models.Client{Name: "A"}))
	require.NoError(t, repo.Create(bindTenant(store, tenantB), &models.Client{Name: "B"}))

	ctx := store.WithHeaderTenant(context.Background(), tenantA.String())
	clients, total, err := repo.List(ctx, ClientFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "A", clients[0].Name)
}

func TestReadsWithoutContextAreUnscoped(t *testing.T) {
	db := newTestDB(t)
	store := tenantctx.NewStore()
	repo := NewClientRepository(db, store)

	require.NoError(t, repo.Create(bindTenant(store, uuid.New()), &models.Client{Name: "A"}))
	require.NoError(t, repo.Create(bindTenant(store, uuid.New()), &models.Client{Name: "B"}))

	_, total, err := repo.List(context.Background(), ClientFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "background jobs read across tenants when no context is bound")
}

func TestEnsureOwnershipRejectsForeignRow(t *testing.T) {
	db := newTestDB(t)
	store := tenantctx.NewStore()
	repo := NewClientRepository(db, store)

	tenantA := uuid.New()
	tenantB := uuid.New()
	ctxA := bindTenant(store, tenantA)

	client := &models.Client{Name: "Owned by A"}
	require.NoError(t, repo.Create(ctxA, client))

	client.Name = "Hijacked"
	err := repo.Update(bindTenant(store, tenantB), client)
	require.Error(t, err)

	violation, ok := IsCrossTenantViolation(err)
	require.True(t, ok)
	assert.Equal(t, tenantB, violation.ContextTenantID)
	assert.Equal(t, tenantA, violation.RecordTenantID)
}

func TestForTenantEscapeHatch(t *testing.T) {
	db := newTestDB(t)
	store := tenantctx.NewStore()
	repo := NewClientRepository(db, store)

	tenantA := uuid.New()
	tenantB := uuid.New()
	require.NoError(t, repo.Create(bindTenant(store, tenantA), &models.Client{Name: "A"}))
	require.NoError(t, repo.Create(bindTenant(store, tenantB), &models.Client{Name: "B"}))

	// Explicit tenant wins even with a different tenant active in ctx.
	clients, total, err := repo.ListForTenant(bindTenant(store, tenantB), tenantA, ClientFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, tenantA, clients[0].TenantID)
}

func TestCrossTenantEscapeHatch(t *testing.T) {
	db := newTestDB(t)
	store := tenantctx.NewStore()
	repo := NewClientRepository(db, store)

	client := &models.Client{Name: "Elsewhere"}
	require.NoError(t, repo.Create(bindTenant(store, uuid.New()), client))

	got, err := repo.GetByIDCrossTenant(bindTenant(store, uuid.New()), client.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, client.ID, got.ID)
}

func TestAuditRetentionCleanup(t *testing.T) {
	db := newTestDB(t)
	store := tenantctx.NewStore()
	repo := NewAuditRepository(db, store)

	tenantID := uuid.New()
	ctx := bindTenant(store, tenantID)

	old := &models.AuditLog{Resource: "case", Action: "read", Result: models.ResultGranted}
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("id = ?", old.ID).
		Update("created_at", time.Now().AddDate(0, 0, -120)).Error)

	fresh := &models.AuditLog{Resource: "case", Action: "read", Result: models.ResultGranted}
	require.NoError(t, repo.Create(ctx, fresh))

	deleted, err := repo.DeleteOlderThan(context.Background(), time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	entries, total, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, fresh.ID, entries[0].ID)
}

func TestDeadlineOverdueSweep(t *testing.T) {
	db := newTestDB(t)
	store := tenantctx.NewStore()
	repo := NewDeadlineRepository(db, store)

	tenantA := uuid.New()
	tenantB := uuid.New()
	caseID := uuid.New()

	overdue := &models.Deadline{CaseID: caseID, Title: "Answer complaint", DueAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, repo.Create(bindTenant(store, tenantA), overdue))
	upcoming := &models.Deadline{CaseID: caseID, Title: "File appeal", DueAt: time.Now().Add(48 * time.Hour)}
	require.NoError(t, repo.Create(bindTenant(store, tenantB), upcoming))

	// Column defaults do not apply through struct creation in sqlite tests.
	require.NoError(t, db.Model(&models.Deadline{}).
		Where("status = '' OR status IS NULL").
		Update("status", models.DeadlineStatusPending).Error)

	flipped, err := repo.MarkOverdueAsMissed(context.Background(), time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, flipped)

	got, err := repo.GetByID(bindTenant(store, tenantA), overdue.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.DeadlineStatusMissed, got.Status)

	still, err := repo.GetByID(bindTenant(store, tenantB), upcoming.ID)
	require.NoError(t, err)
	require.NotNil(t, still)
	assert.Equal(t, models.DeadlineStatusPending, still.Status)
}

func TestPaginationNormalization(t *testing.T) {
	assert.Equal(t, 20, Pagination{}.Limit())
	assert.Equal(t, 0, Pagination{}.Offset())
	assert.Equal(t, 100, Pagination{Page: 2, PageSize: 500}.Limit())
	assert.Equal(t, 100, Pagination{Page: 2, PageSize: 500}.Offset())
	assert.Equal(t, 40, Pagination{Page: 3, PageSize: 20}.Offset())
}
