package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

type tenantFixture struct {
	db     *gorm.DB
	store  *tenantctx.Store
	router *gin.Engine
}

func newTenantFixture(t *testing.T) *tenantFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.TenantMembership{},
	))

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store := tenantctx.NewStore()
	svc := services.NewTenantService(db, repository.NewTenantRepository(db), nil, log)

	router := gin.New()
	router.Use(Identity())
	router.Use(ResolveTenant(svc, store, nil, log))
	router.GET("/whoami", func(c *gin.Context) {
		id, err := store.RequireTenantID(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tenant_id": id.String()})
	})
	router.GET("/records", func(c *gin.Context) {
		resp := gin.H{}
		if raw, ok := c.Get(TenantKey); ok {
			if tenant, ok := raw.(*models.Tenant); ok {
				resp["subdomain"] = tenant.Subdomain
			}
		}
		if raw, ok := c.Get(MembershipKey); ok {
			if membership, ok := raw.(*models.TenantMembership); ok {
				resp["role"] = membership.Role
			}
		}
		c.JSON(http.StatusOK, resp)
	})

	return &tenantFixture{db: db, store: store, router: router}
}

func (f *tenantFixture) seedTenant(t *testing.T, subdomain string, active bool) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: subdomain, Subdomain: subdomain, IsActive: active}
	require.NoError(t, f.db.Create(tenant).Error)
	if !active {
		// GORM replaces a zero value with the column's default:true on
		// create, so persist the flag with an explicit update.
		require.NoError(t, f.db.Model(tenant).Update("is_active", false).Error)
	}
	return tenant
}

func (f *tenantFixture) seedMember(t *testing.T, tenantID uuid.UUID, active bool) uuid.UUID {
	t.Helper()
	user := &models.User{Email: uuid.NewString() + "@example.com", IsActive: true}
	require.NoError(t, f.db.Create(user).Error)
	now := time.Now()
	membership := &models.TenantMembership{
		TenantID: tenantID,
		UserID:   user.ID,
		Role:     models.RoleLawyer,
		IsActive: active,
		JoinedAt: &now,
	}
	require.NoError(t, f.db.Create(membership).Error)
	if !active {
		// GORM replaces a zero value with the column's default:true on
		// create, so persist the flag with an explicit update.
		require.NoError(t, f.db.Model(membership).Update("is_active", false).Error)
	}
	return user.ID
}

func (f *tenantFixture) do(host, tenantHeader, userHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "http://"+host+"/whoami", nil)
	req.Host = host
	if tenantHeader != "" {
		req.Header.Set("X-Tenant-ID", tenantHeader)
	}
	if userHeader != "" {
		req.Header.Set("X-User-ID", userHeader)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestResolveTenantByHeader(t *testing.T) {
	f := newTenantFixture(t)
	tenant := f.seedTenant(t, "acme", true)

	w := f.do("example.com", tenant.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tenant.ID.String())
}

func TestResolveTenantBySubdomainHost(t *testing.T) {
	f := newTenantFixture(t)
	tenant := f.seedTenant(t, "acme", true)

	for _, host := range []string{"acme.example.com", "acme.localhost:3333"} {
		w := f.do(host, "", "")
		assert.Equal(t, http.StatusOK, w.Code, "host %q", host)
		assert.Contains(t, w.Body.String(), tenant.ID.String())
	}
}

func TestHeaderWinsOverSubdomain(t *testing.T) {
	f := newTenantFixture(t)
	byHeader := f.seedTenant(t, "byheader", true)
	f.seedTenant(t, "byhost", true)

	w := f.do("byhost.example.com", byHeader.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), byHeader.ID.String())
}

func TestResolveTenantByMembership(t *testing.T) {
	f := newTenantFixture(t)
	tenant := f.seedTenant(t, "firm", true)
	userID := f.seedMember(t, tenant.ID, true)

	w := f.do("example.com", "", userID.String())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tenant.ID.String())
}

func TestNoSignalIsUnauthorized(t *testing.T) {
	f := newTenantFixture(t)

	w := f.do("example.com", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TENANT_REQUIRED")
}

func TestUnknownTenantIsNotFound(t *testing.T) {
	f := newTenantFixture(t)

	w := f.do("ghost.example.com", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "TENANT_NOT_FOUND")

	w = f.do("example.com", uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSuspendedTenantIsNotFound(t *testing.T) {
	f := newTenantFixture(t)
	f.seedTenant(t, "frozen", false)

	w := f.do("frozen.example.com", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "TENANT_NOT_FOUND")
}

func TestNonMemberIsForbidden(t *testing.T) {
	f := newTenantFixture(t)
	f.seedTenant(t, "acme", true)
	other := f.seedTenant(t, "other", true)
	outsider := f.seedMember(t, other.ID, true)

	w := f.do("acme.example.com", "", outsider.String())
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "TENANT_MEMBERSHIP_FORBIDDEN")
}

func TestDeactivatedMemberIsForbidden(t *testing.T) {
	f := newTenantFixture(t)
	tenant := f.seedTenant(t, "acme", true)
	former := f.seedMember(t, tenant.ID, false)

	w := f.do("acme.example.com", "", former.String())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestResolveTenantExposesRecordsOnGinContext(t *testing.T) {
	f := newTenantFixture(t)
	tenant := f.seedTenant(t, "acme", true)
	userID := f.seedMember(t, tenant.ID, true)

	req := httptest.NewRequest(http.MethodGet, "http://acme.example.com/records", nil)
	req.Host = "acme.example.com"
	req.Header.Set("X-User-ID", userID.String())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subdomain":"acme"`)
	assert.Contains(t, w.Body.String(), `"role":"`+models.RoleLawyer+`"`)
}

func TestTenantHintScopesWithoutResolution(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := tenantctx.NewStore()

	router := gin.New()
	router.Use(TenantHint(store))
	router.GET("/hint", func(c *gin.Context) {
		id, ok := store.TenantID(c.Request.Context())
		if !ok {
			c.JSON(http.StatusOK, gin.H{"tenant_id": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tenant_id": id.String()})
	})

	tenantID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/hint", nil)
	req.Header.Set("X-Tenant-ID", tenantID.String())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tenantID.String())
}
