package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/metrics"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// Gin context keys set by ResolveTenant. TenantKey and MembershipKey hold
// the loaded records for handler convenience; the bound tenantctx store
// remains the source of truth.
const (
	TenantIDKey   = "tenant_id"
	TenantKey     = "tenant"
	MembershipKey = "membership"
)

// TenantHint attaches the raw X-Tenant-ID header to the request context as a
// low-priority fallback. Routes that skip full resolution (health, metrics,
// signup) still get best-effort tenant attribution in logs and scoped reads.
func TenantHint(store *tenantctx.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("X-Tenant-ID"); raw != "" {
			ctx := store.WithHeaderTenant(c.Request.Context(), raw)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// ResolveTenant runs full tenant resolution and binds the result into the
// request context. Everything after it can rely on the tenant scope being
// active; requests that cannot be attributed to exactly one active tenant
// are rejected here.
func ResolveTenant(tenants *services.TenantService, store *tenantctx.Store, m *metrics.Metrics, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		input := services.ResolutionInput{
			HeaderTenantID: c.GetHeader("X-Tenant-ID"),
			Host:           c.Request.Host,
			UserID:         CurrentUserID(c),
		}

		tc, err := tenants.Resolve(c.Request.Context(), input)
		if err != nil {
			if m != nil {
				m.ObserveTenantResolution("failed")
			}
			status, code, message := mapResolutionError(err)
			if status == http.StatusInternalServerError {
				logger.WithError(err).Error("Tenant resolution failed")
			}
			c.AbortWithStatusJSON(status, gin.H{"error": code, "message": message})
			return
		}

		if m != nil {
			m.ObserveTenantResolution(resolutionSource(input))
		}

		ctx := store.Bind(c.Request.Context(), tc)
		c.Request = c.Request.WithContext(ctx)
		c.Set(TenantIDKey, tc.TenantID.String())
		if tc.Tenant != nil {
			c.Set(TenantKey, tc.Tenant)
		}
		if tc.Membership != nil {
			c.Set(MembershipKey, tc.Membership)
		}
		c.Next()
	}
}

func resolutionSource(input services.ResolutionInput) string {
	switch {
	case input.HeaderTenantID != "":
		return "header"
	case services.ExtractSubdomain(input.Host) != "":
		return "subdomain"
	default:
		return "membership"
	}
}

func mapResolutionError(err error) (int, string, string) {
	switch {
	case errors.Is(err, services.ErrTenantRequired):
		return http.StatusUnauthorized, "TENANT_REQUIRED", "No tenant could be determined for this request"
	case errors.Is(err, services.ErrTenantNotFound):
		return http.StatusNotFound, "TENANT_NOT_FOUND", "Tenant not found or inactive"
	case errors.Is(err, services.ErrMembershipForbidden):
		return http.StatusForbidden, "TENANT_MEMBERSHIP_FORBIDDEN", "You are not an active member of this tenant"
	default:
		return http.StatusInternalServerError, "RESOLUTION_FAILED", "Tenant resolution failed"
	}
}
