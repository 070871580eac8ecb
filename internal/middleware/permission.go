package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/metrics"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// RequestMeta builds the audit request metadata for the current request,
// including a snapshot of the JSON body when one is present. The body is
// restored afterwards so handlers can still bind it.
func RequestMeta(c *gin.Context) *services.RequestMeta {
	return &services.RequestMeta{
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		IPAddress: c.ClientIP(),
		RequestID: c.GetString(RequestIDKey),
		Payload:   snapshotPayload(c),
	}
}

func snapshotPayload(c *gin.Context) map[string]interface{} {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if ct := c.ContentType(); ct != "" && ct != "application/json" {
		return nil
	}
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return nil
	}
	var payload map[string]interface{}
	if json.Unmarshal(body, &payload) != nil {
		return nil
	}
	return payload
}

// RequirePermission gates a route behind one or more permissions, all of
// which must be granted. Every evaluation is audited by the service.
func RequirePermission(perms *services.PermissionService, m *metrics.Metrics, checks ...services.PermissionCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := perms.RequireAll(c.Request.Context(), RequestMeta(c), checks...)
		if err == nil {
			if m != nil {
				m.ObservePermissionCheck(true)
			}
			c.Next()
			return
		}
		if m != nil {
			m.ObservePermissionCheck(false)
		}

		if denied, ok := services.IsPermissionDenied(err); ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "PERMISSION_DENIED",
				"message":  "You do not have permission to perform this action",
				"required": denied.Required,
			})
			return
		}
		if errors.Is(err, tenantctx.ErrMissingTenantContext) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "TENANT_REQUIRED",
				"message": "No tenant could be determined for this request",
			})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "PERMISSION_CHECK_FAILED",
			"message": "Permission evaluation failed",
		})
	}
}
