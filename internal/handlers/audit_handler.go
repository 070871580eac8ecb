package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
)

// AuditHandler handles audit trail HTTP requests
type AuditHandler struct {
	audit *services.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit *services.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List returns the active tenant's audit entries, newest first.
func (h *AuditHandler) List(c *gin.Context) {
	filter := parseAuditFilter(c)

	entries, total, err := h.audit.List(c.Request.Context(), filter)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       entries,
		"total":      total,
		"request_id": getRequestID(c),
	})
}

func parseAuditFilter(c *gin.Context) *models.AuditLogFilter {
	filter := &models.AuditLogFilter{
		Resource:   c.Query("resource"),
		Action:     c.Query("action"),
		ResourceID: c.Query("resource_id"),
		Result:     models.AuditResult(c.Query("result")),
	}
	if raw := c.Query("user_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.UserID = &id
		}
	}
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.FromDate = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.ToDate = &t
		}
	}

	page := parsePagination(c)
	filter.Limit = page.Limit()
	filter.Offset = page.Offset()
	return filter
}
