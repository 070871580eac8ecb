package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
)

// AdminHandler is the cross-tenant administrative surface. It bypasses tenant
// resolution deliberately: reads go through the explicit ForTenant escape
// hatches and the whole group sits behind the admin API key.
type AdminHandler struct {
	tenants *services.TenantService
	audit   *services.AuditService
	clients *repository.ClientRepository
	cases   *repository.CaseRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	tenants *services.TenantService,
	audit *services.AuditService,
	clients *repository.ClientRepository,
	cases *repository.CaseRepository,
) *AdminHandler {
	return &AdminHandler{
		tenants: tenants,
		audit:   audit,
		clients: clients,
		cases:   cases,
	}
}

// ListTenants pages through all tenants.
func (h *AdminHandler) ListTenants(c *gin.Context) {
	page := parsePagination(c)
	tenants, total, err := h.tenants.ListTenants(c.Request.Context(), page)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	PagedResponse(c, tenants, total, page)
}

// GetTenant returns any tenant by id.
func (h *AdminHandler) GetTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("tenantId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid tenant id", err)
		return
	}

	tenant, err := h.tenants.GetTenant(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Tenant", tenant)
}

// SuspendTenantRequest carries the suspension reason.
type SuspendTenantRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SuspendTenant soft-disables a tenant.
func (h *AdminHandler) SuspendTenant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("tenantId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid tenant id", err)
		return
	}

	var req SuspendTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if err := h.tenants.Suspend(c.Request.Context(), id, req.Reason); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Tenant suspended", nil)
}

// ListTenantClients lists a tenant's clients without tenant resolution.
func (h *AdminHandler) ListTenantClients(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("tenantId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid tenant id", err)
		return
	}

	filter := repository.ClientFilter{
		Status:     c.Query("status"),
		Pagination: parsePagination(c),
	}
	clients, total, err := h.clients.ListForTenant(c.Request.Context(), tenantID, filter)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	PagedResponse(c, clients, total, filter.Pagination)
}

// ListTenantCases lists a tenant's cases without tenant resolution.
func (h *AdminHandler) ListTenantCases(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("tenantId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid tenant id", err)
		return
	}

	filter := repository.CaseFilter{
		Status:     c.Query("status"),
		Pagination: parsePagination(c),
	}
	cases, total, err := h.cases.ListForTenant(c.Request.Context(), tenantID, filter)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	PagedResponse(c, cases, total, filter.Pagination)
}

// ListTenantAudit lists a tenant's audit trail without tenant resolution.
func (h *AdminHandler) ListTenantAudit(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("tenantId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid tenant id", err)
		return
	}

	filter := parseAuditFilter(c)
	entries, total, err := h.audit.ListForTenant(c.Request.Context(), tenantID, filter)
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
