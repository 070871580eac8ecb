package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// TenantHandler handles tenant-related HTTP requests
type TenantHandler struct {
	tenants *services.TenantService
	rbac    *services.RBACService
	store   *tenantctx.Store
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenants *services.TenantService, rbac *services.RBACService, store *tenantctx.Store) *TenantHandler {
	return &TenantHandler{tenants: tenants, rbac: rbac, store: store}
}

// Signup provisions a new firm with its owner. Runs outside tenant
// resolution: there is no tenant yet.
func (h *TenantHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	tenant, user, err := h.tenants.Signup(c.Request.Context(), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if err := h.rbac.ProvisionTenantRoles(c.Request.Context(), tenant.ID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Firm created successfully", gin.H{
		"tenant": tenant,
		"owner":  user,
	})
}

// Current returns the tenant the request resolved to.
func (h *TenantHandler) Current(c *gin.Context) {
	tc, err := h.store.Require(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	tenant := tc.Tenant
	if tenant == nil {
		loaded, err := h.tenants.GetTenant(c.Request.Context(), tc.TenantID)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		tenant = loaded
	}
	SuccessResponse(c, http.StatusOK, "Current tenant", tenant)
}

// UpdateCurrentRequest carries the editable tenant fields.
type UpdateCurrentRequest struct {
	Name         *string `json:"name"`
	CustomDomain *string `json:"custom_domain"`
	Plan         *string `json:"plan"`
}

// UpdateCurrent modifies the active tenant's profile.
func (h *TenantHandler) UpdateCurrent(c *gin.Context) {
	tc, err := h.store.Require(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	var req UpdateCurrentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	tenant, err := h.tenants.GetTenant(c.Request.Context(), tc.TenantID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	if req.Name != nil {
		tenant.Name = *req.Name
	}
	if req.CustomDomain != nil {
		tenant.CustomDomain = *req.CustomDomain
	}
	if req.Plan != nil {
		tenant.Plan = *req.Plan
	}

	if err := h.tenants.UpdateTenant(c.Request.Context(), tenant); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Tenant updated", tenant)
}
