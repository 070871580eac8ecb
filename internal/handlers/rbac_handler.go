package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
)

// RBACHandler handles direct member permission HTTP requests
type RBACHandler struct {
	rbac *services.RBACService
}

// NewRBACHandler creates a new RBAC handler
func NewRBACHandler(rbac *services.RBACService) *RBACHandler {
	return &RBACHandler{rbac: rbac}
}

// Grant records a direct grant or denial for a member.
func (h *RBACHandler) Grant(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	var req services.GrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	grant, err := h.rbac.Grant(c.Request.Context(), userID, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Permission grant recorded", grant)
}

// ListGrants returns a member's direct grants and denials.
func (h *RBACHandler) ListGrants(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	grants, err := h.rbac.ListGrants(c.Request.Context(), userID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Permission grants", grants)
}

// Revoke removes a direct grant.
func (h *RBACHandler) Revoke(c *gin.Context) {
	grantID, err := uuid.Parse(c.Param("grantId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid grant id", err)
		return
	}

	if err := h.rbac.Revoke(c.Request.Context(), grantID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Permission grant revoked", nil)
}
