package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
)

// MembershipHandler handles member management HTTP requests
type MembershipHandler struct {
	memberships *services.MembershipService
}

// NewMembershipHandler creates a new membership handler
func NewMembershipHandler(memberships *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{memberships: memberships}
}

// Invite adds a member to the active tenant.
func (h *MembershipHandler) Invite(c *gin.Context) {
	var req services.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	membership, err := h.memberships.Invite(c.Request.Context(), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Member invited", membership)
}

// List returns the active tenant's members.
func (h *MembershipHandler) List(c *gin.Context) {
	memberships, err := h.memberships.List(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Members", memberships)
}

// ChangeRoleRequest carries the new role for a member.
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ChangeRole updates a member's role.
func (h *MembershipHandler) ChangeRole(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	membership, err := h.memberships.ChangeRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Role updated", membership)
}

// Deactivate soft-removes a member from the tenant.
func (h *MembershipHandler) Deactivate(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid user id", err)
		return
	}

	if err := h.memberships.Deactivate(c.Request.Context(), userID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Member deactivated", nil)
}
