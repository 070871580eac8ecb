package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
)

// DeadlineHandler handles deadline HTTP requests
type DeadlineHandler struct {
	deadlines *services.DeadlineService
}

// NewDeadlineHandler creates a new deadline handler
func NewDeadlineHandler(deadlines *services.DeadlineService) *DeadlineHandler {
	return &DeadlineHandler{deadlines: deadlines}
}

// CreateDeadlineRequest carries the new deadline payload.
type CreateDeadlineRequest struct {
	CaseID      uuid.UUID  `json:"case_id" binding:"required"`
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	DueAt       time.Time  `json:"due_at" binding:"required"`
	AssignedTo  *uuid.UUID `json:"assigned_to"`
}

// Create adds a deadline to a case.
func (h *DeadlineHandler) Create(c *gin.Context) {
	var req CreateDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	created, err := h.deadlines.Create(c.Request.Context(), &models.Deadline{
		CaseID:      req.CaseID,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Deadline created", created)
}

// List returns the active tenant's deadlines.
func (h *DeadlineHandler) List(c *gin.Context) {
	filter := repository.DeadlineFilter{
		Status:     c.Query("status"),
		Pagination: parsePagination(c),
	}
	if raw := c.Query("case_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.CaseID = &id
		}
	}
	if raw := c.Query("due_before"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.DueBefore = &t
		}
	}

	deadlines, total, err := h.deadlines.List(c.Request.Context(), filter)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	PagedResponse(c, deadlines, total, filter.Pagination)
}

// Complete marks a deadline done.
func (h *DeadlineHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid deadline id", err)
		return
	}

	done, err := h.deadlines.Complete(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Deadline completed", done)
}

// Delete removes a deadline.
func (h *DeadlineHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid deadline id", err)
		return
	}

	if err := h.deadlines.Delete(c.Request.Context(), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Deadline deleted", nil)
}
