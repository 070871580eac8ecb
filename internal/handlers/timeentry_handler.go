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

// TimeEntryHandler handles time tracking HTTP requests
type TimeEntryHandler struct {
	entries *services.TimeEntryService
}

// NewTimeEntryHandler creates a new time entry handler
func NewTimeEntryHandler(entries *services.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{entries: entries}
}

// LogTimeRequest carries the new time entry payload.
type LogTimeRequest struct {
	CaseID      uuid.UUID  `json:"case_id" binding:"required"`
	Description string     `json:"description"`
	Minutes     int        `json:"minutes" binding:"required,min=1"`
	WorkedOn    *time.Time `json:"worked_on"`
	Billable    *bool      `json:"billable"`
}

// Log records worked time against a case.
func (h *TimeEntryHandler) Log(c *gin.Context) {
	var req LogTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	entry := &models.TimeEntry{
		CaseID:      req.CaseID,
		Description: req.Description,
		Minutes:     req.Minutes,
		Billable:    true,
	}
	if req.WorkedOn != nil {
		entry.WorkedOn = *req.WorkedOn
	}
	if req.Billable != nil {
		entry.Billable = *req.Billable
	}

	created, err := h.entries.Log(c.Request.Context(), entry)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Time logged", created)
}

// List returns the active tenant's time entries.
func (h *TimeEntryHandler) List(c *gin.Context) {
	filter := h.parseFilter(c)

	entries, total, err := h.entries.List(c.Request.Context(), filter)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	PagedResponse(c, entries, total, filter.Pagination)
}

// Summary aggregates logged minutes for billing views.
func (h *TimeEntryHandler) Summary(c *gin.Context) {
	filter := h.parseFilter(c)

	summary, err := h.entries.Summarize(c.Request.Context(), filter)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Time summary", summary)
}

// Delete removes a time entry.
func (h *TimeEntryHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid time entry id", err)
		return
	}

	if err := h.entries.Delete(c.Request.Context(), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Time entry deleted", nil)
}

func (h *TimeEntryHandler) parseFilter(c *gin.Context) repository.TimeEntryFilter {
	filter := repository.TimeEntryFilter{Pagination: parsePagination(c)}
	if raw := c.Query("case_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.CaseID = &id
		}
	}
	if raw := c.Query("user_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.UserID = &id
		}
	}
	if raw := c.Query("billable"); raw != "" {
		b := raw == "true"
		filter.Billable = &b
	}
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.From = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.To = &t
		}
	}
	return filter
}
