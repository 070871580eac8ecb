package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/middleware"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
)

// CaseHandler handles case HTTP requests
type CaseHandler struct {
	cases *services.CaseService
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(cases *services.CaseService) *CaseHandler {
	return &CaseHandler{cases: cases}
}

// OpenCaseRequest carries the new case payload.
type OpenCaseRequest struct {
	ClientID          uuid.UUID  `json:"client_id" binding:"required"`
	Number            string     `json:"number"`
	Title             string     `json:"title" binding:"required,min=2"`
	Description       string     `json:"description"`
	CourtName         string     `json:"court_name"`
	ResponsibleUserID *uuid.UUID `json:"responsible_user_id"`
}

// Open creates a case.
func (h *CaseHandler) Open(c *gin.Context) {
	var req OpenCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	opened, err := h.cases.Open(c.Request.Context(), &models.Case{
		ClientID:          req.ClientID,
		Number:            req.Number,
		Title:             req.Title,
		Description:       req.Description,
		CourtName:         req.CourtName,
		ResponsibleUserID: req.ResponsibleUserID,
	}, middleware.RequestMeta(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Case opened", opened)
}

// Get returns one case, optionally with its client preloaded.
func (h *CaseHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid case id", err)
		return
	}

	var preloads []string
	if c.Query("include") == "client" {
		preloads = append(preloads, "Client")
	}

	found, err := h.cases.Get(c.Request.Context(), id, preloads...)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Case", found)
}

// List returns the active tenant's cases.
func (h *CaseHandler) List(c *gin.Context) {
	filter := repository.CaseFilter{
		Status:     c.Query("status"),
		Search:     c.Query("search"),
		Pagination: parsePagination(c),
	}
	if raw := c.Query("client_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.ClientID = &id
		}
	}
	if raw := c.Query("responsible_user_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.ResponsibleUserID = &id
		}
	}

	cases, total, err := h.cases.List(c.Request.Context(), filter)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	PagedResponse(c, cases, total, filter.Pagination)
}

// UpdateCaseRequest carries editable case fields.
type UpdateCaseRequest struct {
	Number            *string    `json:"number"`
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	CourtName         *string    `json:"court_name"`
	ResponsibleUserID *uuid.UUID `json:"responsible_user_id"`
}

// Update modifies a case.
func (h *CaseHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid case id", err)
		return
	}

	var req UpdateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	updated, err := h.cases.Update(c.Request.Context(), id, func(m *models.Case) error {
		if req.Number != nil {
			m.Number = *req.Number
		}
		if req.Title != nil {
			m.Title = *req.Title
		}
		if req.Description != nil {
			m.Description = *req.Description
		}
		if req.CourtName != nil {
			m.CourtName = *req.CourtName
		}
		if req.ResponsibleUserID != nil {
			m.ResponsibleUserID = req.ResponsibleUserID
		}
		return nil
	}, middleware.RequestMeta(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Case updated", updated)
}

// Close marks a case closed.
func (h *CaseHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid case id", err)
		return
	}

	closed, err := h.cases.Close(c.Request.Context(), id, middleware.RequestMeta(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Case closed", closed)
}

// AddEventRequest carries a new timeline event.
type AddEventRequest struct {
	EventType   string     `json:"event_type" binding:"required"`
	Description string     `json:"description"`
	OccurredAt  *time.Time `json:"occurred_at"`
}

// AddEvent appends a timeline event to a case.
func (h *CaseHandler) AddEvent(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid case id", err)
		return
	}

	var req AddEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	event := &models.CaseEvent{
		EventType:   req.EventType,
		Description: req.Description,
	}
	if req.OccurredAt != nil {
		event.OccurredAt = *req.OccurredAt
	}

	created, err := h.cases.AddEvent(c.Request.Context(), caseID, event)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Event added", created)
}

// Timeline lists a case's events.
func (h *CaseHandler) Timeline(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid case id", err)
		return
	}

	page := parsePagination(c)
	events, total, err := h.cases.Timeline(c.Request.Context(), caseID, page)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	PagedResponse(c, events, total, page)
}
