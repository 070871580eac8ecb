package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
)

// DocumentHandler handles document metadata HTTP requests
type DocumentHandler struct {
	documents *services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documents *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// RegisterDocumentRequest carries the new document metadata.
type RegisterDocumentRequest struct {
	CaseID      *uuid.UUID `json:"case_id"`
	ClientID    *uuid.UUID `json:"client_id"`
	Title       string     `json:"title" binding:"required"`
	FileName    string     `json:"file_name" binding:"required"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	StorageKey  string     `json:"storage_key" binding:"required"`
}

// Register stores document metadata after the file was uploaded.
func (h *DocumentHandler) Register(c *gin.Context) {
	var req RegisterDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	doc, err := h.documents.Register(c.Request.Context(), &models.Document{
		CaseID:      req.CaseID,
		ClientID:    req.ClientID,
		Title:       req.Title,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		StorageKey:  req.StorageKey,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Document registered", doc)
}

// Get returns one document descriptor.
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid document id", err)
		return
	}

	doc, err := h.documents.Get(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Document", doc)
}

// List returns the active tenant's documents.
func (h *DocumentHandler) List(c *gin.Context) {
	filter := repository.DocumentFilter{
		Search:     c.Query("search"),
		Pagination: parsePagination(c),
	}
	if raw := c.Query("case_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.CaseID = &id
		}
	}
	if raw := c.Query("client_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filter.ClientID = &id
		}
	}

	docs, total, err := h.documents.List(c.Request.Context(), filter)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	PagedResponse(c, docs, total, filter.Pagination)
}

// Delete removes document metadata.
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid document id", err)
		return
	}

	if err := h.documents.Delete(c.Request.Context(), id); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Document deleted", nil)
}
