package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/middleware"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/models"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
)

// ClientHandler handles client HTTP requests
type ClientHandler struct {
	clients *services.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clients *services.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// CreateClientRequest carries the new client payload.
type CreateClientRequest struct {
	Name       string `json:"name" binding:"required,min=2"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ClientType string `json:"client_type"`
	TaxID      string `json:"tax_id"`
	Notes      string `json:"notes"`
}

// Create adds a client to the active tenant.
func (h *ClientHandler) Create(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	client := &models.Client{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		ClientType: req.ClientType,
		TaxID:      req.TaxID,
		Notes:      req.Notes,
	}
	created, err := h.clients.Create(c.Request.Context(), client, middleware.RequestMeta(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, "Client created", created)
}

// Get returns one client.
func (h *ClientHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid client id", err)
		return
	}

	client, err := h.clients.Get(c.Request.Context(), id)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Client", client)
}

// List returns the active tenant's clients.
func (h *ClientHandler) List(c *gin.Context) {
	filter := repository.ClientFilter{
		Status:     c.Query("status"),
		Search:     c.Query("search"),
		Pagination: parsePagination(c),
	}

	clients, total, err := h.clients.List(c.Request.Context(), filter)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	PagedResponse(c, clients, total, filter.Pagination)
}

// UpdateClientRequest carries editable client fields.
type UpdateClientRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

// Update modifies a client.
func (h *ClientHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid client id", err)
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	client, err := h.clients.Update(c.Request.Context(), id, func(m *models.Client) error {
		if req.Name != nil {
			m.Name = *req.Name
		}
		if req.Email != nil {
			m.Email = *req.Email
		}
		if req.Phone != nil {
			m.Phone = *req.Phone
		}
		if req.Notes != nil {
			m.Notes = *req.Notes
		}
		return nil
	}, middleware.RequestMeta(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Client updated", client)
}

// Archive marks a client archived.
func (h *ClientHandler) Archive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid client id", err)
		return
	}

	client, err := h.clients.Archive(c.Request.Context(), id, middleware.RequestMeta(c))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Client archived", client)
}
