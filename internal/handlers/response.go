package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gabrielmaialva33/juridicai-sub002/internal/repository"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/services"
	"github.com/gabrielmaialva33/juridicai-sub002/internal/tenantctx"
)

// ErrorResponse sends a standardized error response. Internal details are
// logged, never exposed to clients.
func ErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	requestID := getRequestID(c)

	if err != nil && statusCode >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"request_id": requestID,
			"path":       c.Request.URL.Path,
		}).Error(message)
	}

	response := gin.H{
		"success":    false,
		"message":    message,
		"request_id": requestID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	if gin.Mode() == gin.DebugMode && err != nil {
		response["error_details"] = err.Error()
	}
	c.JSON(statusCode, response)
}

// SuccessResponse sends a standardized success response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := gin.H{
		"success":    true,
		"message":    message,
		"request_id": getRequestID(c),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}
	if data != nil {
		response["data"] = data
	}
	c.JSON(statusCode, response)
}

// PagedResponse sends a list payload with pagination totals.
func PagedResponse(c *gin.Context, data interface{}, total int64, page repository.Pagination) {
	n := page.Normalize()
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       data,
		"total":      total,
		"page":       n.Page,
		"page_size":  n.PageSize,
		"request_id": getRequestID(c),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleServiceError maps service-layer errors onto HTTP responses.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, services.ErrRecordNotFound):
		ErrorResponse(c, http.StatusNotFound, "Record not found", err)
	case errors.Is(err, services.ErrTenantNotFound):
		ErrorResponse(c, http.StatusNotFound, "Tenant not found or inactive", err)
	case errors.Is(err, services.ErrTenantRequired), errors.Is(err, tenantctx.ErrMissingTenantContext):
		ErrorResponse(c, http.StatusUnauthorized, "No tenant could be determined for this request", err)
	case errors.Is(err, services.ErrMembershipForbidden):
		ErrorResponse(c, http.StatusForbidden, "You are not an active member of this tenant", err)
	default:
		if validationErr, ok := services.IsValidationError(err); ok {
			ErrorResponse(c, http.StatusBadRequest, validationErr.Error(), nil)
			return
		}
		if conflictErr, ok := services.IsConflictError(err); ok {
			ErrorResponse(c, http.StatusConflict, conflictErr.Error(), nil)
			return
		}
		if denied, ok := services.IsPermissionDenied(err); ok {
			c.JSON(http.StatusForbidden, gin.H{
				"success":  false,
				"message":  "You do not have permission to perform this action",
				"required": denied.Required,
			})
			return
		}
		if _, ok := repository.IsCrossTenantViolation(err); ok {
			ErrorResponse(c, http.StatusForbidden, "Record belongs to another tenant", err)
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred", err)
	}
}

// parsePagination reads page/page_size query params.
func parsePagination(c *gin.Context) repository.Pagination {
	page := repository.Pagination{}
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		page.Page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil {
		page.PageSize = v
	}
	return page.Normalize()
}

func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if s, ok := requestID.(string); ok {
			return s
		}
	}
	return c.GetHeader("X-Request-ID")
}
