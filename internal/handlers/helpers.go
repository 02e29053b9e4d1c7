package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "expensely/internal/errors"
	"expensely/internal/middleware"
	"expensely/internal/models"
	"expensely/internal/services"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString("userID")
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.RenderError(c, err)
}

// audit records a successful action by actorID against the request context.
func audit(c *gin.Context, svc services.AuditServicer, actorID string, action models.AuditAction, resource models.AuditResource, resourceID string, changes map[string]any) {
	svc.Record(c.Request.Context(), services.AuditEvent{
		ActorID:      actorID,
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		IPAddress:    c.ClientIP(),
		Changes:      changes,
	})
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
