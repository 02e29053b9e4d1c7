package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expensely/internal/middleware"
	"expensely/internal/models"
	"expensely/internal/services"
)

// AdminHandler serves the internal, API-key guarded administration routes.
type AdminHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService services.UserServicer, auditService services.AuditServicer) *AdminHandler {
	return &AdminHandler{userService: userService, auditService: auditService}
}

// UpdateRoleRequest sets a user's role.
type UpdateRoleRequest struct {
	Role models.Role `json:"role" binding:"required,user_role"`
}

// UpdateUserRole changes a user's role
// @Summary     Set user role
// @Description Promote or demote a user. Requires the admin API key.
// @Tags        internal
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       id      path string            true "User ID"
// @Param       request body UpdateRoleRequest true "New role"
// @Success     200 {object} UserResponse "Updated user"
// @Failure     400 {object} ErrorResponse "Invalid role"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "User not found"
// @Router      /internal/users/{id}/role [put]
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, middleware.InvalidInput(err))
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), c.Param("id"), req.Role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, user.ID, models.AuditUpdateRole, models.AuditResourceUser, user.ID, map[string]any{"role": user.Role})
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}
