package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
	"github.com/SscSPs/gestion_caisse/internal/dto"
	"github.com/SscSPs/gestion_caisse/internal/middleware"
	"github.com/gin-gonic/gin"
)

// adminHandler handles account administration. The service enforces the admin role.
type adminHandler struct {
	userService portssvc.UserSvcFacade
}

func newAdminHandler(us portssvc.UserSvcFacade) *adminHandler {
	return &adminHandler{userService: us}
}

func registerAdminRoutes(rg *gin.RouterGroup, us portssvc.UserSvcFacade) {
	h := newAdminHandler(us)

	admin := rg.Group("/admin")
	{
		admin.GET("/users", h.listUsers)
		admin.POST("/users/:id/approve", h.approveUser)
		admin.PATCH("/users/:id/role", h.setRole)
		admin.DELETE("/users/:id", h.deleteUser)
		admin.GET("/audit", h.listAudit)
	}
}

// listUsers godoc
// @Summary List accounts
// @Tags admin
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListUsersResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/admin/users [get]
func (h *adminHandler) listUsers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Admin role required"})
		return
	}

	var params dto.ListUsersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	users, err := h.userService.ListUsers(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		respondError(c, err, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, dto.ToListUserResponse(users))
}

// approveUser godoc
// @Summary Approve an account
// @Tags admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/admin/users/{id}/approve [post]
func (h *adminHandler) approveUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	user, err := h.userService.ApproveUser(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err, "Failed to approve user")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("User approved", slog.String("target_user_id", user.UserID))
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// setRole godoc
// @Summary Change the role of an account
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param role body dto.SetRoleRequest true "New role"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/admin/users/{id}/role [patch]
func (h *adminHandler) setRole(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	user, err := h.userService.SetRole(c.Request.Context(), c.Param("id"), req.Role, actor)
	if err != nil {
		respondError(c, err, "Failed to change role")
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// deleteUser godoc
// @Summary Delete an account
// @Tags admin
// @Param id path string true "User ID"
// @Success 204 "No Content"
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/admin/users/{id} [delete]
func (h *adminHandler) deleteUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondError(c, err, "Failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}

// listAudit godoc
// @Summary Admin audit log
// @Tags admin
// @Produce json
// @Param limit query int false "Number of entries" default(100)
// @Success 200 {object} dto.AdminAuditResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/admin/audit [get]
func (h *adminHandler) listAudit(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var params dto.AdminAuditParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	entries, err := h.userService.ListAdminAudit(c.Request.Context(), params.Limit, actor)
	if err != nil {
		respondError(c, err, "Failed to list admin audit")
		return
	}
	c.JSON(http.StatusOK, dto.AdminAuditResponse{Entries: entries})
}
