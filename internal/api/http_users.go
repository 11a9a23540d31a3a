package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"teamspace/internal/entity"
)

// ListUsers returns paginated users, optionally filtered by keyword.
func (h *HTTPHandler) ListUsers(c *gin.Context) {
	var params entity.UserQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	users, meta, err := h.userService.List(ctx, &params)
	if err != nil {
		RespondError(c, err)
		return
	}

	summaries := make([]entity.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, makeUserSummary(&users[i]))
	}
	c.JSON(http.StatusOK, entity.UserListResponse{Users: summaries, Meta: meta})
}

// GetUser returns one user by id.
func (h *HTTPHandler) GetUser(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userService.GetByID(ctx, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, makeUserSummary(user))
}

// UpdateUser applies a partial update to a user.
func (h *HTTPHandler) UpdateUser(c *gin.Context) {
	var req entity.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	// Only superusers may flip the active flag; users cannot disable or
	// re-enable themselves through this route.
	if req.IsActive != nil {
		user := CurrentUser(c)
		if user == nil || !user.IsSuperuser {
			Forbidden(c, "not enough permissions")
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userService.Update(ctx, c.Param("id"), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, makeUserSummary(user))
}

// DeactivateUser flips the account inactive without deleting it.
func (h *HTTPHandler) DeactivateUser(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userService.Deactivate(ctx, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, makeUserSummary(user))
}

// DeleteUser removes the user record irreversibly.
func (h *HTTPHandler) DeleteUser(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.userService.Delete(ctx, c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{Message: "user deleted"})
}

// GetUserWorkspaces lists the active workspaces the user belongs to.
func (h *HTTPHandler) GetUserWorkspaces(c *gin.Context) {
	var params entity.WorkspaceQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	workspaces, meta, err := h.userService.GetUserWorkspaces(ctx, c.Param("id"), &params)
	if err != nil {
		RespondError(c, err)
		return
	}

	summaries := make([]entity.WorkspaceSummary, 0, len(workspaces))
	for i := range workspaces {
		summaries = append(summaries, makeWorkspaceSummary(&workspaces[i]))
	}
	c.JSON(http.StatusOK, entity.WorkspaceListResponse{Workspaces: summaries, Meta: meta})
}
