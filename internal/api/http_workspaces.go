package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"teamspace/internal/entity"
)

// CreateWorkspace creates a workspace owned by the caller.
func (h *HTTPHandler) CreateWorkspace(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.WorkspaceCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	workspace, err := h.workspaceService.Create(ctx, req, user.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, makeWorkspaceSummary(workspace))
}

// ListAllWorkspaces returns every workspace. Superuser only.
func (h *HTTPHandler) ListAllWorkspaces(c *gin.Context) {
	var params entity.WorkspaceQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	workspaces, meta, err := h.workspaceService.ListAll(ctx, &params)
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

// GetWorkspace returns one workspace by id.
func (h *HTTPHandler) GetWorkspace(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	workspace, err := h.workspaceService.GetByID(ctx, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, makeWorkspaceSummary(workspace))
}

// GetWorkspaceBySlug returns one workspace by slug. The caller must be a
// member or a superuser; the membership check happens here because the
// path guard keys on id.
func (h *HTTPHandler) GetWorkspaceBySlug(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	workspace, err := h.workspaceService.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		RespondError(c, err)
		return
	}

	if !user.IsSuperuser {
		if _, err := h.repo.GetMember(ctx, workspace.ID, user.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				Forbidden(c, "not a member of this workspace")
				return
			}
			logrus.WithError(err).WithField("workspace_id", workspace.ID).Error("failed to load membership")
			InternalError(c, "failed to verify workspace access")
			return
		}
	}
	c.JSON(http.StatusOK, makeWorkspaceSummary(workspace))
}

// UpdateWorkspace applies a partial update to a workspace.
func (h *HTTPHandler) UpdateWorkspace(c *gin.Context) {
	var req entity.WorkspaceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	workspace, err := h.workspaceService.Update(ctx, c.Param("id"), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, makeWorkspaceSummary(workspace))
}

// DeleteWorkspace removes the workspace and all its memberships.
func (h *HTTPHandler) DeleteWorkspace(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.workspaceService.Delete(ctx, c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{Message: "workspace deleted"})
}

// GetWorkspaceMembers returns the workspace with its member listing.
func (h *HTTPHandler) GetWorkspaceMembers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	result, err := h.workspaceService.GetWithMembers(ctx, c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AddWorkspaceMember adds a user to the workspace.
func (h *HTTPHandler) AddWorkspaceMember(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.MemberAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	member, err := h.workspaceService.AddMember(ctx, c.Param("id"), req, user.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// UpdateWorkspaceMember changes a member's role.
func (h *HTTPHandler) UpdateWorkspaceMember(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	var req entity.MemberUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	member, err := h.workspaceService.UpdateMemberRole(ctx, c.Param("id"), c.Param("user_id"), req.Role, user.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// RemoveWorkspaceMember removes a member from the workspace.
func (h *HTTPHandler) RemoveWorkspaceMember(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.workspaceService.RemoveMember(ctx, c.Param("id"), c.Param("user_id")); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{Message: "member removed"})
}

// LeaveWorkspace removes the caller's own membership. Owners cannot
// leave; they must delete the workspace or keep it.
func (h *HTTPHandler) LeaveWorkspace(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.workspaceService.RemoveMember(ctx, c.Param("id"), user.ID); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{Message: "left workspace"})
}

func makeWorkspaceSummary(workspace *entity.DbWorkspace) entity.WorkspaceSummary {
	if workspace == nil {
		return entity.WorkspaceSummary{}
	}
	return entity.WorkspaceSummary{
		ID:          workspace.ID,
		Name:        workspace.Name,
		Slug:        workspace.Slug,
		Description: workspace.Description,
		IsActive:    workspace.IsActive,
		CreatedAt:   workspace.CreatedAt,
		UpdatedAt:   workspace.UpdatedAt,
	}
}
