package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"teamspace/internal/authz"
	"teamspace/internal/entity"
)

const (
	currentUserContextKey = "current-user"
)

// RequestUser holds the authenticated user attached to the request context.
type RequestUser struct {
	ID          string
	Email       string
	Firstname   string
	Lastname    string
	IsSuperuser bool
}

// AuthMiddleware validates the bearer token and loads the account behind
// it. Requests from disabled accounts are rejected even when the token
// itself is still valid.
func (h *HTTPHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "missing authorization header",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "invalid authorization header format",
			})
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "missing bearer token",
			})
			return
		}

		userID, err := h.authManager.ParseAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeSessionExpired,
				Message: "token is invalid or expired",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := h.repo.GetUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
					Code:    ErrCodeUserNotFound,
					Message: "user no longer exists",
				})
				return
			}
			logrus.WithError(err).WithField("user_id", userID).Error("failed to load user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
				Code:    ErrCodeInternalError,
				Message: "failed to verify user",
			})
			return
		}

		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeUserDisabled,
				Message: "account is disabled",
			})
			return
		}

		c.Set(currentUserContextKey, &RequestUser{
			ID:          user.ID,
			Email:       user.Email,
			Firstname:   user.Firstname,
			Lastname:    user.Lastname,
			IsSuperuser: user.IsSuperuser,
		})
		c.Next()
	}
}

// RequireSuperuser guards superuser-only routes.
func (h *HTTPHandler) RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsSuperuser {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeForbidden,
				Message: "superuser privileges required",
			})
			return
		}
		c.Next()
	}
}

// RequireSelfOrSuperuser guards per-user routes: the id path parameter
// must match the caller unless the caller is a superuser.
func (h *HTTPHandler) RequireSelfOrSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !authz.CanAccessOwnResource(user.ID, c.Param("id"), user.IsSuperuser) {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeForbidden,
				Message: "not enough permissions",
			})
			return
		}
		c.Next()
	}
}

// RequireWorkspaceAccess guards workspace-scoped routes: the caller must
// be a member of the workspace in the id path parameter, or a superuser.
// Unknown workspaces yield 404 before the membership check so both cases
// stay distinguishable.
func (h *HTTPHandler) RequireWorkspaceAccess() gin.HandlerFunc {
	return h.workspaceGuard(func(role entity.Role) bool { return true })
}

// RequireWorkspaceAdmin additionally requires admin or owner role.
func (h *HTTPHandler) RequireWorkspaceAdmin() gin.HandlerFunc {
	return h.workspaceGuard(authz.IsWorkspaceAdmin)
}

func (h *HTTPHandler) workspaceGuard(allowed func(entity.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, APIError{
				Code:    ErrCodeUnauthorized,
				Message: "authentication required",
			})
			return
		}

		workspaceID := c.Param("id")

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if _, err := h.repo.GetWorkspaceByID(ctx, workspaceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, APIError{
					Code:    ErrCodeNotFound,
					Message: "workspace not found",
				})
				return
			}
			logrus.WithError(err).WithField("workspace_id", workspaceID).Error("failed to load workspace")
			c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
				Code:    ErrCodeInternalError,
				Message: "failed to verify workspace access",
			})
			return
		}

		if user.IsSuperuser {
			c.Next()
			return
		}

		member, err := h.repo.GetMember(ctx, workspaceID, user.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, APIError{
					Code:    ErrCodeForbidden,
					Message: "not a member of this workspace",
				})
				return
			}
			logrus.WithError(err).WithField("workspace_id", workspaceID).Error("failed to load membership")
			c.AbortWithStatusJSON(http.StatusInternalServerError, APIError{
				Code:    ErrCodeInternalError,
				Message: "failed to verify workspace access",
			})
			return
		}

		if !allowed(member.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, APIError{
				Code:    ErrCodeForbidden,
				Message: "workspace admin privileges required",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user from the request context.
func CurrentUser(c *gin.Context) *RequestUser {
	value, exists := c.Get(currentUserContextKey)
	if !exists {
		return nil
	}
	user, ok := value.(*RequestUser)
	if !ok {
		return nil
	}
	return user
}
