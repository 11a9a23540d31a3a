package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"teamspace/internal/entity"
)

// Register creates a new account. When email verification is enabled the
// response signals that the account still needs activation.
func (h *HTTPHandler) Register(c *gin.Context) {
	var req entity.AuthRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.authService.Register(ctx, req)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.RegisterResponse{
		User:                 makeUserSummary(user),
		VerificationRequired: !user.IsActive,
	})
}

// Login exchanges credentials for an access token.
func (h *HTTPHandler) Login(c *gin.Context) {
	var req entity.AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, token, expiresAt, err := h.authService.Login(ctx, req)
	if err != nil {
		// Credential faults all carry the same permission_denied message;
		// anything else is an infrastructure fault and maps to 500.
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      makeUserSummary(user),
	})
}

// Me returns the authenticated user's profile.
func (h *HTTPHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Unauthorized(c, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbUser, err := h.userService.GetByID(ctx, user.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, makeUserSummary(dbUser))
}

// SendEmailVerification issues a fresh verification token. The response
// is the same whether or not the email matches an account.
func (h *HTTPHandler) SendEmailVerification(c *gin.Context) {
	var req entity.SendEmailVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.SendEmailVerification(ctx, req.Email); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{
		Message: "if the account exists, a verification email has been sent",
	})
}

// VerifyEmail activates the account matching the verification token.
func (h *HTTPHandler) VerifyEmail(c *gin.Context) {
	var req entity.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.VerifyEmail(ctx, req.Token); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{Message: "email verified"})
}

// ForgotPassword issues a password reset token. The response is the same
// whether or not the email matches an account.
func (h *HTTPHandler) ForgotPassword(c *gin.Context) {
	var req entity.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.ForgotPassword(ctx, req.Email); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{
		Message: "if the account exists, a password reset email has been sent",
	})
}

// ResetPassword replaces the password behind a valid reset token.
func (h *HTTPHandler) ResetPassword(c *gin.Context) {
	var req entity.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity.MessageResponse{Message: "password updated"})
}

func makeUserSummary(user *entity.DbUser) entity.UserSummary {
	if user == nil {
		return entity.UserSummary{}
	}
	return entity.UserSummary{
		ID:          user.ID,
		Email:       user.Email,
		Firstname:   user.Firstname,
		Lastname:    user.Lastname,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
