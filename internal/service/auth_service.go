package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"teamspace/internal/apperr"
	"teamspace/internal/auth"
	"teamspace/internal/entity"
	"teamspace/internal/mailer"
	"teamspace/internal/model"
)

// AuthService handles registration, login, email verification and
// password-reset flows.
type AuthService struct {
	repo                model.Repository
	tokens              *auth.Manager
	sender              mailer.Sender
	verificationEnabled bool
}

// NewAuthService creates an auth service instance.
func NewAuthService(repo model.Repository, tokens *auth.Manager, sender mailer.Sender, verificationEnabled bool) *AuthService {
	return &AuthService{
		repo:                repo,
		tokens:              tokens,
		sender:              sender,
		verificationEnabled: verificationEnabled,
	}
}

// Register creates a new account. When email verification is enabled the
// account starts inactive with a stored pending verification token and
// becomes usable only after VerifyEmail succeeds.
func (s *AuthService) Register(ctx context.Context, req entity.AuthRegisterRequest) (*entity.DbUser, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, apperr.Validation("email is required")
	}
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("email already registered")
	} else if !isRecordNotFound(err) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.DbUser{
		Email:        email,
		PasswordHash: hash,
		Firstname:    strings.TrimSpace(req.Firstname),
		Lastname:     strings.TrimSpace(req.Lastname),
		IsActive:     true,
		IsSuperuser:  false,
	}

	var verifyToken string
	if s.verificationEnabled {
		verifyToken, err = s.tokens.GeneratePurposeToken(email, auth.PurposeEmailVerify)
		if err != nil {
			return nil, err
		}
		user.IsActive = false
		user.PendingVerificationToken = &verifyToken
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		// Concurrent registration with the same email loses the race at
		// the unique index.
		if isDuplicatedKey(err) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, err
	}

	if s.verificationEnabled {
		s.dispatchVerification(user.Email, verifyToken)
	}

	return user, nil
}

// Login authenticates by email and password and issues an access token.
// Unknown email, inactive account and wrong password all produce the
// same generic fault to avoid account enumeration.
func (s *AuthService) Login(ctx context.Context, req entity.AuthLoginRequest) (*entity.DbUser, string, time.Time, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, "", time.Time{}, apperr.PermissionDenied("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}

	if !user.IsActive {
		return nil, "", time.Time{}, apperr.PermissionDenied("invalid credentials")
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return nil, "", time.Time{}, apperr.PermissionDenied("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// VerifyEmail activates the account matching a valid verification token.
// The token must equal the account's currently stored pending token so a
// superseded token cannot be replayed. Already-active accounts succeed
// as a no-op.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	email, err := s.tokens.ParsePurposeToken(token, auth.PurposeEmailVerify)
	if err != nil {
		return apperr.PermissionDenied("invalid or expired verification token")
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if isRecordNotFound(err) {
			return apperr.PermissionDenied("invalid or expired verification token")
		}
		return err
	}

	if user.IsActive {
		return nil
	}

	if user.PendingVerificationToken == nil || *user.PendingVerificationToken != token {
		return apperr.PermissionDenied("invalid or expired verification token")
	}

	return s.repo.UpdateUser(ctx, user.ID, map[string]interface{}{
		"is_active":                  true,
		"pending_verification_token": nil,
	})
}

// SendEmailVerification issues and stores a fresh verification token,
// superseding any prior one. It silently no-ops when the user does not
// exist or is already active, so existence is not revealed.
func (s *AuthService) SendEmailVerification(ctx context.Context, email string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetUserByEmail(ctx, normalized)
	if err != nil {
		if isRecordNotFound(err) {
			return nil
		}
		return err
	}
	if user.IsActive {
		return nil
	}

	token, err := s.tokens.GeneratePurposeToken(user.Email, auth.PurposeEmailVerify)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUser(ctx, user.ID, map[string]interface{}{
		"pending_verification_token": token,
	}); err != nil {
		return err
	}

	s.dispatchVerification(user.Email, token)
	return nil
}

// ForgotPassword issues a password-reset token and dispatches it. It
// silently no-ops when no account matches the email.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetUserByEmail(ctx, normalized)
	if err != nil {
		if isRecordNotFound(err) {
			return nil
		}
		return err
	}

	token, err := s.tokens.GeneratePurposeToken(user.Email, auth.PurposePasswordReset)
	if err != nil {
		return err
	}

	subject, body := mailer.PasswordResetBody(token)
	if err := s.sender.Send(user.Email, subject, body); err != nil {
		logrus.WithError(err).WithField("email", user.Email).Warn("failed to send password reset mail")
	}
	return nil
}

// ResetPassword replaces the password hash of the account matching a
// valid reset token. Outstanding access tokens stay valid; stateless
// tokens cannot be revoked server-side.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.tokens.ParsePurposeToken(token, auth.PurposePasswordReset)
	if err != nil {
		return apperr.PermissionDenied("invalid or expired reset token")
	}

	if err := auth.ValidatePasswordStrength(newPassword); err != nil {
		return apperr.Validation(err.Error())
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if isRecordNotFound(err) {
			return apperr.PermissionDenied("invalid or expired reset token")
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.repo.UpdateUser(ctx, user.ID, map[string]interface{}{
		"password_hash": hash,
	})
}

// dispatchVerification sends the verification token. Failure is logged
// only: the token is already stored, so a later resend stays possible.
func (s *AuthService) dispatchVerification(email, token string) {
	subject, body := mailer.VerificationBody(token)
	if err := s.sender.Send(email, subject, body); err != nil {
		logrus.WithError(err).WithField("email", email).Warn("failed to send verification mail")
	}
}
