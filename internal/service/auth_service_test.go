package service

import (
	"context"
	"testing"
	"time"

	"teamspace/internal/apperr"
	"teamspace/internal/auth"
	"teamspace/internal/entity"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeSender struct {
	sent []sentMail
}

func (f *fakeSender) Send(to, subject, body string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func newTestTokenManager(t *testing.T) *auth.Manager {
	t.Helper()
	m, err := auth.NewManager("test-secret", "teamspace-test", 30*time.Minute, time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("failed to create token manager: %v", err)
	}
	return m
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	sender := &fakeSender{}
	svc := NewAuthService(repo, newTestTokenManager(t), sender, false)

	user, err := svc.Register(ctx, entity.AuthRegisterRequest{
		Email:     "Alice@Example.COM",
		Password:  "Str0ngPass",
		Firstname: "Alice",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("expected normalized email, got %s", user.Email)
	}
	if !user.IsActive {
		t.Error("account should be active when verification is disabled")
	}
	if user.PasswordHash == "Str0ngPass" {
		t.Error("password must be stored hashed")
	}
	if len(sender.sent) != 0 {
		t.Errorf("no mail should be sent when verification is disabled, got %d", len(sender.sent))
	}

	loggedIn, token, expiresAt, err := svc.Login(ctx, entity.AuthLoginRequest{
		Email:    "alice@example.com",
		Password: "Str0ngPass",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, loggedIn.ID)
	}
	if token == "" {
		t.Error("expected a non-empty access token")
	}
	if !expiresAt.After(time.Now()) {
		t.Error("expected expiry in the future")
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeRepo(), newTestTokenManager(t), &fakeSender{}, false)

	_, err := svc.Register(ctx, entity.AuthRegisterRequest{
		Email:    "bob@example.com",
		Password: "short",
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeRepo(), newTestTokenManager(t), &fakeSender{}, false)

	if _, err := svc.Register(ctx, entity.AuthRegisterRequest{Email: "bob@example.com", Password: "Str0ngPass"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	// Same address with different case still collides.
	_, err := svc.Register(ctx, entity.AuthRegisterRequest{Email: "BOB@example.com", Password: "Str0ngPass"})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewAuthService(repo, newTestTokenManager(t), &fakeSender{}, false)

	user, err := svc.Register(ctx, entity.AuthRegisterRequest{Email: "carol@example.com", Password: "Str0ngPass"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	tests := []struct {
		name  string
		setup func(t *testing.T)
		req   entity.AuthLoginRequest
	}{
		{
			name: "UnknownEmail",
			req:  entity.AuthLoginRequest{Email: "nobody@example.com", Password: "Str0ngPass"},
		},
		{
			name: "WrongPassword",
			req:  entity.AuthLoginRequest{Email: "carol@example.com", Password: "WrongPass1"},
		},
		{
			name: "InactiveAccount",
			setup: func(t *testing.T) {
				if err := repo.UpdateUser(ctx, user.ID, map[string]interface{}{"is_active": false}); err != nil {
					t.Fatalf("failed to deactivate: %v", err)
				}
			},
			req: entity.AuthLoginRequest{Email: "carol@example.com", Password: "Str0ngPass"},
		},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup(t)
			}
			_, _, _, err := svc.Login(ctx, tt.req)
			if !apperr.IsKind(err, apperr.KindPermissionDenied) {
				t.Fatalf("expected permission denied, got %v", err)
			}
			messages = append(messages, err.Error())
		})
	}

	for i := 1; i < len(messages); i++ {
		if messages[i] != messages[0] {
			t.Errorf("login failure messages differ: %q vs %q", messages[0], messages[i])
		}
	}
}

func TestRegisterWithVerification(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	sender := &fakeSender{}
	svc := NewAuthService(repo, newTestTokenManager(t), sender, true)

	user, err := svc.Register(ctx, entity.AuthRegisterRequest{Email: "dave@example.com", Password: "Str0ngPass"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.IsActive {
		t.Error("account should start inactive when verification is enabled")
	}
	if user.PendingVerificationToken == nil {
		t.Fatal("expected a pending verification token to be stored")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one verification mail, got %d", len(sender.sent))
	}
	if sender.sent[0].to != "dave@example.com" {
		t.Errorf("mail went to %s", sender.sent[0].to)
	}

	// Unverified accounts cannot log in.
	if _, _, _, err := svc.Login(ctx, entity.AuthLoginRequest{Email: "dave@example.com", Password: "Str0ngPass"}); err == nil {
		t.Error("expected login to fail before verification")
	}

	if err := svc.VerifyEmail(ctx, *user.PendingVerificationToken); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	verified, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if !verified.IsActive {
		t.Error("account should be active after verification")
	}
	if verified.PendingVerificationToken != nil {
		t.Error("pending token should be cleared after verification")
	}

	if _, _, _, err := svc.Login(ctx, entity.AuthLoginRequest{Email: "dave@example.com", Password: "Str0ngPass"}); err != nil {
		t.Errorf("login should succeed after verification: %v", err)
	}

	// Verifying an already-active account is a no-op.
	if err := svc.VerifyEmail(ctx, *user.PendingVerificationToken); err != nil {
		t.Errorf("re-verification should be a no-op: %v", err)
	}
}

func TestVerifyEmailRejectsSupersededToken(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := NewAuthService(repo, newTestTokenManager(t), &fakeSender{}, true)

	user, err := svc.Register(ctx, entity.AuthRegisterRequest{Email: "erin@example.com", Password: "Str0ngPass"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	staleToken := *user.PendingVerificationToken

	// A later resend replaces the stored token; the stale one must stop
	// working even though its signature and expiry are still valid.
	if err := repo.UpdateUser(ctx, user.ID, map[string]interface{}{
		"pending_verification_token": "superseded-by-resend",
	}); err != nil {
		t.Fatalf("failed to replace token: %v", err)
	}

	err = svc.VerifyEmail(ctx, staleToken)
	if !apperr.IsKind(err, apperr.KindPermissionDenied) {
		t.Errorf("expected permission denied for superseded token, got %v", err)
	}
}

func TestVerifyEmailRejectsGarbageToken(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeRepo(), newTestTokenManager(t), &fakeSender{}, true)

	err := svc.VerifyEmail(ctx, "not-a-token")
	if !apperr.IsKind(err, apperr.KindPermissionDenied) {
		t.Errorf("expected permission denied, got %v", err)
	}
}

func TestSendEmailVerificationSilentNoOps(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	sender := &fakeSender{}
	svc := NewAuthService(repo, newTestTokenManager(t), sender, false)

	// Unknown address: succeed without sending.
	if err := svc.SendEmailVerification(ctx, "ghost@example.com"); err != nil {
		t.Errorf("expected silent no-op for unknown email: %v", err)
	}

	// Active account: succeed without sending.
	if _, err := svc.Register(ctx, entity.AuthRegisterRequest{Email: "frank@example.com", Password: "Str0ngPass"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := svc.SendEmailVerification(ctx, "frank@example.com"); err != nil {
		t.Errorf("expected silent no-op for active account: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no mail, got %d", len(sender.sent))
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	svc := NewAuthService(newFakeRepo(), newTestTokenManager(t), sender, false)

	if err := svc.ForgotPassword(ctx, "ghost@example.com"); err != nil {
		t.Errorf("expected silent no-op for unknown email: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no mail, got %d", len(sender.sent))
	}
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	tokens := newTestTokenManager(t)
	svc := NewAuthService(repo, tokens, &fakeSender{}, false)

	if _, err := svc.Register(ctx, entity.AuthRegisterRequest{Email: "grace@example.com", Password: "OldPassw0rd"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	resetToken, err := tokens.GeneratePurposeToken("grace@example.com", auth.PurposePasswordReset)
	if err != nil {
		t.Fatalf("failed to generate reset token: %v", err)
	}

	// Weak replacement password is rejected before any write.
	if err := svc.ResetPassword(ctx, resetToken, "weak"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	if err := svc.ResetPassword(ctx, resetToken, "NewPassw0rd"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	if _, _, _, err := svc.Login(ctx, entity.AuthLoginRequest{Email: "grace@example.com", Password: "OldPassw0rd"}); err == nil {
		t.Error("old password should no longer work")
	}
	if _, _, _, err := svc.Login(ctx, entity.AuthLoginRequest{Email: "grace@example.com", Password: "NewPassw0rd"}); err != nil {
		t.Errorf("new password should work: %v", err)
	}
}

func TestResetPasswordRejectsVerificationToken(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	tokens := newTestTokenManager(t)
	svc := NewAuthService(repo, tokens, &fakeSender{}, false)

	if _, err := svc.Register(ctx, entity.AuthRegisterRequest{Email: "heidi@example.com", Password: "OldPassw0rd"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	verifyToken, err := tokens.GeneratePurposeToken("heidi@example.com", auth.PurposeEmailVerify)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	err = svc.ResetPassword(ctx, verifyToken, "NewPassw0rd")
	if !apperr.IsKind(err, apperr.KindPermissionDenied) {
		t.Errorf("expected permission denied for wrong-purpose token, got %v", err)
	}
}
