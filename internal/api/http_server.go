package api

import (
	"time"

	"teamspace/internal/auth"
	"teamspace/internal/config"
	"teamspace/internal/mailer"
	"teamspace/internal/model"
	"teamspace/internal/service"
)

// HTTPHandler bundles the services behind the HTTP surface.
type HTTPHandler struct {
	cfg         config.Config
	repo        model.Repository
	authManager *auth.Manager

	authService      *service.AuthService
	userService      *service.UserService
	workspaceService *service.WorkspaceService
}

// NewHTTPHandler creates the HTTP handler and wires up the service layer.
func NewHTTPHandler(cfg config.Config, repo model.Repository, sender mailer.Sender) (*HTTPHandler, error) {
	accessExpiry := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	verifyExpiry := time.Duration(cfg.EmailVerifyExpirationHours) * time.Hour
	resetExpiry := time.Duration(cfg.PasswordResetExpirationHours) * time.Hour

	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, accessExpiry, verifyExpiry, resetExpiry)
	if err != nil {
		return nil, err
	}

	return &HTTPHandler{
		cfg:              cfg,
		repo:             repo,
		authManager:      authManager,
		authService:      service.NewAuthService(repo, authManager, sender, cfg.EmailVerificationEnabled),
		userService:      service.NewUserService(repo),
		workspaceService: service.NewWorkspaceService(repo),
	}, nil
}
