package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"teamspace/internal/api"
	"teamspace/internal/config"
	"teamspace/internal/mailer"
	"teamspace/internal/metrics"
	"teamspace/internal/model"
)

func main() {
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		return
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		return
	}

	sender := mailer.NewSender(cfg)
	collector := metrics.NewCollector()

	httpHandler, err := api.NewHTTPHandler(cfg, repo, sender)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		return
	}

	authLimiter := api.NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(LoggingMiddleware())
	r.Use(CORSMiddleware())
	r.Use(collector.Middleware())
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", collector.Handler())

	apiGroup := r.Group("/api/v1")

	authGroup := apiGroup.Group("/auth")
	authGroup.Use(authLimiter.Middleware())
	authGroup.POST("/register", httpHandler.Register)
	authGroup.POST("/login", httpHandler.Login)
	authGroup.GET("/me", httpHandler.AuthMiddleware(), httpHandler.Me)
	authGroup.POST("/send-email-verification", httpHandler.SendEmailVerification)
	authGroup.POST("/verify-email", httpHandler.VerifyEmail)
	authGroup.POST("/forgot-password", httpHandler.ForgotPassword)
	authGroup.POST("/reset-password", httpHandler.ResetPassword)

	protected := apiGroup.Group("")
	protected.Use(httpHandler.AuthMiddleware())

	users := protected.Group("/users")
	users.GET("", httpHandler.RequireSuperuser(), httpHandler.ListUsers)
	users.GET("/:id", httpHandler.RequireSelfOrSuperuser(), httpHandler.GetUser)
	users.PATCH("/:id", httpHandler.RequireSelfOrSuperuser(), httpHandler.UpdateUser)
	users.POST("/:id/deactivate", httpHandler.RequireSelfOrSuperuser(), httpHandler.DeactivateUser)
	users.DELETE("/:id", httpHandler.RequireSuperuser(), httpHandler.DeleteUser)
	users.GET("/:id/workspaces", httpHandler.RequireSelfOrSuperuser(), httpHandler.GetUserWorkspaces)

	workspaces := protected.Group("/workspaces")
	workspaces.POST("", httpHandler.CreateWorkspace)
	workspaces.GET("/all", httpHandler.RequireSuperuser(), httpHandler.ListAllWorkspaces)
	workspaces.GET("/slug/:slug", httpHandler.GetWorkspaceBySlug)
	workspaces.GET("/:id", httpHandler.RequireWorkspaceAccess(), httpHandler.GetWorkspace)
	workspaces.PATCH("/:id", httpHandler.RequireWorkspaceAdmin(), httpHandler.UpdateWorkspace)
	workspaces.DELETE("/:id", httpHandler.RequireWorkspaceAdmin(), httpHandler.DeleteWorkspace)
	workspaces.GET("/:id/members", httpHandler.RequireWorkspaceAccess(), httpHandler.GetWorkspaceMembers)
	workspaces.POST("/:id/members", httpHandler.RequireWorkspaceAdmin(), httpHandler.AddWorkspaceMember)
	workspaces.PATCH("/:id/members/:user_id", httpHandler.RequireWorkspaceAdmin(), httpHandler.UpdateWorkspaceMember)
	workspaces.DELETE("/:id/members/:user_id", httpHandler.RequireWorkspaceAdmin(), httpHandler.RemoveWorkspaceMember)
	workspaces.DELETE("/:id/leave", httpHandler.RequireWorkspaceAccess(), httpHandler.LeaveWorkspace)

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	logger.WithField("host", serverHost).Info("server starting")
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	err = httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Error("server failed to start")
	}
}

// CORSMiddleware handles cross origin requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggingMiddleware records one structured log line per request.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  duration.String(),
			"size":      c.Writer.Size(),
			"client_ip": c.ClientIP(),
		}).Info("http_request")
	}
}
