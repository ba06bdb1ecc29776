package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskrelay/taskrelay-api/internal/middleware"
	"github.com/taskrelay/taskrelay-api/internal/service"
	"github.com/taskrelay/taskrelay-api/pkg/config"
	"github.com/taskrelay/taskrelay-api/pkg/logger"
	corsmiddleware "github.com/taskrelay/taskrelay-api/pkg/middleware/cors"
	reqidmiddleware "github.com/taskrelay/taskrelay-api/pkg/middleware/requestid"
)

// Services bundles everything the router mounts.
type Services struct {
	Tokens      *service.TokenIssuer
	UserAuth    *service.AuthService
	AdminAuth   *service.AuthService
	Assignments *service.AssignmentService
	Directory   *service.DirectoryService
	OAuth       *service.OAuthService
	Metrics     *service.MetricsService
}

// NewRouter assembles the Gin engine with all middleware and routes.
func NewRouter(cfg *config.Config, logr *zap.Logger, svcs Services) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(svcs.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(svcs.Metrics.Handler()))

	requireAuth := middleware.RequireAuth(svcs.Tokens)

	userHandler := NewUserHandler(svcs.UserAuth, svcs.Assignments, svcs.Directory)
	adminHandler := NewAdminHandler(svcs.AdminAuth, svcs.Assignments, svcs.Directory)
	oauthHandler := NewOAuthHandler(svcs.OAuth, logr)

	api := r.Group(cfg.APIPrefix)

	users := api.Group("/users")
	{
		users.POST("/register", userHandler.Register)
		users.POST("/login", userHandler.Login)
		users.POST("/upload", requireAuth, userHandler.Upload)
		users.GET("/admins", requireAuth, userHandler.ListAdmins)
		users.GET("/assignments", requireAuth, userHandler.MyAssignments)
	}

	admins := api.Group("/admins")
	{
		admins.POST("/register", adminHandler.Register)
		admins.POST("/login", adminHandler.Login)
		admins.GET("/assignments", requireAuth, adminHandler.Assignments)
		admins.POST("/assignments/:id/accept", requireAuth, adminHandler.Accept)
		admins.POST("/assignments/:id/reject", requireAuth, adminHandler.Reject)
	}

	auth := api.Group("/auth")
	{
		auth.GET("/google", oauthHandler.UserLogin)
		auth.GET("/google/callback", oauthHandler.UserCallback)
		auth.GET("/admin/google", oauthHandler.AdminLogin)
		auth.GET("/admin/google/callback", oauthHandler.AdminCallback)
	}

	return r
}
