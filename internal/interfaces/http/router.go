// Package http wires the HTTP surface: routes, middleware, and handlers.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/infrastructure/auth"
	"stockpilot/internal/infrastructure/config"
	"stockpilot/internal/interfaces/http/handlers"
	"stockpilot/internal/interfaces/http/middleware"
	"stockpilot/internal/shared/authorization"
	"stockpilot/internal/shared/logger"
)

// Router assembles the gin engine with the tier and admin route groups.
type Router struct {
	engine       *gin.Engine
	tierHandler  *handlers.TierHandler
	adminHandler *handlers.AdminHandler
	authMw       *middleware.AuthMiddleware
	cfg          *config.Config
	logger       logger.Interface
}

// NewRouter creates a new router
func NewRouter(
	tierHandler *handlers.TierHandler,
	adminHandler *handlers.AdminHandler,
	jwtService *auth.JWTService,
	cfg *config.Config,
	log logger.Interface,
) *Router {
	return &Router{
		engine:       gin.New(),
		tierHandler:  tierHandler,
		adminHandler: adminHandler,
		authMw:       middleware.NewAuthMiddleware(jwtService, log),
		cfg:          cfg,
		logger:       log,
	}
}

// SetupRoutes registers middleware and all API routes.
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.RequestLogger(r.logger))
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.ErrorHandler())

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.engine.Group("/api/v1")

	tierGroup := v1.Group("/tier")
	tierGroup.Use(r.authMw.RequireAuth())
	{
		tierGroup.GET("/status", r.tierHandler.GetStatus)
		tierGroup.POST("/features/validate", r.tierHandler.ValidateFeature)
		tierGroup.POST("/features/validate-bulk", r.tierHandler.ValidateFeaturesBulk)
		tierGroup.POST("/features/check", r.tierHandler.CheckUsage)
		tierGroup.GET("/usage", r.tierHandler.GetUsageSummary)
		tierGroup.POST("/usage", r.tierHandler.TrackUsage)
		tierGroup.GET("/history", r.tierHandler.GetHistory)
	}

	adminGroup := v1.Group("/admin")
	adminGroup.Use(r.authMw.RequireAuth(), authorization.RequireAdmin())
	{
		adminGroup.PUT("/accounts/:id/plan", r.adminHandler.UpdatePlan)
		adminGroup.GET("/accounts/:id/history", r.adminHandler.GetAccountHistory)
		adminGroup.POST("/jobs/downgrade-expired", r.adminHandler.RunDowngradeSweep)
		adminGroup.POST("/jobs/notify-expiring", r.adminHandler.RunExpirationNotices)
	}
}

// GetEngine returns the underlying gin engine.
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
