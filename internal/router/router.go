package router

import (
	"net/http"

	"occupancy_backend/internal/handlers"
	"occupancy_backend/internal/middleware"
	"occupancy_backend/internal/services"
	"occupancy_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	Auth    services.AuthService
	Reports services.ReportService
	Tokens  *utils.TokenManager
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, svc Services) {
	authHandler := handlers.NewAuthHandler(svc.Auth)
	metricsHandler := handlers.NewMetricsHandler(svc.Reports)

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(svc.Tokens))
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupMetricsRoutes(authenticated, metricsHandler)
	}
}

func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.LoginUser)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetCurrentUser)
}
