package router

import (
	"occupancy_backend/internal/handlers"
	"occupancy_backend/internal/middleware"
	"occupancy_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupMetricsRoutes sets up the occupancy metrics routes.
// Viewers only see the 180-day limit report; revenue and commission figures need Admin or Manager.
func SetupMetricsRoutes(authenticatedGroup *gin.RouterGroup, metricsHandler *handlers.MetricsHandler) {
	authenticatedGroup.GET("/metrics/limit-180",
		middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager, models.RoleViewer),
		metricsHandler.Get180DayLimitReport)

	metricsRoutes := authenticatedGroup.Group("/metrics")
	metricsRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleManager))
	{
		metricsRoutes.GET("/portfolio", metricsHandler.GetPortfolioMetrics)
		metricsRoutes.GET("/snapshots", metricsHandler.GetSnapshots)

		propertyRoutes := metricsRoutes.Group("/properties/:name")
		{
			propertyRoutes.GET("", metricsHandler.GetPropertyMetrics)
			propertyRoutes.GET("/rooms", metricsHandler.GetPropertyRoomMetrics)
			propertyRoutes.GET("/yearly", metricsHandler.GetYearlyMetrics)
			propertyRoutes.GET("/compare", metricsHandler.CompareYears)
			propertyRoutes.GET("/cleanings", metricsHandler.GetCleaningSchedule)
		}
	}
}
