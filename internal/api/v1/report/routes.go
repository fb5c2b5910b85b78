package report

import (
	"modelmarket-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup) {
	reportGroup := router.Group("/reports")
	reportGroup.Use(middleware.AuthMiddleware())
	{
		reportGroup.GET("/rollups", GetRollups)
		reportGroup.GET("/top-listings", GetTopListings)
		reportGroup.GET("/listings/:id/timeline", GetListingTimeline)
	}
}

// RegisterAdminRoutes mounts the rollup computation endpoint; the
// caller wraps the group with AdminAuthMiddleware.
func RegisterAdminRoutes(router *gin.RouterGroup) {
	reportGroup := router.Group("/reports")
	{
		reportGroup.POST("/rollups", ComputeRollup)
	}
}
