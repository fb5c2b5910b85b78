package developer

import (
	"modelmarket-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup) {
	devGroup := router.Group("/developers")
	devGroup.Use(middleware.AuthMiddleware())
	{
		devGroup.POST("", RegisterDeveloper)
		devGroup.GET("/me", GetMyProfile)
		devGroup.PUT("/me", UpdateMyProfile)
		devGroup.GET("/me/revenue", GetMyRevenue)
		devGroup.GET("/me/quota", GetMyQuota)
	}
}

// RegisterAdminRoutes mounts the admin-only developer operations; the
// caller wraps the group with AdminAuthMiddleware.
func RegisterAdminRoutes(router *gin.RouterGroup) {
	devGroup := router.Group("/developers")
	{
		devGroup.PATCH("/:id/status", UpdateDeveloperStatus)
		devGroup.POST("/:id/reset-usage", ResetMonthlyUsage)
	}
}
