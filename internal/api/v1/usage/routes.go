package usage

import (
	"modelmarket-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup) {
	usageGroup := router.Group("/usage")
	usageGroup.Use(middleware.AuthMiddleware())
	{
		usageGroup.POST("", RecordUsage)
		usageGroup.GET("", GetUsageEvents)
		usageGroup.GET("/stats", GetUsageStats)
		usageGroup.PATCH("/:id/feedback", UpdateFeedback)
	}
}
