package upload

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup) {
	uploadGroup := router.Group("/common/upload")
	uploadGroup.GET("/token", GetOSSToken)
}
