package middleware

import (
	"net/http"

	"modelmarket-backend/internal/services"
	"modelmarket-backend/internal/utils"
	"modelmarket-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminAuthMiddleware validates that the user has admin privileges.
func AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
			c.Abort()
			return
		}

		isDenylisted, err := services.IsDenylisted(tokenString)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "Failed to check token status"))
			c.Abort()
			return
		}
		if isDenylisted {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Token has been revoked"))
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Invalid or expired token"))
			c.Abort()
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != "admin" {
			if logger.Log != nil {
				logger.Log.Warn("unauthorized admin access attempt",
					zap.String("path", c.Request.URL.Path),
					zap.String("ip", c.ClientIP()))
			}
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "Forbidden: Admins only"))
			c.Abort()
			return
		}

		// In test mode there is no database behind FindUserByID; the role
		// check above is enough for the middleware contract.
		if gin.Mode() != gin.TestMode {
			if userIDFloat, ok := claims["user_id"].(float64); ok {
				user, err := services.FindUserByID(uint(userIDFloat))
				if err == nil {
					c.Set("user", user)
				}
			}
		}

		c.Next()
	}
}
