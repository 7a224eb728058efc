package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/planMaster/backend/pkg/jwt"
)

// JWTAuth validates the bearer token and stores the caller's identity on the
// context. A token in the query string is accepted for EventSource clients,
// which cannot set headers.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			abortUnauthorized(c, "missing token")
			return
		}

		claims, err := jwt.ParseToken(secret, tokenString)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userName", claims.Name)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    40101,
		"message": message,
		"data":    nil,
	})
}
