package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/languagebridge/admin-api/internal/domain/entity"
	"github.com/languagebridge/admin-api/pkg/helpers"
	"github.com/languagebridge/admin-api/pkg/response"
)

// Auth validates the access token and ensures an active session exists in
// Redis. It sets userID and userType in the Gin context on success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			c.Abort()
			return
		}

		key := "user:session:" + claims.UserID
		data, err := rdb.HGetAll(c.Request.Context(), key).Result()
		if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
			c.Abort()
			return
		}

		userType, _ := strconv.Atoi(data["type"])
		c.Set("userID", data["user_id"])
		c.Set("userType", entity.RoleType(userType))
		c.Next()
	}
}

// RequireRole gates a route to the given role types. Auth must run first.
func RequireRole(roles ...entity.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := c.Get("userType")
		if ok {
			for _, r := range roles {
				if t == r {
					c.Next()
					return
				}
			}
		}
		response.Error[any](c, http.StatusForbidden, "insufficient role", nil)
		c.Abort()
	}
}
