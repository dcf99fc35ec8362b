package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"ai2sql/internal/dto"
	"ai2sql/internal/pkg/jwt"
	"ai2sql/pkg/constants"
	"ai2sql/pkg/responses"
)

// AuthMiddleware validates the bearer access token and stores the caller in the context
func AuthMiddleware(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			responses.ErrorWithCode(c, 401, "missing Authorization header")
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, constants.HeaderBearerPrefix) {
			responses.ErrorWithCode(c, 401, "malformed Authorization header")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, constants.HeaderBearerPrefix)

		claims, err := jwtManager.ValidateToken(token, constants.JWTTypeAccess)
		if err != nil {
			responses.Error(c, err)
			c.Abort()
			return
		}

		c.Set(constants.CtxUser, &dto.UserInfo{
			ID:       claims.UserID,
			Email:    claims.Email,
			Name:     claims.Name,
			AuthType: claims.AuthType,
		})
		c.Set(constants.CtxUserID, claims.UserID)

		c.Next()
	}
}

// GetUserID returns the authenticated user id, 0 when the request is anonymous
func GetUserID(c *gin.Context) int64 {
	return c.GetInt64(constants.CtxUserID)
}

// GetUser returns the identity stored by AuthMiddleware
func GetUser(c *gin.Context) (*dto.UserInfo, bool) {
	v, ok := c.Get(constants.CtxUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*dto.UserInfo)
	return user, ok
}
