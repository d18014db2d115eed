package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"filevault-api/internal/infrastructure/jwt"
)

const (
	CtxUserID    = "userID"
	CtxUserEmail = "userEmail"
	CtxUserName  = "userName"
)

func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "missing Authorization header"},
			)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token format"},
			)
			return
		}

		id, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token"},
			)
			return
		}

		c.Set(CtxUserID, id.UserID)
		c.Set(CtxUserEmail, id.Email)
		c.Set(CtxUserName, id.Name)

		c.Next()
	}
}

// ActorID returns the authenticated user id set by AuthMiddleware.
func ActorID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// Identity returns the full token identity set by AuthMiddleware.
func Identity(c *gin.Context) (jwt.Identity, bool) {
	id, ok := ActorID(c)
	if !ok {
		return jwt.Identity{}, false
	}
	return jwt.Identity{
		UserID: id,
		Email:  c.GetString(CtxUserEmail),
		Name:   c.GetString(CtxUserName),
	}, true
}
