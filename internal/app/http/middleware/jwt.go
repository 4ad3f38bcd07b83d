package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"navibu-api/internal/api/response"
	"navibu-api/internal/auth"
	"navibu-api/internal/domain/apperr"

	"github.com/gin-gonic/gin"
)

const ctxUserID = "user_id"

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthMiddleware requires a valid bearer token and stores its user id in the context.
func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token malformed"})
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Next()
	}
}

// CurrentUserID returns the id stored by AuthMiddleware.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// RequireSelf rejects requests whose user id (path param, or query param of the
// same name) differs from the authenticated user. Must run after AuthMiddleware.
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Param(param)
		if raw == "" {
			raw = c.Query(param)
		}
		target, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param})
			return
		}

		if !IsSelf(c, uint(target)) {
			response.Error(c, apperr.ErrForbidden)
			return
		}
		c.Next()
	}
}

// IsSelf reports whether userID is the authenticated user.
func IsSelf(c *gin.Context, userID uint) bool {
	current, ok := CurrentUserID(c)
	return ok && current == userID
}
