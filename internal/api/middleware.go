package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/naija-amebo-api/internal/auth"
)

const claimsKey = "claims"

// optionalAuth attaches the caller's claims when a token is supplied, either
// as a bearer header or the access_token query parameter. A bad token is a 401.
func optionalAuth(jwt *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := jwt.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("invalid or expired token", nil))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requireUser rejects anonymous requests
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claimsFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("authentication required", nil))
			return
		}
		c.Next()
	}
}

// requireAdmin rejects callers without the admin role
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("authentication required", nil))
			return
		}
		if !claims.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody("admin role required", nil))
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("access_token")
}

func claimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
