package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/beautymart/internal/pkg/auth"
	"github.com/polkiloo/beautymart/internal/server/http/dto"
)

const (
	// UserIDContextKey is a gin context key for authenticated user identifier.
	UserIDContextKey = "userID"
	// ClaimsContextKey is a gin context key for the full token claims.
	ClaimsContextKey = "claims"
	authCookieName   = "beautymart_token"
	tokenHeader      = "token"
)

// TokenParser resolves claims from an auth token.
type TokenParser interface {
	ParseToken(token string) (pkgAuth.Claims, error)
}

// AuthRequired ensures user is authenticated before accessing handler.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Failure("not authorized, login again"))
			return
		}

		claims, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Failure("invalid token"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Failure(err.Error()))
			return
		}

		c.Set(UserIDContextKey, claims.UserID)
		c.Set(ClaimsContextKey, claims)
		c.Next()
	}
}

// AdminRequired rejects callers without an admin role. It must follow AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := c.Get(ClaimsContextKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Failure("not authorized, login again"))
			return
		}
		if parsed, _ := claims.(pkgAuth.Claims); !parsed.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.Failure("admin access required"))
			return
		}
		c.Next()
	}
}

// extractToken looks at the bearer header, the storefront "token" header and
// the auth cookie, in that order.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if token := strings.TrimSpace(c.GetHeader(tokenHeader)); token != "" {
		return token
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
