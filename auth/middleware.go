package auth

import (
	"net/http"
	"strings"

	"leadcrm-backend/models"

	"github.com/gin-gonic/gin"
)

const contextKey = "session_user"

// RequireSession rejects requests without a valid session. The token is read
// from the session cookie first, then from a Bearer Authorization header.
func RequireSession(tm *TokenManager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := TokenFromRequest(c, cookieName)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, err := tm.Parse(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(contextKey, *user)
		c.Next()
	}
}

// RequireRoles must run after RequireSession.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !user.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the session user stored by RequireSession.
func CurrentUser(c *gin.Context) (SessionUser, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return SessionUser{}, false
	}
	user, ok := v.(SessionUser)
	return user, ok
}

// TokenFromRequest extracts the raw session token, or "" if none.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil && v != "" {
			return v
		}
	}

	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
