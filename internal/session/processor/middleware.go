package processor

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GrantContextKey is where the middleware stores the validated SessionGrant.
const GrantContextKey = "session_grant"

// Middleware validates the session token on an agent session request. The
// token arrives as a "token" query parameter because browser WebSocket
// clients cannot set an Authorization header; a bearer header is accepted
// for non-browser callers.
func (p *SessionProcessor) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			header := c.GetHeader("Authorization")
			tokenString = strings.TrimPrefix(header, "Bearer ")
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing session token", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		grant, err := p.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session token", "code": "UNAUTHORIZED"})
			c.Abort()
			return
		}

		c.Set(GrantContextKey, grant)
		c.Next()
	}
}

// GrantFromContext returns the SessionGrant the middleware attached, if any.
func GrantFromContext(c *gin.Context) (SessionGrant, bool) {
	val, ok := c.Get(GrantContextKey)
	if !ok {
		return SessionGrant{}, false
	}
	grant, ok := val.(SessionGrant)
	return grant, ok
}
