package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/messagely/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// requireToken verifies the bearer token and stores the authenticated
// username in the request context. Everything behind it can rely on
// identityFrom returning a non-empty value.
func (s *HTTPServer) requireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	username, err := auth.GetUsernameFromToken(token, s.jwtSecret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	c.Set(identityKey, username)
	c.Next()
}

func identityFrom(c *gin.Context) string {
	return c.GetString(identityKey)
}
