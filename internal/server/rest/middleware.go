package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vpetrenko/accountd/internal/common"
)

// userContextKey is the gin context key under which the gate stores the
// authenticated user.
const userContextKey = "authUser"

// requireAuth gates protected endpoints. The two failure cases are distinct
// on the wire: a missing token is an authorization failure (401), while a
// token that resolves to no user is a failed token lookup (404). Both end
// the request here.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(common.AuthTokenHeaderName)
		if token == "" {
			s.logger.Warn(c.Request.Context(), "request without authorization token", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token is required"})
			return
		}

		user, err := s.identity.GetByToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "token does not resolve to a user"})
				return
			}
			s.logger.Error(c.Request.Context(), "token lookup failed", "error", err.Error())
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "an unexpected error occurred"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}
