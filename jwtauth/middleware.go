package jwtauth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Gin returns a Gin middleware handler guarding the routes it is attached to.
// Accepted requests carry the caller's Claims in c.Request.Context().
func (g *Gate) Gin() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = withRequestID(c.Request)

		claims, err := g.authorizeRequest(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Reason: UnauthorizedReason})
			return
		}

		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}
