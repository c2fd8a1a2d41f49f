package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/vistari-app/vistari-api/internal/middleware"
	"github.com/vistari-app/vistari-api/internal/models"
)

// claimsFromContext returns the authenticated user's claims, nil when
// the route was reached without the JWT middleware.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	if claims, isClaims := value.(*models.JWTClaims); isClaims {
		return claims
	}
	return nil
}
