package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/receptia/scheduling-api/internal/middleware"
	"github.com/receptia/scheduling-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.AccessClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.AccessClaims)
	if !ok {
		return nil
	}
	return claims
}

// businessIDFromContext returns the business scope of the authenticated
// caller, empty when unauthenticated.
func businessIDFromContext(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.BusinessID
}
