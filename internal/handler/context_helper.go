package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/taskrelay/taskrelay-api/internal/middleware"
	"github.com/taskrelay/taskrelay-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.TokenClaims {
	value, exists := c.Get(middleware.ContextPrincipalKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
