package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orono-schools/tst-bank-api/internal/middleware"
	"github.com/orono-schools/tst-bank-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// canViewRequest reports whether the caller may read a ledger row: admins
// always, everyone else only rows they submitted.
func canViewRequest(c *gin.Context, rowEmail string) bool {
	claims := claimsFromContext(c)
	if claims == nil {
		return false
	}
	switch claims.Role {
	case models.RoleAdmin, models.RoleSuperAdmin:
		return true
	}
	return strings.EqualFold(claims.Email, rowEmail)
}
