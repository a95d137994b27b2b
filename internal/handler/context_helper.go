package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ringside/boxclub-api/internal/middleware"
	"github.com/ringside/boxclub-api/internal/models"
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

// actorFromContext builds the acting user from the token claims. Scope
// resolution only needs id, role and home gym, all of which the token
// carries.
func actorFromContext(c *gin.Context) *models.User {
	claims := claimsFromContext(c)
	if claims == nil {
		return nil
	}
	return &models.User{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
		GymID: claims.GymID,
	}
}
