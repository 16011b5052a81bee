package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sms-bridge/internal/service"
)

const queryClaimsKey = "query_claims"

// QueryAuthMiddleware valida el bearer token de la API de consultas y guarda los claims en el contexto.
func QueryAuthMiddleware(tokens *service.QueryTokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query auth not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := tokens.Parse(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(queryClaimsKey, claims)
		c.Next()
	}
}

// GetQueryClaims obtiene los claims del token desde el contexto.
func GetQueryClaims(c *gin.Context) (service.QueryClaims, bool) {
	val, ok := c.Get(queryClaimsKey)
	if !ok {
		return service.QueryClaims{}, false
	}
	claims, ok := val.(service.QueryClaims)
	return claims, ok
}
