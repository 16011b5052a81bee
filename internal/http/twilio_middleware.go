package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestValidator valida la firma de un webhook entrante.
type RequestValidator interface {
	ValidRequest(r *http.Request) bool
	ExternalURL(r *http.Request) string
}

// TwilioSignatureMiddleware rechaza con 403 y body vacío todo request cuya firma
// no coincida, antes de que corra cualquier handler.
func TwilioSignatureMiddleware(validator RequestValidator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validator == nil {
			logger.Error("twilio validator not configured")
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		if err := c.Request.ParseForm(); err != nil {
			logger.Warn("parse webhook form failed", zap.Error(err))
		}

		if !validator.ValidRequest(c.Request) {
			logger.Info("rejected webhook with invalid signature",
				zap.String("url", validator.ExternalURL(c.Request)),
				zap.Any("headers", c.Request.Header),
			)
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Next()
	}
}
