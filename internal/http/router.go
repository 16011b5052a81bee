package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sms-bridge/internal/service"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// NewRouter configura el router de Gin con middlewares y rutas del webhook.
// Las rutas /query solo se registran si queryH no es nil.
func NewRouter(
	logger *zap.Logger,
	validator RequestValidator,
	tokens *service.QueryTokenService,
	smsH *SMSHandler,
	statusH *StatusHandler,
	queryH *QueryHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(requestIDMiddleware(), zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	sms := r.Group("/sms", TwilioSignatureMiddleware(validator, logger))
	sms.GET("", smsH.Reply)
	sms.POST("", smsH.Reply)
	sms.POST("/callback", statusH.Callback)

	if queryH != nil {
		query := r.Group("/query", QueryAuthMiddleware(tokens))
		query.POST("/text", queryH.Text)
		query.POST("/event", queryH.Event)
		query.POST("/audio", queryH.Audio)
	}

	return r
}

// requestIDMiddleware propaga X-Request-Id o genera uno nuevo.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}
