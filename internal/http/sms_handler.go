package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sms-bridge/internal/domain"
	"sms-bridge/internal/service"
	"sms-bridge/internal/telephony"
)

// Replier resuelve el texto de respuesta para un SMS entrante.
type Replier interface {
	Reply(ctx context.Context, msg domain.InboundMessage) domain.Reply
}

// SMSHandler atiende el webhook de SMS entrantes.
type SMSHandler struct {
	logger   *zap.Logger
	replies  Replier
	fallback []byte
}

// NewSMSHandler crea una instancia de SMSHandler con dependencias necesarias.
func NewSMSHandler(logger *zap.Logger, replies Replier) (*SMSHandler, error) {
	fallback, err := telephony.MessagingResponse(service.FallbackReply)
	if err != nil {
		return nil, err
	}
	return &SMSHandler{logger: logger, replies: replies, fallback: fallback}, nil
}

// Reply maneja GET|POST /sms.
func (h *SMSHandler) Reply(c *gin.Context) {
	msg := domain.InboundMessage{
		SID:  c.Request.FormValue("MessageSid"),
		From: c.Request.FormValue("From"),
		Body: c.Request.FormValue("Body"),
	}

	reply := h.replies.Reply(c.Request.Context(), msg)
	h.logger.Info("sms reply",
		zap.String("message_sid", msg.SID),
		zap.String("from", msg.From),
		zap.Bool("fallback", reply.Fallback),
		zap.Bool("cached", reply.Cached),
	)

	body, err := telephony.MessagingResponse(reply.Text)
	if err != nil {
		h.logger.Error("render twiml failed", zap.Error(err))
		body = h.fallback
	}
	c.Data(http.StatusOK, telephony.TwiMLContentType, body)
}
