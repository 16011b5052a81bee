package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sms-bridge/internal/domain"
)

const statusRecordTimeout = 2 * time.Second

// StatusRecorder persiste estados de entrega.
type StatusRecorder interface {
	Record(ctx context.Context, st domain.DeliveryStatus) error
}

// StatusHandler atiende los callbacks de estado de mensajes salientes.
type StatusHandler struct {
	logger   *zap.Logger
	recorder StatusRecorder
}

// NewStatusHandler crea el handler; recorder puede ser nil.
func NewStatusHandler(logger *zap.Logger, recorder StatusRecorder) *StatusHandler {
	return &StatusHandler{logger: logger, recorder: recorder}
}

// Callback maneja POST /sms/callback. Siempre responde 204.
func (h *StatusHandler) Callback(c *gin.Context) {
	st := domain.DeliveryStatus{
		MessageSID: c.Request.FormValue("MessageSid"),
		Status:     c.Request.FormValue("MessageStatus"),
		ErrorCode:  c.Request.FormValue("ErrorCode"),
	}

	h.logger.Info("status callback",
		zap.String("message_sid", st.MessageSID),
		zap.String("message_status", st.Status),
		zap.String("error_code", st.ErrorCode),
	)

	if h.recorder != nil && st.MessageSID != "" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), statusRecordTimeout)
		if err := h.recorder.Record(ctx, st); err != nil {
			h.logger.Warn("record delivery status failed", zap.String("message_sid", st.MessageSID), zap.Error(err))
		}
		cancel()
	}

	c.Status(http.StatusNoContent)
}
