package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sms-bridge/internal/domain"
	"sms-bridge/internal/nlu"
)

const maxAudioBytes = 10 << 20

var errAudioTooLarge = errors.New("audio file too large")

// QueryHandler expone el agente NLU por HTTP para pruebas y otros canales.
type QueryHandler struct {
	logger   *zap.Logger
	detector nlu.Querier
}

func NewQueryHandler(logger *zap.Logger, detector nlu.Querier) *QueryHandler {
	return &QueryHandler{logger: logger, detector: detector}
}

// Text maneja POST /query/text con los campos q y session.
func (h *QueryHandler) Text(c *gin.Context) {
	res, err := h.detector.Detect(c.Request.Context(), c.PostForm("q"), c.PostForm("session"))
	h.respond(c, "text", res, err)
}

// Event maneja POST /query/event con los campos event y session.
func (h *QueryHandler) Event(c *gin.Context) {
	res, err := h.detector.DetectEvent(c.Request.Context(), c.PostForm("event"), c.PostForm("session"))
	h.respond(c, "event", res, err)
}

// Audio maneja POST /query/audio (multipart) con el archivo en file y el campo session.
func (h *QueryHandler) Audio(c *gin.Context) {
	audio, err := readAudio(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.detector.DetectAudio(c.Request.Context(), audio, c.PostForm("session"))
	h.respond(c, "audio", res, err)
}

func (h *QueryHandler) respond(c *gin.Context, input string, res domain.DetectionResult, err error) {
	if err != nil {
		kind := nlu.KindOf(err)
		h.logger.Warn("query failed",
			zap.String("input", input),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		c.JSON(statusForKind(kind), gin.H{"error": string(kind)})
		return
	}
	if claims, ok := GetQueryClaims(c); ok {
		h.logger.Info("query", zap.String("input", input), zap.String("subject", claims.Subject), zap.String("intent", res.IntentName))
	}
	c.JSON(http.StatusOK, res)
}

func readAudio(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing audio file: %w", err)
	}
	if fh.Size > maxAudioBytes {
		return nil, errAudioTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxAudioBytes))
}

func statusForKind(kind nlu.ErrorKind) int {
	switch kind {
	case nlu.KindInvalidInput:
		return http.StatusBadRequest
	case nlu.KindNetwork:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
