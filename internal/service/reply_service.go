package service

import (
	"context"

	"go.uber.org/zap"

	"sms-bridge/internal/domain"
	"sms-bridge/internal/nlu"
)

// FallbackReply se envía cuando el proveedor NLU falla.
const FallbackReply = "I'm sorry - I wasn't able to process that message"

// ReplyService resuelve el texto de respuesta para un SMS entrante.
type ReplyService struct {
	detector nlu.IntentDetector
	cache    ReplyCache
	logger   *zap.Logger
}

// NewReplyService crea el servicio; cache puede ser nil.
func NewReplyService(detector nlu.IntentDetector, cache ReplyCache, logger *zap.Logger) *ReplyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplyService{detector: detector, cache: cache, logger: logger}
}

// Reply nunca falla: cualquier error de detección se degrada a FallbackReply.
// El remitente se usa como id de sesión NLU.
func (s *ReplyService) Reply(ctx context.Context, msg domain.InboundMessage) domain.Reply {
	if s.cache != nil && msg.SID != "" {
		cached, ok, err := s.cache.Get(ctx, msg.SID)
		if err != nil {
			s.logger.Warn("reply cache get failed", zap.String("message_sid", msg.SID), zap.Error(err))
		} else if ok {
			s.logger.Info("reply served from cache", zap.String("message_sid", msg.SID))
			return domain.Reply{Text: cached, Cached: true}
		}
	}

	if s.detector == nil {
		s.logger.Error("intent detector not configured")
		return domain.Reply{Text: FallbackReply, Fallback: true}
	}

	result, err := s.detector.Detect(ctx, msg.Body, msg.From)
	if err != nil {
		s.logger.Error("detect intent failed",
			zap.String("kind", string(nlu.KindOf(err))),
			zap.String("from", msg.From),
			zap.Error(err),
		)
		return domain.Reply{Text: FallbackReply, Fallback: true}
	}

	if s.cache != nil && msg.SID != "" {
		if err := s.cache.Put(ctx, msg.SID, result.FulfillmentText); err != nil {
			s.logger.Warn("reply cache put failed", zap.String("message_sid", msg.SID), zap.Error(err))
		}
	}
	return domain.Reply{Text: result.FulfillmentText}
}
