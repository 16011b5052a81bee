package telephony

import (
	"context"
	"errors"
	"fmt"
	"strings"

	twilio "github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"sms-bridge/internal/domain"
)

var (
	ErrSenderNotConfigured = errors.New("sms sender not configured")
	ErrInvalidOutbound     = errors.New("outbound message requires to and body")
)

// Sender define el envío de SMS salientes.
type Sender interface {
	Send(ctx context.Context, msg domain.OutboundMessage) (string, error)
}

type messageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// RESTSender envía SMS por la API REST de Twilio. Si el mensaje trae
// StatusCallback, Twilio reporta los cambios de estado a ese endpoint.
type RESTSender struct {
	api  messageCreator
	from string
}

func NewRESTSender(accountSID, authToken, from string) (*RESTSender, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, ErrSenderNotConfigured
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &RESTSender{api: client.Api, from: from}, nil
}

// Send devuelve el MessageSid asignado por Twilio.
func (s *RESTSender) Send(ctx context.Context, msg domain.OutboundMessage) (string, error) {
	if s == nil || s.api == nil {
		return "", ErrSenderNotConfigured
	}
	to := strings.TrimSpace(msg.To)
	if to == "" || msg.Body == "" {
		return "", ErrInvalidOutbound
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(msg.Body)
	if msg.StatusCallback != "" {
		params.SetStatusCallback(msg.StatusCallback)
	}

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio create message: %w", err)
	}
	if resp == nil || resp.Sid == nil {
		return "", errors.New("twilio create message: response without sid")
	}
	return *resp.Sid, nil
}
