package nlu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	dialogflow "cloud.google.com/go/dialogflow/apiv2"
	"cloud.google.com/go/dialogflow/apiv2/dialogflowpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sms-bridge/internal/config"
	"sms-bridge/internal/domain"
)

const defaultLanguageCode = "en-US"

type sessionsClient interface {
	DetectIntent(ctx context.Context, req *dialogflowpb.DetectIntentRequest, opts ...gax.CallOption) (*dialogflowpb.DetectIntentResponse, error)
	Close() error
}

// DialogflowDetector implementa IntentDetector sobre la API de sesiones de Dialogflow ES.
// Se construye una sola vez al arrancar y es seguro para uso concurrente.
type DialogflowDetector struct {
	client       sessionsClient
	projectID    string
	languageCode string
	timeout      time.Duration
	logger       *zap.Logger
}

// NewDialogflowDetector abre el cliente de sesiones con las credenciales configuradas
// (o Application Default Credentials si no se indica archivo).
func NewDialogflowDetector(ctx context.Context, cfg config.DialogflowConfig, logger *zap.Logger) (*DialogflowDetector, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := dialogflow.NewSessionsClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("dialogflow sessions client: %w", err)
	}
	return newDialogflowDetector(client, cfg, logger), nil
}

func newDialogflowDetector(client sessionsClient, cfg config.DialogflowConfig, logger *zap.Logger) *DialogflowDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	lang := strings.TrimSpace(cfg.LanguageCode)
	if lang == "" {
		lang = defaultLanguageCode
	}
	return &DialogflowDetector{
		client:       client,
		projectID:    cfg.ProjectID,
		languageCode: lang,
		timeout:      cfg.Timeout,
		logger:       logger,
	}
}

// Detect envía text a la sesión sessionID y devuelve el fulfillment text.
func (d *DialogflowDetector) Detect(ctx context.Context, text, sessionID string) (domain.DetectionResult, error) {
	return d.detect(ctx, sessionID, nil, &dialogflowpb.QueryInput{
		Input: &dialogflowpb.QueryInput_Text{
			Text: &dialogflowpb.TextInput{
				Text:         text,
				LanguageCode: d.languageCode,
			},
		},
	})
}

// DetectEvent dispara el evento event en la sesión sessionID.
func (d *DialogflowDetector) DetectEvent(ctx context.Context, event, sessionID string) (domain.DetectionResult, error) {
	if strings.TrimSpace(event) == "" {
		return domain.DetectionResult{}, &DetectionError{Kind: KindInvalidInput, Err: ErrEmptyEvent}
	}
	return d.detect(ctx, sessionID, nil, &dialogflowpb.QueryInput{
		Input: &dialogflowpb.QueryInput_Event{
			Event: &dialogflowpb.EventInput{
				Name:         event,
				LanguageCode: d.languageCode,
			},
		},
	})
}

// DetectAudio envía un clip de audio; Dialogflow infiere la codificación de la
// cabecera (WAV/FLAC).
func (d *DialogflowDetector) DetectAudio(ctx context.Context, audio []byte, sessionID string) (domain.DetectionResult, error) {
	if len(audio) == 0 {
		return domain.DetectionResult{}, &DetectionError{Kind: KindInvalidInput, Err: ErrEmptyAudio}
	}
	return d.detect(ctx, sessionID, audio, &dialogflowpb.QueryInput{
		Input: &dialogflowpb.QueryInput_AudioConfig{
			AudioConfig: &dialogflowpb.InputAudioConfig{
				LanguageCode: d.languageCode,
			},
		},
	})
}

func (d *DialogflowDetector) detect(ctx context.Context, sessionID string, audio []byte, input *dialogflowpb.QueryInput) (domain.DetectionResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return domain.DetectionResult{}, &DetectionError{Kind: KindInvalidInput, Err: ErrEmptySession}
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req := &dialogflowpb.DetectIntentRequest{
		Session:    d.sessionPath(sessionID),
		QueryInput: input,
		InputAudio: audio,
	}

	resp, err := d.client.DetectIntent(ctx, req)
	if err != nil {
		return domain.DetectionResult{}, &DetectionError{Kind: classify(err), Err: err}
	}

	qr := resp.GetQueryResult()
	if qr == nil {
		return domain.DetectionResult{}, &DetectionError{Kind: KindMalformed, Err: errors.New("response without query result")}
	}

	result := domain.DetectionResult{
		ResponseID:      resp.GetResponseId(),
		QueryText:       qr.GetQueryText(),
		FulfillmentText: qr.GetFulfillmentText(),
		Messages:        textMessages(qr.GetFulfillmentMessages()),
		IntentName:      qr.GetIntent().GetDisplayName(),
		Confidence:      qr.GetIntentDetectionConfidence(),
	}
	d.logger.Info("detected intent",
		zap.String("intent", result.IntentName),
		zap.Float32("confidence", result.Confidence),
	)
	return result, nil
}

// textMessages aplana los mensajes de texto del fulfillment; los demás tipos
// (cards, payloads) no tienen representación en SMS y se ignoran.
func textMessages(msgs []*dialogflowpb.Intent_Message) []string {
	var out []string
	for _, m := range msgs {
		out = append(out, m.GetText().GetText()...)
	}
	return out
}

// Close libera la conexión gRPC subyacente.
func (d *DialogflowDetector) Close() error {
	return d.client.Close()
}

func (d *DialogflowDetector) sessionPath(sessionID string) string {
	return fmt.Sprintf("projects/%s/agent/sessions/%s", d.projectID, sessionID)
}

func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}
	st, ok := status.FromError(err)
	if !ok {
		return KindUnknown
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return KindAuth
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled, codes.ResourceExhausted, codes.Aborted:
		return KindNetwork
	case codes.InvalidArgument, codes.NotFound:
		return KindInvalidInput
	case codes.Internal, codes.DataLoss:
		return KindMalformed
	default:
		return KindUnknown
	}
}
