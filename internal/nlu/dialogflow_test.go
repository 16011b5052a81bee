package nlu

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/dialogflow/apiv2/dialogflowpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sms-bridge/internal/config"
)

type fakeSessionsClient struct {
	resp    *dialogflowpb.DetectIntentResponse
	err     error
	lastReq *dialogflowpb.DetectIntentRequest
	calls   int
	closed  bool
	hadDead bool
}

func (f *fakeSessionsClient) DetectIntent(ctx context.Context, req *dialogflowpb.DetectIntentRequest, _ ...gax.CallOption) (*dialogflowpb.DetectIntentResponse, error) {
	f.calls++
	f.lastReq = req
	_, f.hadDead = ctx.Deadline()
	return f.resp, f.err
}

func (f *fakeSessionsClient) Close() error {
	f.closed = true
	return nil
}

func testDialogflowConfig() config.DialogflowConfig {
	return config.DialogflowConfig{
		ProjectID:    "my-agent",
		LanguageCode: "en-US",
		Timeout:      5 * time.Second,
	}
}

func TestDialogflowDetector_Success(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	client := &fakeSessionsClient{
		resp: &dialogflowpb.DetectIntentResponse{
			QueryResult: &dialogflowpb.QueryResult{
				FulfillmentText:           "Hi there!",
				Intent:                    &dialogflowpb.Intent{DisplayName: "greeting"},
				IntentDetectionConfidence: 0.87,
			},
		},
	}
	d := newDialogflowDetector(client, testDialogflowConfig(), zap.New(core))

	res, err := d.Detect(context.Background(), "hello", "+15551234567")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.FulfillmentText != "Hi there!" {
		t.Fatalf("unexpected fulfillment text %q", res.FulfillmentText)
	}
	if res.IntentName != "greeting" || res.Confidence != 0.87 {
		t.Fatalf("unexpected diagnostics %+v", res)
	}

	if got := client.lastReq.GetSession(); got != "projects/my-agent/agent/sessions/+15551234567" {
		t.Fatalf("unexpected session path %q", got)
	}
	textInput := client.lastReq.GetQueryInput().GetText()
	if textInput.GetText() != "hello" || textInput.GetLanguageCode() != "en-US" {
		t.Fatalf("unexpected text input %+v", textInput)
	}
	if !client.hadDead {
		t.Fatalf("expected deadline on outgoing context")
	}

	entries := logs.FilterMessage("detected intent").All()
	if len(entries) != 1 {
		t.Fatalf("expected one detected intent log, got %d", len(entries))
	}
	if entries[0].ContextMap()["intent"] != "greeting" {
		t.Fatalf("expected intent field in log, got %+v", entries[0].ContextMap())
	}
}

func TestDialogflowDetector_EmptyFulfillment(t *testing.T) {
	client := &fakeSessionsClient{
		resp: &dialogflowpb.DetectIntentResponse{QueryResult: &dialogflowpb.QueryResult{}},
	}
	d := newDialogflowDetector(client, testDialogflowConfig(), zap.NewNop())

	res, err := d.Detect(context.Background(), "", "s1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.FulfillmentText != "" {
		t.Fatalf("expected empty fulfillment text, got %q", res.FulfillmentText)
	}
}

func TestDialogflowDetector_DefaultLanguage(t *testing.T) {
	client := &fakeSessionsClient{
		resp: &dialogflowpb.DetectIntentResponse{QueryResult: &dialogflowpb.QueryResult{}},
	}
	cfg := testDialogflowConfig()
	cfg.LanguageCode = " "
	cfg.Timeout = 0
	d := newDialogflowDetector(client, cfg, nil)

	if _, err := d.Detect(context.Background(), "hola", "s1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := client.lastReq.GetQueryInput().GetText().GetLanguageCode(); got != "en-US" {
		t.Fatalf("expected default language, got %q", got)
	}
	if client.hadDead {
		t.Fatalf("expected no deadline when timeout is zero")
	}
}

func TestDialogflowDetector_EmptySessionSkipsCall(t *testing.T) {
	client := &fakeSessionsClient{}
	d := newDialogflowDetector(client, testDialogflowConfig(), zap.NewNop())

	_, err := d.Detect(context.Background(), "hello", "  ")
	if KindOf(err) != KindInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if !errors.Is(err, ErrEmptySession) {
		t.Fatalf("expected ErrEmptySession in chain, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("expected provider not called")
	}
}

func TestDialogflowDetector_ErrorKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"unavailable", status.Error(codes.Unavailable, "connection refused"), KindNetwork},
		{"deadline", context.DeadlineExceeded, KindNetwork},
		{"unauthenticated", status.Error(codes.Unauthenticated, "bad creds"), KindAuth},
		{"permission", status.Error(codes.PermissionDenied, "no access"), KindAuth},
		{"invalid", status.Error(codes.InvalidArgument, "bad session"), KindInvalidInput},
		{"plain", errors.New("boom"), KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeSessionsClient{err: tc.err}
			d := newDialogflowDetector(client, testDialogflowConfig(), zap.NewNop())

			_, err := d.Detect(context.Background(), "hello", "s1")
			var detErr *DetectionError
			if !errors.As(err, &detErr) {
				t.Fatalf("expected DetectionError, got %v", err)
			}
			if detErr.Kind != tc.want {
				t.Fatalf("expected kind %s, got %s", tc.want, detErr.Kind)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected cause preserved")
			}
		})
	}
}

func TestDialogflowDetector_MissingQueryResult(t *testing.T) {
	client := &fakeSessionsClient{resp: &dialogflowpb.DetectIntentResponse{}}
	d := newDialogflowDetector(client, testDialogflowConfig(), zap.NewNop())

	_, err := d.Detect(context.Background(), "hello", "s1")
	if KindOf(err) != KindMalformed {
		t.Fatalf("expected malformed, got %v", err)
	}
}

func TestDialogflowDetector_Close(t *testing.T) {
	client := &fakeSessionsClient{}
	d := newDialogflowDetector(client, testDialogflowConfig(), zap.NewNop())
	if err := d.Close(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !client.closed {
		t.Fatalf("expected client closed")
	}
}

func TestDialogflowDetector_DetectEvent(t *testing.T) {
	client := &fakeSessionsClient{
		resp: &dialogflowpb.DetectIntentResponse{
			ResponseId: "resp-1",
			QueryResult: &dialogflowpb.QueryResult{
				QueryText:       "WELCOME",
				FulfillmentText: "Welcome!",
				FulfillmentMessages: []*dialogflowpb.Intent_Message{
					{Message: &dialogflowpb.Intent_Message_Text_{Text: &dialogflowpb.Intent_Message_Text{Text: []string{"Welcome!", "How can I help?"}}}},
					{Message: &dialogflowpb.Intent_Message_Image_{Image: &dialogflowpb.Intent_Message_Image{ImageUri: "https://img"}}},
				},
			},
		},
	}
	d := newDialogflowDetector(client, testDialogflowConfig(), zap.NewNop())

	res, err := d.DetectEvent(context.Background(), "WELCOME", "s1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	ev := client.lastReq.GetQueryInput().GetEvent()
	if ev.GetName() != "WELCOME" || ev.GetLanguageCode() != "en-US" {
		t.Fatalf("unexpected event input %+v", ev)
	}
	if got := client.lastReq.GetSession(); got != "projects/my-agent/agent/sessions/s1" {
		t.Fatalf("unexpected session path %q", got)
	}
	if res.ResponseID != "resp-1" || res.QueryText != "WELCOME" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Messages) != 2 || res.Messages[1] != "How can I help?" {
		t.Fatalf("expected text messages only, got %q", res.Messages)
	}
}

func TestDialogflowDetector_DetectEventRejectsEmpty(t *testing.T) {
	client := &fakeSessionsClient{}
	d := newDialogflowDetector(client, testDialogflowConfig(), zap.NewNop())

	_, err := d.DetectEvent(context.Background(), " ", "s1")
	if !errors.Is(err, ErrEmptyEvent) || KindOf(err) != KindInvalidInput {
		t.Fatalf("expected empty event error, got %v", err)
	}
	if _, err := d.DetectEvent(context.Background(), "WELCOME", ""); !errors.Is(err, ErrEmptySession) {
		t.Fatalf("expected empty session error, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("expected provider not called")
	}
}

func TestDialogflowDetector_DetectAudio(t *testing.T) {
	client := &fakeSessionsClient{
		resp: &dialogflowpb.DetectIntentResponse{QueryResult: &dialogflowpb.QueryResult{QueryText: "hello", FulfillmentText: "Hi"}},
	}
	d := newDialogflowDetector(client, testDialogflowConfig(), zap.NewNop())

	res, err := d.DetectAudio(context.Background(), []byte("RIFF...."), "s1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(client.lastReq.GetInputAudio()) != "RIFF...." {
		t.Fatalf("expected audio bytes in request")
	}
	if client.lastReq.GetQueryInput().GetAudioConfig().GetLanguageCode() != "en-US" {
		t.Fatalf("expected audio config with language")
	}
	if res.QueryText != "hello" || res.FulfillmentText != "Hi" {
		t.Fatalf("unexpected result %+v", res)
	}

	if _, err := d.DetectAudio(context.Background(), nil, "s1"); !errors.Is(err, ErrEmptyAudio) {
		t.Fatalf("expected empty audio error, got %v", err)
	}
}
