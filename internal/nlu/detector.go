package nlu

import (
	"context"
	"errors"
	"fmt"

	"sms-bridge/internal/domain"
)

// IntentDetector define la interfaz para resolver un texto contra el proveedor NLU.
type IntentDetector interface {
	Detect(ctx context.Context, text, sessionID string) (domain.DetectionResult, error)
}

// Querier amplía IntentDetector con las entradas que expone la API de consultas.
type Querier interface {
	IntentDetector
	DetectEvent(ctx context.Context, event, sessionID string) (domain.DetectionResult, error)
	DetectAudio(ctx context.Context, audio []byte, sessionID string) (domain.DetectionResult, error)
}

// ErrorKind clasifica los fallos del proveedor.
type ErrorKind string

const (
	KindNetwork      ErrorKind = "network"
	KindAuth         ErrorKind = "auth"
	KindMalformed    ErrorKind = "malformed"
	KindInvalidInput ErrorKind = "invalid_input"
	KindUnknown      ErrorKind = "unknown"
)

// Errores de entrada rechazados antes de llamar al proveedor.
var (
	ErrEmptySession = errors.New("empty session id")
	ErrEmptyEvent   = errors.New("empty event name")
	ErrEmptyAudio   = errors.New("empty audio input")
)

// DetectionError envuelve cualquier fallo de Detect.
type DetectionError struct {
	Kind ErrorKind
	Err  error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("detect intent (%s): %v", e.Kind, e.Err)
}

func (e *DetectionError) Unwrap() error {
	return e.Err
}

// KindOf devuelve el tipo de error de detección, o KindUnknown si err no lo es.
func KindOf(err error) ErrorKind {
	var detErr *DetectionError
	if errors.As(err, &detErr) {
		return detErr.Kind
	}
	return KindUnknown
}
