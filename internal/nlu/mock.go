package nlu

import (
	"context"

	"sms-bridge/internal/domain"
)

// MockDetector permite tests sin llamar al proveedor real.
type MockDetector struct {
	Result domain.DetectionResult
	Err    error

	Calls         int
	LastText      string
	LastEvent     string
	LastAudio     []byte
	LastSessionID string
}

func (m *MockDetector) Detect(_ context.Context, text, sessionID string) (domain.DetectionResult, error) {
	m.Calls++
	m.LastText = text
	m.LastSessionID = sessionID
	return m.Result, m.Err
}

func (m *MockDetector) DetectEvent(_ context.Context, event, sessionID string) (domain.DetectionResult, error) {
	m.Calls++
	m.LastEvent = event
	m.LastSessionID = sessionID
	return m.Result, m.Err
}

func (m *MockDetector) DetectAudio(_ context.Context, audio []byte, sessionID string) (domain.DetectionResult, error) {
	m.Calls++
	m.LastAudio = audio
	m.LastSessionID = sessionID
	return m.Result, m.Err
}
