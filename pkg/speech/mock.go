package speech

import (
	"context"
	"sync"
	"time"
)

// Mock implements Provider for testing and for running without cloud
// credentials. All methods can be customized via function fields.
type Mock struct {
	// RecognizeFunc is called when Recognize is invoked.
	// If nil, returns a fixed transcript.
	RecognizeFunc func(ctx context.Context, audio []byte) (string, error)

	// SynthesizeFunc is called when Synthesize is invoked.
	// If nil, returns silent audio proportional to the text length.
	SynthesizeFunc func(ctx context.Context, text string) (string, error)

	// CloseFunc is called when Close is invoked. If nil, returns nil.
	CloseFunc func() error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation for verification.
type MockCall struct {
	Method string
	Text   string
	Time   time.Time
}

// NewMock creates a mock provider with sensible defaults.
func NewMock() *Mock {
	return &Mock{
		RecognizeFunc: func(ctx context.Context, audio []byte) (string, error) {
			if len(audio) == 0 {
				return "", nil
			}
			return "hello", nil
		},
	}
}

// Recognize calls RecognizeFunc and records the call.
func (m *Mock) Recognize(ctx context.Context, audio []byte) (string, error) {
	m.recordCall("Recognize", "")
	if m.RecognizeFunc != nil {
		return m.RecognizeFunc(ctx, audio)
	}
	return "", nil
}

// Synthesize calls SynthesizeFunc and records the call.
func (m *Mock) Synthesize(ctx context.Context, text string) ([]byte, error) {
	m.recordCall("Synthesize", text)
	if m.SynthesizeFunc != nil {
		out, err := m.SynthesizeFunc(ctx, text)
		return []byte(out), err
	}
	// Silent placeholder audio, roughly one byte per character.
	return make([]byte, len(text)), nil
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.recordCall("Close", "")
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *Mock) recordCall(method, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Method: method, Text: text, Time: time.Now()})
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of times a method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Verify Mock implements Provider at compile time.
var _ Provider = (*Mock)(nil)
