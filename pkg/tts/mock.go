package tts

import (
	"context"
	"sync"
	"time"
)

// Mock implements Provider for testing.
// All methods can be customized via function fields.
type Mock struct {
	// SayFunc is called when Say is invoked. If nil, returns nil.
	SayFunc func(ctx context.Context, text string, tone Tone) error

	// HealthFunc is called when Health is invoked. If nil, returns nil.
	HealthFunc func(ctx context.Context) error

	// CloseFunc is called when Close is invoked. If nil, returns nil.
	CloseFunc func() error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a Say invocation for verification.
type MockCall struct {
	Text string
	Tone Tone
	Time time.Time
}

// Say records the call and delegates to SayFunc.
func (m *Mock) Say(ctx context.Context, text string, tone Tone) error {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Text: text, Tone: tone, Time: time.Now()})
	m.mu.Unlock()

	if m.SayFunc != nil {
		return m.SayFunc(ctx, text, tone)
	}
	return nil
}

// Health delegates to HealthFunc.
func (m *Mock) Health(ctx context.Context) error {
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Close delegates to CloseFunc.
func (m *Mock) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns all recorded Say invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Say invocations.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the most recent Say invocation, or nil if none.
func (m *Mock) LastCall() *MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	call := m.calls[len(m.calls)-1]
	return &call
}

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// WithError returns a mock whose methods always fail with err.
func WithError(err error) *Mock {
	return &Mock{
		SayFunc: func(ctx context.Context, text string, tone Tone) error {
			return err
		},
		HealthFunc: func(ctx context.Context) error {
			return err
		},
	}
}

// Verify Mock implements Provider at compile time.
var _ Provider = (*Mock)(nil)
