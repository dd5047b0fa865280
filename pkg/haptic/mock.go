package haptic

import (
	"context"
	"sync"
	"time"
)

// Mock implements Driver for testing.
type Mock struct {
	// PulseFunc is called when Pulse is invoked. If nil, returns nil.
	PulseFunc func(ctx context.Context, p Pattern) error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a Pulse invocation.
type MockCall struct {
	Pattern Pattern
	Time    time.Time
}

// Pulse records the call and delegates to PulseFunc.
func (m *Mock) Pulse(ctx context.Context, p Pattern) error {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Pattern: p, Time: time.Now()})
	m.mu.Unlock()

	if m.PulseFunc != nil {
		return m.PulseFunc(ctx, p)
	}
	return nil
}

// Close releases nothing.
func (m *Mock) Close() error { return nil }

// Calls returns all recorded Pulse invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Pulse invocations.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Verify Mock implements Driver at compile time.
var _ Driver = (*Mock)(nil)
