package detect

import (
	"context"
	"sync"
	"time"

	"github.com/guidewalk/go-guidewalk/pkg/hazard"
)

// Mock implements Detector for testing.
// Behavior is customized via function fields; calls are recorded.
type Mock struct {
	// NameValue is returned by Name. Defaults to "mock".
	NameValue string

	// DetectFunc is called when Detect is invoked.
	// If nil, returns no detections.
	DetectFunc func(ctx context.Context, f *Frame) ([]hazard.Detection, error)

	// CloseFunc is called when Close is invoked. If nil, returns nil.
	CloseFunc func() error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a Detect invocation.
type MockCall struct {
	FrameIndex uint64
	Time       time.Time
}

// Name returns the mock's name.
func (m *Mock) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

// Detect calls DetectFunc and records the call.
func (m *Mock) Detect(ctx context.Context, f *Frame) ([]hazard.Detection, error) {
	m.mu.Lock()
	var idx uint64
	if f != nil {
		idx = f.Index
	}
	m.calls = append(m.calls, MockCall{FrameIndex: idx, Time: time.Now()})
	m.mu.Unlock()

	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, f)
	}
	return nil, nil
}

// Close calls CloseFunc.
func (m *Mock) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// CallCount returns the number of Detect invocations.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns all recorded Detect invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Fixed returns a mock that always reports the given detections.
func Fixed(name string, dets ...hazard.Detection) *Mock {
	return &Mock{
		NameValue: name,
		DetectFunc: func(ctx context.Context, f *Frame) ([]hazard.Detection, error) {
			return dets, nil
		},
	}
}

// Failing returns a mock that always returns the given error.
func Failing(name string, err error) *Mock {
	return &Mock{
		NameValue: name,
		DetectFunc: func(ctx context.Context, f *Frame) ([]hazard.Detection, error) {
			return nil, err
		},
	}
}

// Verify Mock implements Detector at compile time.
var _ Detector = (*Mock)(nil)
