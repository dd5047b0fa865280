package store

import "sync"

// Mock is an in-memory Store for tests.
type Mock struct {
	mu      sync.Mutex
	Records []Record
	Flushes int
	Closed  bool

	// AppendErr, when set, is returned from Append.
	AppendErr error
}

var _ Store = (*Mock)(nil)

// NewMock creates an empty in-memory store.
func NewMock() *Mock { return &Mock{} }

func (m *Mock) Append(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Records = append(m.Records, rec)
	return nil
}

func (m *Mock) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Flushes++
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Len returns the number of appended records.
func (m *Mock) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Records)
}
