package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// JSONLConfig configures the newline-delimited JSON backend.
type JSONLConfig struct {
	// Path is the log file. Opened append-only; created if missing.
	Path string

	// FlushEvery flushes the buffered writer after this many
	// appends. 1 flushes on every record.
	FlushEvery int
}

// DefaultJSONLConfig returns sensible on-device defaults.
func DefaultJSONLConfig() JSONLConfig {
	return JSONLConfig{
		Path:       "detections.jsonl",
		FlushEvery: 8,
	}
}

// Validate checks the configuration.
func (c JSONLConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("store: jsonl path is empty")
	}
	if c.FlushEvery < 1 {
		return fmt.Errorf("store: flush interval must be >= 1, got %d", c.FlushEvery)
	}
	return nil
}

// JSONL appends one JSON object per line to a log file.
type JSONL struct {
	cfg JSONLConfig

	mu      sync.Mutex
	f       *os.File
	w       *bufio.Writer
	pending int
}

var _ Store = (*JSONL)(nil)

// NewJSONL opens the log file for appending.
func NewJSONL(cfg JSONLConfig) (*JSONL, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Path, err)
	}
	return &JSONL{
		cfg: cfg,
		f:   f,
		w:   bufio.NewWriter(f),
	}, nil
}

// Append writes one record line, flushing per the configured interval.
func (j *JSONL) Append(rec Record) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: marshal record: %w", err)
	}
	if _, err := j.w.Write(b); err != nil {
		return fmt.Errorf("store: write record: %w", err)
	}
	if err := j.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("store: write record: %w", err)
	}
	j.pending++
	if j.pending >= j.cfg.FlushEvery {
		j.pending = 0
		if err := j.w.Flush(); err != nil {
			return fmt.Errorf("store: flush: %w", err)
		}
	}
	return nil
}

// Flush forces buffered records to disk.
func (j *JSONL) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pending = 0
	if err := j.w.Flush(); err != nil {
		return fmt.Errorf("store: flush: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return nil
	}
	ferr := j.w.Flush()
	cerr := j.f.Close()
	j.f = nil
	if ferr != nil {
		return fmt.Errorf("store: flush on close: %w", ferr)
	}
	if cerr != nil {
		return fmt.Errorf("store: close: %w", cerr)
	}
	return nil
}
