package alert

import (
	"fmt"
	"time"

	"github.com/guidewalk/go-guidewalk/pkg/haptic"
	"github.com/guidewalk/go-guidewalk/pkg/tts"
)

// PathClearConfig holds reassurance tuning.
type PathClearConfig struct {
	// Interval is how long the path must stay hazard-free before a
	// "path clear" announcement.
	Interval time.Duration
}

// DefaultPathClearConfig returns production defaults.
func DefaultPathClearConfig() PathClearConfig {
	return PathClearConfig{Interval: 3 * time.Second}
}

// Validate rejects a non-positive interval.
func (c PathClearConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("alert: path clear interval must be positive, got %v", c.Interval)
	}
	return nil
}

// PathClearMonitor emits a reassurance signal when no hazard has been
// selected for the configured window. Like the scheduler, it is
// single-writer: only the pipeline goroutine touches it.
type PathClearMonitor struct {
	cfg PathClearConfig

	// lastHazard is the more recent of: pipeline start, last selected
	// hazard, and last path-clear emission. Each emission resets the
	// window.
	lastHazard time.Time

	started bool
	now     func() time.Time
}

// NewPathClearMonitor creates a monitor. The window starts on the
// first Observe call.
func NewPathClearMonitor(cfg PathClearConfig) *PathClearMonitor {
	return &PathClearMonitor{cfg: cfg, now: time.Now}
}

// SetClock overrides the time source for tests.
func (m *PathClearMonitor) SetClock(now func() time.Time) { m.now = now }

// Observe processes one frame's outcome. hazardSelected is whether the
// selector picked a hazard this frame; idle is whether the alert
// scheduler is in IDLE (a path-clear announcement never talks over an
// active cooldown). Returns a decision when the clear window elapsed.
func (m *PathClearMonitor) Observe(hazardSelected, idle bool) *Decision {
	now := m.now()
	if !m.started {
		m.started = true
		m.lastHazard = now
	}

	if hazardSelected {
		m.lastHazard = now
		return nil
	}

	if now.Sub(m.lastHazard) < m.cfg.Interval {
		return nil
	}
	if !idle {
		return nil
	}

	// Reset so the next reassurance waits a full window.
	m.lastHazard = now

	return &Decision{
		Kind:      KindPathClear,
		Message:   PathClearMessage,
		Tone:      tts.ToneInformational,
		Haptic:    haptic.PatternNone,
		Timestamp: now,
	}
}
