// Package alert schedules spoken and haptic hazard warnings. The
// scheduler enforces a cooldown between announcements so the user is
// never spammed, while letting a materially more urgent hazard preempt
// the cooldown: DANGER always interrupts Caution.
package alert

import (
	"fmt"
	"time"

	"github.com/guidewalk/go-guidewalk/pkg/hazard"
	"github.com/guidewalk/go-guidewalk/pkg/haptic"
	"github.com/guidewalk/go-guidewalk/pkg/threat"
	"github.com/guidewalk/go-guidewalk/pkg/tts"
)

// State is the scheduler state machine position.
type State string

const (
	// StateIdle means no recent announcement; any qualifying hazard
	// may be announced.
	StateIdle State = "idle"

	// StateAnnouncing is the transient state while a decision is
	// being produced.
	StateAnnouncing State = "announcing"

	// StateCooldown means an announcement was recently dispatched and
	// only a materially more urgent hazard may interrupt.
	StateCooldown State = "cooldown"
)

// Kind distinguishes decision types for consumers.
type Kind string

const (
	// KindHazard is a hazard announcement.
	KindHazard Kind = "hazard"

	// KindEdge is a walkable-surface drift warning.
	KindEdge Kind = "edge"

	// KindPathClear is the reassurance signal.
	KindPathClear Kind = "path_clear"
)

// Decision is one alert produced by the scheduler. It is consumed by
// the dispatcher immediately and then discarded.
type Decision struct {
	Kind Kind

	// Selected is the announced assessment; nil for path-clear.
	Selected *threat.Assessment

	// Message is the spoken announcement text.
	Message string

	// Tone selects the voice register.
	Tone tts.Tone

	// Haptic is the vibration pattern code, PatternNone for none.
	Haptic haptic.Pattern

	// Timestamp is when the decision was produced.
	Timestamp time.Time
}

// Config holds scheduler tuning.
type Config struct {
	// FloorScore is the minimum threat score that triggers an
	// announcement from idle.
	FloorScore int

	// Cooldown is the minimum interval between announcements.
	Cooldown time.Duration

	// PreemptDelta is how much higher a new score must be than the
	// last announced score to interrupt an active cooldown.
	PreemptDelta int

	// EdgeCooldown throttles drift warnings per side.
	EdgeCooldown time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		FloorScore:   50,
		Cooldown:     3 * time.Second,
		PreemptDelta: 20,
		EdgeCooldown: 3 * time.Second,
	}
}

// Validate rejects configurations that would mute or spam the user.
func (c Config) Validate() error {
	if c.Cooldown <= 0 {
		return fmt.Errorf("alert: cooldown must be positive, got %v", c.Cooldown)
	}
	if c.FloorScore < 0 || c.FloorScore > 100 {
		return fmt.Errorf("alert: floor score must be in [0,100], got %d", c.FloorScore)
	}
	if c.PreemptDelta <= 0 {
		return fmt.Errorf("alert: preempt delta must be positive, got %d", c.PreemptDelta)
	}
	if c.EdgeCooldown <= 0 {
		return fmt.Errorf("alert: edge cooldown must be positive, got %v", c.EdgeCooldown)
	}
	return nil
}

// cooldownState is the only hazard-announcement state that persists
// across frames. Single-writer: only the pipeline goroutine calls the
// scheduler.
type cooldownState struct {
	lastAt    time.Time
	lastClass string
	lastScore int
}

// Scheduler decides whether a selected hazard becomes an announcement.
// Not goroutine-safe: the pipeline calls it from one goroutine, which
// is the concurrency model for all persistent alert state.
type Scheduler struct {
	cfg   Config
	state State
	cd    cooldownState

	lastEdgeAt map[hazard.Side]time.Time

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewScheduler creates a scheduler. The config must already be
// validated.
func NewScheduler(cfg Config) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		state:      StateIdle,
		lastEdgeAt: make(map[hazard.Side]time.Time),
		now:        time.Now,
	}
}

// SetClock overrides the time source for tests.
func (s *Scheduler) SetClock(now func() time.Time) { s.now = now }

// State returns the current state machine position, advancing cooldown
// expiry first.
func (s *Scheduler) State() State {
	s.expireCooldown(s.now())
	return s.state
}

// LastAnnouncement returns when the last announcement was dispatched
// and its class; zero values when nothing has been announced.
func (s *Scheduler) LastAnnouncement() (time.Time, string) {
	return s.cd.lastAt, s.cd.lastClass
}

// Evaluate processes one frame's selected hazard (nil when the
// selector picked none) and returns an announcement decision, or nil
// when this cycle stays quiet.
func (s *Scheduler) Evaluate(sel *threat.Assessment) *Decision {
	now := s.now()
	s.expireCooldown(now)

	if sel == nil || sel.Score < s.cfg.FloorScore {
		return nil
	}

	if s.state == StateCooldown {
		// Urgent hazards interrupt less urgent ongoing cooldowns.
		if sel.Score < s.cd.lastScore+s.cfg.PreemptDelta {
			return nil
		}
	}

	s.state = StateAnnouncing
	decision := &Decision{
		Kind:      KindHazard,
		Selected:  sel,
		Message:   BuildMessage(sel),
		Tone:      messageTone(sel),
		Haptic:    HapticFor(sel),
		Timestamp: now,
	}

	s.cd = cooldownState{
		lastAt:    now,
		lastClass: sel.Detection.Class,
		lastScore: sel.Score,
	}
	s.state = StateCooldown

	return decision
}

// EvaluateEdge processes a drift warning. Edge warnings carry no
// urgency preemption: they are suppressed during an active hazard
// cooldown and throttled per side.
func (s *Scheduler) EvaluateEdge(w hazard.EdgeWarning) *Decision {
	now := s.now()
	s.expireCooldown(now)

	if s.state != StateIdle {
		return nil
	}
	if last, ok := s.lastEdgeAt[w.Side]; ok && now.Sub(last) < s.cfg.EdgeCooldown {
		return nil
	}
	s.lastEdgeAt[w.Side] = now

	return &Decision{
		Kind:      KindEdge,
		Message:   EdgeMessage(w),
		Tone:      tts.ToneInformational,
		Haptic:    edgeHaptic(w),
		Timestamp: now,
	}
}

// expireCooldown transitions COOLDOWN back to IDLE once the hold has
// elapsed.
func (s *Scheduler) expireCooldown(now time.Time) {
	if s.state == StateCooldown && now.Sub(s.cd.lastAt) >= s.cfg.Cooldown {
		s.state = StateIdle
	}
}
