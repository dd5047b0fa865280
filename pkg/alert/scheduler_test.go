package alert

import (
	"testing"
	"time"

	"github.com/guidewalk/go-guidewalk/pkg/hazard"
	"github.com/guidewalk/go-guidewalk/pkg/proximity"
	"github.com/guidewalk/go-guidewalk/pkg/threat"
)

// fakeClock advances manually for deterministic cooldown tests.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func assessment(class string, score int, cat proximity.Category) *threat.Assessment {
	return &threat.Assessment{
		Detection: hazard.Detection{Class: class, Confidence: 0.8},
		Estimate:  proximity.Estimate{Category: cat, DistanceM: 2, Direction: proximity.Center},
		Priority:  hazard.PriorityFor(class),
		Score:     score,
	}
}

func newTestScheduler(t *testing.T) (*Scheduler, *fakeClock) {
	t.Helper()
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	s := NewScheduler(cfg)
	clock := newFakeClock()
	s.SetClock(clock.now)
	return s, clock
}

func TestEvaluateAnnouncesAboveFloor(t *testing.T) {
	s, _ := newTestScheduler(t)

	d := s.Evaluate(assessment(hazard.ClassPothole, 90, proximity.Immediate))
	if d == nil {
		t.Fatal("Evaluate() = nil, want announcement")
	}
	if d.Kind != KindHazard {
		t.Errorf("Kind = %q, want hazard", d.Kind)
	}
	if s.State() != StateCooldown {
		t.Errorf("State() = %q after announcement, want cooldown", s.State())
	}
}

func TestEvaluateBelowFloorStaysQuiet(t *testing.T) {
	s, _ := newTestScheduler(t)

	if d := s.Evaluate(assessment(hazard.ClassPerson, 45, proximity.Far)); d != nil {
		t.Errorf("Evaluate(score 45) = %v, want nil below floor 50", d)
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %q, want idle", s.State())
	}
}

func TestEvaluateNilSelection(t *testing.T) {
	s, _ := newTestScheduler(t)
	if d := s.Evaluate(nil); d != nil {
		t.Errorf("Evaluate(nil) = %v, want nil", d)
	}
}

func TestCooldownSuppressesRepeat(t *testing.T) {
	s, clock := newTestScheduler(t)

	if d := s.Evaluate(assessment(hazard.ClassPothole, 90, proximity.Immediate)); d == nil {
		t.Fatal("first Evaluate() = nil")
	}

	// Same hazard one second later: still cooling down.
	clock.advance(time.Second)
	if d := s.Evaluate(assessment(hazard.ClassPothole, 90, proximity.Immediate)); d != nil {
		t.Errorf("Evaluate() during cooldown = %v, want nil", d)
	}

	// After the cooldown the same hazard may announce again.
	clock.advance(3 * time.Second)
	if d := s.Evaluate(assessment(hazard.ClassPothole, 90, proximity.Immediate)); d == nil {
		t.Error("Evaluate() after cooldown = nil, want announcement")
	}
}

func TestCooldownPreemptedByMoreUrgentHazard(t *testing.T) {
	s, clock := newTestScheduler(t)

	if d := s.Evaluate(assessment(hazard.ClassPerson, 55, proximity.Near)); d == nil {
		t.Fatal("first Evaluate() = nil")
	}

	clock.advance(time.Second)

	// 74 < 55+20: not urgent enough to interrupt.
	if d := s.Evaluate(assessment(hazard.ClassStairs, 74, proximity.Near)); d != nil {
		t.Errorf("Evaluate(score 74) = %v, want nil below preempt delta", d)
	}

	// 75 >= 55+20: interrupts the cooldown.
	d := s.Evaluate(assessment(hazard.ClassPothole, 75, proximity.Immediate))
	if d == nil {
		t.Fatal("Evaluate(score 75) = nil, want preempting announcement")
	}
	if d.Selected.Detection.Class != hazard.ClassPothole {
		t.Errorf("preempting class = %q, want pothole", d.Selected.Detection.Class)
	}

	// The preemption rebased the cooldown on the new, higher score.
	clock.advance(time.Second)
	if d := s.Evaluate(assessment(hazard.ClassStairs, 90, proximity.Immediate)); d != nil {
		t.Errorf("Evaluate(score 90) = %v, want nil against rebased score 75", d)
	}
}

func TestEdgeWarningThrottledPerSide(t *testing.T) {
	s, clock := newTestScheduler(t)

	left := hazard.EdgeWarning{Side: hazard.SideLeft, BoundaryX: 40}
	right := hazard.EdgeWarning{Side: hazard.SideRight, BoundaryX: 600}

	if d := s.EvaluateEdge(left); d == nil {
		t.Fatal("EvaluateEdge(left) = nil, want warning")
	}

	// Same side inside the edge cooldown: suppressed.
	clock.advance(time.Second)
	if d := s.EvaluateEdge(left); d != nil {
		t.Errorf("EvaluateEdge(left) repeated = %v, want nil", d)
	}

	// The other side has its own cooldown.
	if d := s.EvaluateEdge(right); d == nil {
		t.Error("EvaluateEdge(right) = nil, want warning")
	}

	clock.advance(3 * time.Second)
	if d := s.EvaluateEdge(left); d == nil {
		t.Error("EvaluateEdge(left) after cooldown = nil, want warning")
	}
}

func TestEdgeWarningSuppressedDuringHazardCooldown(t *testing.T) {
	s, clock := newTestScheduler(t)

	if d := s.Evaluate(assessment(hazard.ClassPothole, 90, proximity.Immediate)); d == nil {
		t.Fatal("Evaluate() = nil")
	}

	clock.advance(time.Second)
	if d := s.EvaluateEdge(hazard.EdgeWarning{Side: hazard.SideLeft}); d != nil {
		t.Errorf("EvaluateEdge() during hazard cooldown = %v, want nil", d)
	}
}

func TestConfigValidate(t *testing.T) {
	bad := DefaultConfig()
	bad.Cooldown = 0
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted zero cooldown")
	}

	bad = DefaultConfig()
	bad.FloorScore = 101
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted floor score above 100")
	}

	bad = DefaultConfig()
	bad.PreemptDelta = 0
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted zero preempt delta")
	}
}
