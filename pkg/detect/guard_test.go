package detect

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/guidewalk/go-guidewalk/pkg/hazard"
)

func TestGuardPassesThroughDetections(t *testing.T) {
	want := hazard.Detection{Class: hazard.ClassPothole, Confidence: 0.8, Box: image.Rect(0, 0, 100, 100)}
	g := NewGuard(Fixed("ok", want), 0)

	dets, err := g.Detect(context.Background(), &Frame{Index: 1})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(dets) != 1 || dets[0].Class != hazard.ClassPothole {
		t.Errorf("Detect() = %v, want the fixed detection", dets)
	}
}

func TestGuardSwallowsErrors(t *testing.T) {
	g := NewGuard(Failing("broken", errors.New("camera fault")), 0)

	dets, err := g.Detect(context.Background(), &Frame{Index: 2})
	if err != nil {
		t.Errorf("Detect() error = %v, want nil", err)
	}
	if len(dets) != 0 {
		t.Errorf("Detect() = %v, want empty", dets)
	}
}

func TestGuardRecoversPanic(t *testing.T) {
	inner := &Mock{
		NameValue: "panicky",
		DetectFunc: func(ctx context.Context, f *Frame) ([]hazard.Detection, error) {
			panic("index out of range")
		},
	}
	g := NewGuard(inner, 0)

	dets, err := g.Detect(context.Background(), &Frame{Index: 3})
	if err != nil {
		t.Errorf("Detect() error = %v, want nil after panic", err)
	}
	if len(dets) != 0 {
		t.Errorf("Detect() = %v, want empty after panic", dets)
	}
}

func TestGuardTimesOutSlowDetector(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	inner := &Mock{
		NameValue: "slow",
		DetectFunc: func(ctx context.Context, f *Frame) ([]hazard.Detection, error) {
			<-release
			return []hazard.Detection{{Class: hazard.ClassStairs}}, nil
		},
	}
	g := NewGuard(inner, 20*time.Millisecond)

	start := time.Now()
	dets, err := g.Detect(context.Background(), &Frame{Index: 4})
	if err != nil {
		t.Errorf("Detect() error = %v, want nil on timeout", err)
	}
	if len(dets) != 0 {
		t.Errorf("Detect() = %v, want empty on timeout", dets)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Detect() blocked %v, want prompt timeout return", elapsed)
	}
}

func TestGuardName(t *testing.T) {
	g := NewGuard(Fixed("inner"), 0)
	if got := g.Name(); got != "inner" {
		t.Errorf("Name() = %q, want inner", got)
	}
}
