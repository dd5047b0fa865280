package detect

import (
	"image"
	"math"
	"testing"

	"github.com/guidewalk/go-guidewalk/pkg/hazard"
)

func closeTo(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

// horizontalSeg builds a flat segment across [x1,x2] at height y.
func horizontalSeg(x1, x2, y int) Segment {
	return Segment{X1: x1, Y1: y, X2: x2, Y2: y}
}

func TestGroupStairSegmentsDetectsStack(t *testing.T) {
	cfg := DefaultStairConfig()

	// Four stacked treads in the lower frame, 30px apart.
	segs := []Segment{
		horizontalSeg(100, 400, 300),
		horizontalSeg(105, 395, 330),
		horizontalSeg(110, 390, 360),
		horizontalSeg(112, 388, 390),
	}

	dets := GroupStairSegments(segs, 640, 480, cfg)
	if len(dets) != 1 {
		t.Fatalf("GroupStairSegments() len = %d, want 1", len(dets))
	}
	d := dets[0]
	if d.Class != hazard.ClassStairs {
		t.Errorf("Class = %q, want stairs", d.Class)
	}
	if d.Source != hazard.SourceStairs {
		t.Errorf("Source = %q, want stairs", d.Source)
	}
	// 0.45 + 4*0.05
	if !closeTo(d.Confidence, 0.65) {
		t.Errorf("Confidence = %v, want 0.65", d.Confidence)
	}
	if d.Box.Min.Y != 300 || d.Box.Max.Y != 391 {
		t.Errorf("Box = %v, want y span [300,391)", d.Box)
	}
}

func TestGroupStairSegmentsNeedsMinimumTreads(t *testing.T) {
	cfg := DefaultStairConfig()

	// Two lines is a curb shadow, not stairs.
	segs := []Segment{
		horizontalSeg(100, 400, 300),
		horizontalSeg(105, 395, 330),
	}
	if dets := GroupStairSegments(segs, 640, 480, cfg); len(dets) != 0 {
		t.Errorf("GroupStairSegments() len = %d, want 0 below minimum", len(dets))
	}
}

func TestGroupStairSegmentsRejectsSteepLines(t *testing.T) {
	cfg := DefaultStairConfig()

	// Three near-vertical lines (fence posts) must not group.
	segs := []Segment{
		{X1: 100, Y1: 300, X2: 120, Y2: 400},
		{X1: 200, Y1: 300, X2: 220, Y2: 400},
		{X1: 300, Y1: 300, X2: 320, Y2: 400},
	}
	if dets := GroupStairSegments(segs, 640, 480, cfg); len(dets) != 0 {
		t.Errorf("GroupStairSegments() len = %d, want 0 for steep lines", len(dets))
	}
}

func TestGroupStairSegmentsSplitsDistantBands(t *testing.T) {
	cfg := DefaultStairConfig()

	// Three treads at the frame bottom and three far above, separated
	// by more than the band gap: two candidate regions, each valid.
	segs := []Segment{
		horizontalSeg(100, 300, 200),
		horizontalSeg(100, 300, 220),
		horizontalSeg(100, 300, 240),
		horizontalSeg(350, 550, 400),
		horizontalSeg(350, 550, 420),
		horizontalSeg(350, 550, 440),
	}
	dets := GroupStairSegments(segs, 640, 480, cfg)
	if len(dets) != 2 {
		t.Fatalf("GroupStairSegments() len = %d, want 2 separate regions", len(dets))
	}
}

func TestGroupStairSegmentsRejectsHighRegions(t *testing.T) {
	cfg := DefaultStairConfig()

	// A line stack in the top of the frame is a building facade, not
	// stairs ahead.
	segs := []Segment{
		horizontalSeg(100, 400, 20),
		horizontalSeg(100, 400, 50),
		horizontalSeg(100, 400, 80),
	}
	if dets := GroupStairSegments(segs, 640, 480, cfg); len(dets) != 0 {
		t.Errorf("GroupStairSegments() len = %d, want 0 for high region", len(dets))
	}
}

func TestDedupeStairRegionsKeepsStrongest(t *testing.T) {
	dets := []hazard.Detection{
		{Class: hazard.ClassStairs, Confidence: 0.6, Box: image.Rect(100, 300, 400, 400)},
		{Class: hazard.ClassStairs, Confidence: 0.8, Box: image.Rect(120, 310, 420, 410)},
	}
	kept := dedupeStairRegions(dets)
	if len(kept) != 1 {
		t.Fatalf("dedupeStairRegions() len = %d, want 1", len(kept))
	}
	if kept[0].Confidence != 0.8 {
		t.Errorf("kept confidence %v, want 0.8", kept[0].Confidence)
	}
}

func TestStairConfidenceSaturates(t *testing.T) {
	if got := stairConfidence(3); !closeTo(got, 0.6) {
		t.Errorf("stairConfidence(3) = %v, want 0.6", got)
	}
	if got := stairConfidence(20); !closeTo(got, 0.9) {
		t.Errorf("stairConfidence(20) = %v, want 0.9", got)
	}
}
