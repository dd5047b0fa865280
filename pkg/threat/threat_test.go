package threat

import (
	"image"
	"testing"

	"github.com/guidewalk/go-guidewalk/pkg/hazard"
	"github.com/guidewalk/go-guidewalk/pkg/proximity"
)

func estimate(cat proximity.Category, distM float64) proximity.Estimate {
	return proximity.Estimate{Category: cat, DistanceM: distM, Direction: proximity.Center}
}

func TestScore(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		d    hazard.Detection
		est  proximity.Estimate
		want int
	}{
		{
			name: "immediate pothole",
			d:    hazard.Detection{Class: hazard.ClassPothole, Confidence: 0.8},
			est:  estimate(proximity.Immediate, 1.5),
			want: 50 + 40 + 8,
		},
		{
			name: "near stairs",
			d:    hazard.Detection{Class: hazard.ClassStairs, Confidence: 0.6},
			est:  estimate(proximity.Near, 4),
			want: 40 + 25 + 6,
		},
		{
			name: "far person",
			d:    hazard.Detection{Class: hazard.ClassPerson, Confidence: 0.9},
			est:  estimate(proximity.Far, 8),
			want: 20 + 10 + 9,
		},
		{
			name: "saturates at 100",
			d:    hazard.Detection{Class: hazard.ClassPothole, Confidence: 1.0},
			est:  estimate(proximity.Immediate, 1),
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.Score(tt.d, tt.est)
			if got.Score != tt.want {
				t.Errorf("Score() = %d, want %d", got.Score, tt.want)
			}
		})
	}
}

func TestSelectHighestScoreWins(t *testing.T) {
	cfg := DefaultConfig()

	a := cfg.Score(hazard.Detection{Class: hazard.ClassPerson, Confidence: 0.9},
		estimate(proximity.Far, 9)) // 39
	b := cfg.Score(hazard.Detection{Class: hazard.ClassPothole, Confidence: 0.7},
		estimate(proximity.Immediate, 1.5)) // 97

	sel := cfg.Select([]Assessment{a, b})
	if sel == nil {
		t.Fatal("Select() = nil, want pothole")
	}
	if sel.Detection.Class != hazard.ClassPothole {
		t.Errorf("Select() picked %q, want pothole", sel.Detection.Class)
	}
}

func TestSelectTieBreakByDistance(t *testing.T) {
	cfg := DefaultConfig()

	// Same class, same category, same confidence: the nearer one wins.
	near := cfg.Score(hazard.Detection{Class: hazard.ClassCurb, Confidence: 0.5},
		estimate(proximity.Near, 3))
	far := cfg.Score(hazard.Detection{Class: hazard.ClassCurb, Confidence: 0.5},
		estimate(proximity.Near, 4.5))

	sel := cfg.Select([]Assessment{far, near})
	if sel == nil {
		t.Fatal("Select() = nil")
	}
	if sel.Estimate.DistanceM != 3 {
		t.Errorf("Select() picked distance %v, want 3", sel.Estimate.DistanceM)
	}
}

func TestSelectTieBreakByConfidence(t *testing.T) {
	cfg := DefaultConfig()

	// 0.45 and 0.5 both round to the same confidence bonus, so the
	// scores tie and the raw confidence breaks it.
	lo := cfg.Score(hazard.Detection{Class: hazard.ClassStep, Confidence: 0.45},
		estimate(proximity.Near, 3))
	hi := cfg.Score(hazard.Detection{Class: hazard.ClassStep, Confidence: 0.5},
		estimate(proximity.Near, 3))
	if lo.Score != hi.Score {
		t.Fatalf("scores differ (%d vs %d), tie-break not exercised", lo.Score, hi.Score)
	}

	sel := cfg.Select([]Assessment{lo, hi})
	if sel == nil {
		t.Fatal("Select() = nil")
	}
	if sel.Detection.Confidence != 0.5 {
		t.Errorf("Select() picked confidence %v, want 0.5", sel.Detection.Confidence)
	}
}

func TestSelectMinPriorityFilter(t *testing.T) {
	cfg := DefaultConfig()

	// A confident sign right in front still never gets announced.
	sign := cfg.Score(hazard.Detection{Class: "bench", Confidence: 0.95},
		estimate(proximity.Immediate, 1))

	if sel := cfg.Select([]Assessment{sign}); sel != nil {
		t.Errorf("Select() = %v, want nil for priority-1 class", sel.Detection.Class)
	}
}

func TestSelectEmpty(t *testing.T) {
	cfg := DefaultConfig()
	if sel := cfg.Select(nil); sel != nil {
		t.Errorf("Select(nil) = %v, want nil", sel)
	}
}

func TestAssessUsesFrameGeometry(t *testing.T) {
	cfg := DefaultConfig()
	prox := proximity.DefaultConfig()

	dets := []hazard.Detection{
		{Class: hazard.ClassPothole, Confidence: 0.8, Box: image.Rect(200, 300, 400, 470)},
	}
	out := cfg.Assess(dets, prox, 640, 480)
	if len(out) != 1 {
		t.Fatalf("Assess() len = %d, want 1", len(out))
	}
	if out[0].Estimate.Category != proximity.Immediate {
		t.Errorf("Category = %q, want immediate", out[0].Estimate.Category)
	}
	if out[0].Estimate.Direction != proximity.Center {
		t.Errorf("Direction = %q, want center", out[0].Estimate.Direction)
	}
}

func TestPriorityOverride(t *testing.T) {
	cfg := Config{
		MinPriority: 2,
		Priorities:  map[string]int{hazard.ClassPerson: 4},
	}

	a := cfg.Score(hazard.Detection{Class: hazard.ClassPerson, Confidence: 0.5},
		estimate(proximity.Far, 8))
	if a.Priority != 4 {
		t.Errorf("Priority = %d, want 4 from override", a.Priority)
	}

	// Classes missing from an override table get the default priority,
	// not the built-in table's value.
	b := cfg.Score(hazard.Detection{Class: hazard.ClassPothole, Confidence: 0.5},
		estimate(proximity.Far, 8))
	if b.Priority != hazard.DefaultPriority {
		t.Errorf("Priority = %d, want %d", b.Priority, hazard.DefaultPriority)
	}
}
