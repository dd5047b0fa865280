package alert

import (
	"image"
	"testing"

	"github.com/guidewalk/go-guidewalk/pkg/hazard"
	"github.com/guidewalk/go-guidewalk/pkg/haptic"
	"github.com/guidewalk/go-guidewalk/pkg/proximity"
	"github.com/guidewalk/go-guidewalk/pkg/threat"
	"github.com/guidewalk/go-guidewalk/pkg/tts"
)

func TestBuildMessage(t *testing.T) {
	tests := []struct {
		name string
		a    *threat.Assessment
		want string
	}{
		{
			name: "immediate pothole center",
			a: &threat.Assessment{
				Detection: hazard.Detection{Class: hazard.ClassPothole},
				Estimate: proximity.Estimate{
					Category: proximity.Immediate, DistanceM: 1.4, Direction: proximity.Center,
				},
			},
			want: "DANGER: pothole directly ahead, 1 meter!",
		},
		{
			name: "near stairs left",
			a: &threat.Assessment{
				Detection: hazard.Detection{Class: hazard.ClassStairs},
				Estimate: proximity.Estimate{
					Category: proximity.Near, DistanceM: 3.6, Direction: proximity.Left,
				},
			},
			want: "Caution: stairs on the left, 3 meters.",
		},
		{
			name: "far vehicle right",
			a: &threat.Assessment{
				Detection: hazard.Detection{Class: hazard.ClassVehicle},
				Estimate: proximity.Estimate{
					Category: proximity.Far, DistanceM: 9, Direction: proximity.Right,
				},
			},
			want: "Notice: vehicle on the right.",
		},
		{
			name: "manhole uses spoken label",
			a: &threat.Assessment{
				Detection: hazard.Detection{Class: hazard.ClassManhole},
				Estimate: proximity.Estimate{
					Category: proximity.Near, DistanceM: 4.2, Direction: proximity.Center,
				},
			},
			want: "Caution: manhole cover directly ahead, 4 meters.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildMessage(tt.a); got != tt.want {
				t.Errorf("BuildMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

// End to end through scoring: a wide box low in the center of the frame
// must come out as an urgent pothole announcement dead ahead.
func TestMessageFromFrameGeometry(t *testing.T) {
	prox := proximity.DefaultConfig()
	cfg := threat.DefaultConfig()

	d := hazard.Detection{
		Class:      hazard.ClassPothole,
		Confidence: 0.8,
		Box:        image.Rect(220, 100, 420, 480),
		Source:     hazard.SourcePothole,
	}
	a := cfg.Score(d, prox.Estimate(d, 640, 480))

	msg := BuildMessage(&a)
	if msg[:7] != "DANGER:" {
		t.Errorf("BuildMessage() = %q, want DANGER prefix", msg)
	}
	if messageTone(&a) != tts.ToneUrgent {
		t.Errorf("messageTone() = %v, want urgent", messageTone(&a))
	}
	if HapticFor(&a) != haptic.PatternDanger {
		t.Errorf("HapticFor() = %v, want danger pattern", HapticFor(&a))
	}
}

func TestHapticForDirection(t *testing.T) {
	near := func(z proximity.Zone) *threat.Assessment {
		return &threat.Assessment{
			Estimate: proximity.Estimate{Category: proximity.Near, Direction: z},
		}
	}

	if got := HapticFor(near(proximity.Left)); got != haptic.PatternTwoQuick {
		t.Errorf("HapticFor(left) = %v, want two quick", got)
	}
	if got := HapticFor(near(proximity.Right)); got != haptic.PatternLongPulse {
		t.Errorf("HapticFor(right) = %v, want long pulse", got)
	}
	if got := HapticFor(near(proximity.Center)); got != haptic.PatternThreeQuick {
		t.Errorf("HapticFor(center) = %v, want three quick", got)
	}
}

func TestEdgeMessage(t *testing.T) {
	w := hazard.EdgeWarning{Side: hazard.SideLeft, BoundaryX: 50}
	want := "Caution: approaching sidewalk edge on the left."
	if got := EdgeMessage(w); got != want {
		t.Errorf("EdgeMessage() = %q, want %q", got, want)
	}
	if got := edgeHaptic(w); got != haptic.PatternTwoQuick {
		t.Errorf("edgeHaptic(left) = %v, want two quick", got)
	}
}

func TestDistancePhrase(t *testing.T) {
	tests := []struct {
		m    float64
		want string
	}{
		{0.5, "1 meter"},
		{1.9, "1 meter"},
		{2.0, "2 meters"},
		{4.7, "4 meters"},
	}
	for _, tt := range tests {
		if got := distancePhrase(tt.m); got != tt.want {
			t.Errorf("distancePhrase(%v) = %q, want %q", tt.m, got, tt.want)
		}
	}
}
