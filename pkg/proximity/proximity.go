// Package proximity infers how close a detected hazard is without
// depth sensing. Two geometric signals drive the estimate: a larger
// bounding box means a closer object, and a ground-level hazard
// projects lower in the frame the closer it is. Every estimate is a
// pure function of the box, the frame dimensions, and the calibration
// constants; there is no hidden state.
package proximity

import (
	"fmt"

	"github.com/guidewalk/go-guidewalk/pkg/hazard"
)

// Category is the coarse distance bucket used for scoring and message
// urgency.
type Category string

const (
	Immediate Category = "immediate"
	Near      Category = "near"
	Far       Category = "far"
)

// Zone is the lateral third of the frame a detection occupies.
type Zone string

const (
	Left   Zone = "left"
	Center Zone = "center"
	Right  Zone = "right"
)

// Phrase returns the natural-language direction phrase for messages.
func (z Zone) Phrase() string {
	switch z {
	case Left:
		return "on the left"
	case Right:
		return "on the right"
	default:
		return "directly ahead"
	}
}

// Config holds the calibration constants.
type Config struct {
	// HeightWeight and BottomWeight combine the two geometric signals
	// into the closeness index. They must sum to 1; bottom position is
	// weighted more because it is the more reliable cue for
	// ground-level hazards. Empirically tuned.
	HeightWeight float64
	BottomWeight float64

	// ImmediateThreshold and NearThreshold split the closeness index
	// into categories.
	ImmediateThreshold float64
	NearThreshold      float64

	// ImmediateDistanceM and NearDistanceM are the metric boundaries
	// reported in message text ("2 meters"). Scoring never uses the
	// metric value.
	ImmediateDistanceM float64
	NearDistanceM      float64
}

// DefaultConfig returns the calibration used on the reference device.
func DefaultConfig() Config {
	return Config{
		HeightWeight:       0.4,
		BottomWeight:       0.6,
		ImmediateThreshold: 0.7,
		NearThreshold:      0.4,
		ImmediateDistanceM: 2.0,
		NearDistanceM:      5.0,
	}
}

// Validate rejects inverted or out-of-range calibration. Called at
// pipeline construction; a bad calibration must stop startup.
func (c Config) Validate() error {
	if c.NearThreshold >= c.ImmediateThreshold {
		return fmt.Errorf("proximity: near threshold %.2f must be below immediate threshold %.2f",
			c.NearThreshold, c.ImmediateThreshold)
	}
	if c.ImmediateThreshold > 1 || c.NearThreshold <= 0 {
		return fmt.Errorf("proximity: thresholds must lie in (0,1], got %.2f/%.2f",
			c.NearThreshold, c.ImmediateThreshold)
	}
	if c.HeightWeight < 0 || c.BottomWeight < 0 {
		return fmt.Errorf("proximity: weights must be non-negative")
	}
	if sum := c.HeightWeight + c.BottomWeight; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("proximity: weights must sum to 1, got %.3f", sum)
	}
	if c.NearDistanceM <= c.ImmediateDistanceM {
		return fmt.Errorf("proximity: near distance %.1fm must exceed immediate distance %.1fm",
			c.NearDistanceM, c.ImmediateDistanceM)
	}
	return nil
}

// Estimate is the proximity analysis of one detection.
type Estimate struct {
	// Closeness is the combined geometric index in [0,1]; higher is
	// closer.
	Closeness float64 `json:"closeness"`

	// Category is the coarse distance bucket.
	Category Category `json:"category"`

	// DistanceM is the approximate metric distance, used only as a
	// label in message text.
	DistanceM float64 `json:"distance_m"`

	// Direction is the lateral zone of the detection.
	Direction Zone `json:"direction"`
}

// Estimate analyzes one detection's geometry against a frame.
func (c Config) Estimate(d hazard.Detection, frameW, frameH int) Estimate {
	closeness := c.Closeness(d, frameH)
	cat := c.Categorize(closeness)
	return Estimate{
		Closeness: closeness,
		Category:  cat,
		DistanceM: c.metricDistance(closeness, cat),
		Direction: Direction(d, frameW),
	}
}

// Closeness computes the index from normalized box height and the
// vertical position of the box's bottom edge. Because the bottom ratio
// can never be below the height ratio, a box filling a fraction r of
// the frame height always produces a closeness of at least r.
func (c Config) Closeness(d hazard.Detection, frameH int) float64 {
	if frameH <= 0 {
		return 0
	}
	heightRatio := float64(d.Height()) / float64(frameH)
	bottomRatio := float64(d.Bottom()) / float64(frameH)
	idx := c.HeightWeight*heightRatio + c.BottomWeight*bottomRatio
	if idx < 0 {
		return 0
	}
	if idx > 1 {
		return 1
	}
	return idx
}

// Categorize buckets a closeness index.
func (c Config) Categorize(closeness float64) Category {
	switch {
	case closeness >= c.ImmediateThreshold:
		return Immediate
	case closeness >= c.NearThreshold:
		return Near
	default:
		return Far
	}
}

// metricDistance maps closeness to an approximate distance within the
// category's metric band. The mapping is a coarse label generator, not
// a rangefinder; scoring decisions never consume it.
func (c Config) metricDistance(closeness float64, cat Category) float64 {
	var m float64
	switch cat {
	case Immediate:
		m = c.ImmediateDistanceM * (1 - (closeness-c.ImmediateThreshold)/2)
	case Near:
		span := c.NearDistanceM - c.ImmediateDistanceM
		m = c.ImmediateDistanceM + span*(c.ImmediateThreshold-closeness)/(c.ImmediateThreshold-c.NearThreshold)
	default:
		m = c.NearDistanceM + (c.NearThreshold-closeness)*20
	}
	if m < 0.5 {
		m = 0.5
	}
	if m > 15 {
		m = 15
	}
	return m
}

// Direction maps the box's horizontal center onto the frame thirds.
func Direction(d hazard.Detection, frameW int) Zone {
	if frameW <= 0 {
		return Center
	}
	cx := d.CenterX()
	third := frameW / 3
	switch {
	case cx < third:
		return Left
	case cx >= 2*third:
		return Right
	default:
		return Center
	}
}
