// Package threat turns proximity-annotated detections into an urgency
// score and selects the single most urgent hazard per frame. Scores are
// recomputed every frame and never cached.
package threat

import (
	"math"

	"github.com/guidewalk/go-guidewalk/pkg/hazard"
	"github.com/guidewalk/go-guidewalk/pkg/proximity"
)

// Config holds scoring parameters.
type Config struct {
	// MinPriority is the class priority below which a detection is
	// never selected for announcement, regardless of score. Such
	// detections are still rendered.
	MinPriority int

	// Priorities overrides the default per-class priority table when
	// non-nil.
	Priorities map[string]int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{MinPriority: 2}
}

// priorityFor resolves a class priority against the override table.
func (c Config) priorityFor(class string) int {
	if c.Priorities != nil {
		if p, ok := c.Priorities[class]; ok {
			return p
		}
		return hazard.DefaultPriority
	}
	return hazard.PriorityFor(class)
}

// Assessment couples a detection with its proximity estimate and score.
type Assessment struct {
	Detection hazard.Detection
	Estimate  proximity.Estimate
	Priority  int
	Score     int
}

// Score computes the urgency score for one detection:
// class priority base, plus a proximity bonus, plus a confidence bonus,
// saturated to [0,100].
func (c Config) Score(d hazard.Detection, est proximity.Estimate) Assessment {
	prio := c.priorityFor(d.Class)

	score := prio * 10
	switch est.Category {
	case proximity.Immediate:
		score += 40
	case proximity.Near:
		score += 25
	default:
		score += 10
	}
	score += int(math.Round(d.Confidence * 10))

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return Assessment{Detection: d, Estimate: est, Priority: prio, Score: score}
}

// Assess scores a fused detection list against a frame's dimensions.
func (c Config) Assess(dets []hazard.Detection, prox proximity.Config, frameW, frameH int) []Assessment {
	out := make([]Assessment, 0, len(dets))
	for _, d := range dets {
		out = append(out, c.Score(d, prox.Estimate(d, frameW, frameH)))
	}
	return out
}

// Select folds the assessments down to the single most urgent hazard.
// Ordering: score desc, then metric distance asc, then confidence desc,
// then priority desc. Detections below MinPriority never win. Returns
// nil when nothing qualifies.
func (c Config) Select(assessments []Assessment) *Assessment {
	var best *Assessment
	for i := range assessments {
		a := &assessments[i]
		if a.Priority < c.MinPriority {
			continue
		}
		if best == nil || moreUrgent(a, best) {
			best = a
		}
	}
	return best
}

// moreUrgent is the selection comparator.
func moreUrgent(a, b *Assessment) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Estimate.DistanceM != b.Estimate.DistanceM {
		return a.Estimate.DistanceM < b.Estimate.DistanceM
	}
	if a.Detection.Confidence != b.Detection.Confidence {
		return a.Detection.Confidence > b.Detection.Confidence
	}
	return a.Priority > b.Priority
}
