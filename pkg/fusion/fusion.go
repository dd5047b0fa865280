// Package fusion merges the model adapter's detections with the custom
// CV detectors' detections for one frame, removing duplicates.
package fusion

import (
	"github.com/guidewalk/go-guidewalk/pkg/hazard"
)

// Config holds fusion tuning.
type Config struct {
	// IoUThreshold is the box overlap above which two compatible
	// detections are considered the same object.
	IoUThreshold float64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{IoUThreshold: 0.5}
}

// Merge combines detection lists into one de-duplicated list. When two
// detections duplicate each other, the higher-confidence one survives.
// Output order carries no meaning downstream.
func Merge(cfg Config, lists ...[]hazard.Detection) []hazard.Detection {
	var merged []hazard.Detection
	for _, list := range lists {
		for _, d := range list {
			merged = appendDeduped(merged, d, cfg.IoUThreshold)
		}
	}
	return merged
}

// appendDeduped adds d to the list unless it duplicates an existing
// entry, in which case only the higher-confidence one is kept.
func appendDeduped(list []hazard.Detection, d hazard.Detection, iouThreshold float64) []hazard.Detection {
	for i, existing := range list {
		if !compatible(existing, d) {
			continue
		}
		if hazard.IoU(existing.Box, d.Box) <= iouThreshold {
			continue
		}
		if d.Confidence > existing.Confidence {
			list[i] = d
		}
		return list
	}
	return append(list, d)
}

// compatible reports whether two detections can describe the same
// physical object. Same class always can; a generic model box can
// duplicate any custom CV detection (e.g. a model "obstacle" over a
// CV pothole), while two distinct custom classes cannot.
func compatible(a, b hazard.Detection) bool {
	if a.Class == b.Class {
		return true
	}
	return a.Source == hazard.SourceModel || b.Source == hazard.SourceModel
}
