// Package hazard defines the detection data model shared by every
// pipeline stage: what was seen, how sure we are, and where it sits
// in the frame. Detections are value types; a frame's detections never
// outlive the frame-processing call that produced them.
package hazard

import (
	"fmt"
	"image"
)

// Source identifies which detector produced a Detection.
type Source string

const (
	// SourceModel marks detections from the neural object detector.
	SourceModel Source = "model"

	// SourceStairs marks detections from the stair edge detector.
	SourceStairs Source = "stairs"

	// SourcePothole marks detections from the dark-blob pothole detector.
	SourcePothole Source = "pothole"

	// SourceEdge marks walkable-surface boundary observations.
	SourceEdge Source = "edge"
)

// Detection is one hazard or object instance found in a frame.
type Detection struct {
	// ClassID is the detector's numeric class (COCO ID for model
	// detections, hazard class ID for custom detectors).
	ClassID int `json:"class_id"`

	// Class is the normalized hazard class name (see classes.go).
	Class string `json:"class"`

	// Confidence is the detector's confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Box is the bounding box in pixel space.
	Box image.Rectangle `json:"box"`

	// Source identifies the producing detector.
	Source Source `json:"source"`
}

// Width returns the bounding box width in pixels.
func (d Detection) Width() int { return d.Box.Dx() }

// Height returns the bounding box height in pixels.
func (d Detection) Height() int { return d.Box.Dy() }

// Area returns the bounding box area in pixels.
func (d Detection) Area() int { return d.Box.Dx() * d.Box.Dy() }

// CenterX returns the horizontal center of the bounding box.
func (d Detection) CenterX() int { return (d.Box.Min.X + d.Box.Max.X) / 2 }

// Bottom returns the y coordinate of the bounding box bottom edge.
// Ground hazards project lower in frame the closer they are.
func (d Detection) Bottom() int { return d.Box.Max.Y }

// Priority returns the static priority level (1-5) for this detection's
// class.
func (d Detection) Priority() int { return PriorityFor(d.Class) }

// String implements fmt.Stringer for log output.
func (d Detection) String() string {
	return fmt.Sprintf("%s(%.2f)@%v from %s", d.Class, d.Confidence, d.Box, d.Source)
}

// IoU returns the intersection-over-union of two boxes, in [0,1].
// Returns 0 when either box is empty.
func IoU(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	interArea := inter.Dx() * inter.Dy()
	union := a.Dx()*a.Dy() + b.Dx()*b.Dy() - interArea
	if union <= 0 {
		return 0
	}
	return float64(interArea) / float64(union)
}

// Side identifies a lateral side of the walkable surface.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// EdgeWarning signals that the user is drifting toward the lateral
// boundary of the walkable surface. It is not threat-scored like a
// Detection; the alert scheduler announces it on its own cooldown.
type EdgeWarning struct {
	// Side is the boundary being approached.
	Side Side `json:"side"`

	// BoundaryX is the detected boundary x coordinate in pixels.
	BoundaryX int `json:"boundary_x"`
}
