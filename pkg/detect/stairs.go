package detect

import (
	"context"
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"github.com/guidewalk/go-guidewalk/pkg/hazard"
)

// StairConfig holds stair detector tuning.
type StairConfig struct {
	// CannyLow and CannyHigh are the edge operator thresholds.
	CannyLow  float32
	CannyHigh float32

	// HoughThreshold is the accumulator vote minimum per line.
	HoughThreshold int

	// MinLineLength and MaxLineGap tune the segment transform.
	MinLineLength float32
	MaxLineGap    float32

	// MaxAngleDeg keeps only segments within this many degrees of
	// horizontal. Stair treads present as stacked horizontals.
	MaxAngleDeg float64

	// MinSegments is the minimum parallel segments forming one region.
	MinSegments int

	// BandGapPx is the maximum vertical gap between segments of the
	// same region.
	BandGapPx int

	// MinRegionTopRatio rejects regions starting above this fraction of
	// frame height. Overhead edges (signage, awnings) are not stairs.
	MinRegionTopRatio float64
}

// DefaultStairConfig returns tuning that works across the
// 160x120-640x480 range seen in practice.
func DefaultStairConfig() StairConfig {
	return StairConfig{
		CannyLow:          50,
		CannyHigh:         150,
		HoughThreshold:    60,
		MinLineLength:     60,
		MaxLineGap:        10,
		MaxAngleDeg:       15,
		MinSegments:       3,
		BandGapPx:         40,
		MinRegionTopRatio: 0.3,
	}
}

// Segment is one detected line segment in full-frame pixel coordinates.
type Segment struct {
	X1, Y1, X2, Y2 int
}

// angleDeg returns the segment angle from horizontal in [0,90].
func (s Segment) angleDeg() float64 {
	a := math.Abs(math.Atan2(float64(s.Y2-s.Y1), float64(s.X2-s.X1)) * 180 / math.Pi)
	if a > 90 {
		a = 180 - a
	}
	return a
}

// midY returns the vertical midpoint of the segment.
func (s Segment) midY() int {
	return (s.Y1 + s.Y2) / 2
}

// StairDetector finds stair edges: it applies a gradient edge operator
// to the lower half of the frame, extracts predominantly horizontal
// line segments, and groups stacked parallels into stair regions.
type StairDetector struct {
	cfg StairConfig
}

// NewStairDetector creates a stair detector.
func NewStairDetector(cfg StairConfig) *StairDetector {
	return &StairDetector{cfg: cfg}
}

// Name identifies the detector in logs.
func (d *StairDetector) Name() string { return "stairs" }

// Close releases resources. The stair detector holds none.
func (d *StairDetector) Close() error { return nil }

// Detect runs the edge and line transforms, then groups segments.
func (d *StairDetector) Detect(ctx context.Context, f *Frame) ([]hazard.Detection, error) {
	if f.Mat.Empty() || f.Height < 2 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stairs the user can walk into appear in the lower half.
	roiTop := f.Height / 2
	roi := f.Mat.Region(image.Rect(0, roiTop, f.Width, f.Height))
	defer roi.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, d.cfg.CannyLow, d.cfg.CannyHigh)

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines, 1, math.Pi/180,
		d.cfg.HoughThreshold, d.cfg.MinLineLength, d.cfg.MaxLineGap)

	segs := make([]Segment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		if len(v) < 4 {
			continue
		}
		// Translate back into full-frame coordinates.
		segs = append(segs, Segment{
			X1: int(v[0]), Y1: int(v[1]) + roiTop,
			X2: int(v[2]), Y2: int(v[3]) + roiTop,
		})
	}

	return GroupStairSegments(segs, f.Width, f.Height, d.cfg), nil
}

// GroupStairSegments clusters near-horizontal segments into stair
// regions. Pure function over extracted segments so grouping behavior
// is testable without OpenCV.
func GroupStairSegments(segs []Segment, frameW, frameH int, cfg StairConfig) []hazard.Detection {
	horizontal := segs[:0:0]
	for _, s := range segs {
		if s.angleDeg() <= cfg.MaxAngleDeg {
			horizontal = append(horizontal, s)
		}
	}
	if len(horizontal) < cfg.MinSegments {
		return nil
	}

	sort.Slice(horizontal, func(i, j int) bool {
		return horizontal[i].midY() < horizontal[j].midY()
	})

	type region struct {
		box   image.Rectangle
		count int
		lastY int
	}
	var regions []region
	for _, s := range horizontal {
		box := image.Rect(
			min(s.X1, s.X2), min(s.Y1, s.Y2),
			max(s.X1, s.X2)+1, max(s.Y1, s.Y2)+1,
		)
		n := len(regions)
		if n > 0 && s.midY()-regions[n-1].lastY <= cfg.BandGapPx {
			regions[n-1].box = regions[n-1].box.Union(box)
			regions[n-1].count++
			regions[n-1].lastY = s.midY()
			continue
		}
		regions = append(regions, region{box: box, count: 1, lastY: s.midY()})
	}

	var dets []hazard.Detection
	for _, r := range regions {
		if r.count < cfg.MinSegments {
			continue
		}
		if float64(r.box.Min.Y) < float64(frameH)*cfg.MinRegionTopRatio {
			continue
		}
		dets = append(dets, hazard.Detection{
			ClassID:    0,
			Class:      hazard.ClassStairs,
			Confidence: stairConfidence(r.count),
			Box:        r.box,
			Source:     hazard.SourceStairs,
		})
	}

	return dedupeStairRegions(dets)
}

// stairConfidence maps segment count to confidence. More detected
// treads means a stronger stair signature.
func stairConfidence(segments int) float64 {
	conf := 0.45 + 0.05*float64(segments)
	if conf > 0.9 {
		conf = 0.9
	}
	return conf
}

// dedupeStairRegions resolves overlapping regions by keeping the one
// with higher confidence, which encodes segment count.
func dedupeStairRegions(dets []hazard.Detection) []hazard.Detection {
	if len(dets) < 2 {
		return dets
	}
	sort.SliceStable(dets, func(i, j int) bool {
		return dets[i].Confidence > dets[j].Confidence
	})
	var kept []hazard.Detection
	for _, d := range dets {
		overlaps := false
		for _, k := range kept {
			if hazard.IoU(d.Box, k.Box) > 0 {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, d)
		}
	}
	return kept
}

// Verify StairDetector implements Detector at compile time.
var _ Detector = (*StairDetector)(nil)
