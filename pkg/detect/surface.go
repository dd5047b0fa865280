package detect

import (
	"context"
	"image"

	"github.com/lucasb-eyer/go-colorful"
	"gocv.io/x/gocv"

	"github.com/guidewalk/go-guidewalk/pkg/hazard"
)

// SurfaceConfig holds walkable-surface edge detector tuning.
type SurfaceConfig struct {
	// MaxSaturation and MinValue bound the HSV mask for pavement-like
	// low-saturation surfaces.
	MaxSaturation float64
	MinValue      float64

	// ColumnCoverage is the fraction of mask pixels a column needs to
	// count as walkable surface.
	ColumnCoverage float64

	// VoteColumns is how many consecutive qualifying columns confirm
	// a boundary.
	VoteColumns int

	// MinLabDistance is the minimum CIE-Lab distance between ground
	// reference and off-boundary strip for the boundary to be real.
	// Similar colors on both sides mean the mask edge is texture, not
	// a surface change.
	MinLabDistance float64

	// WarningMarginRatio is the pixel margin around the frame's side
	// thirds, as a fraction of frame width, inside which a boundary
	// triggers a drift warning.
	WarningMarginRatio float64
}

// DefaultSurfaceConfig returns production defaults.
func DefaultSurfaceConfig() SurfaceConfig {
	return SurfaceConfig{
		MaxSaturation:      50,
		MinValue:           80,
		ColumnCoverage:     0.3,
		VoteColumns:        3,
		MinLabDistance:     0.12,
		WarningMarginRatio: 0.05,
	}
}

// SurfaceEdgeDetector segments the frame by color homogeneity to
// isolate the walkable surface and extracts its lateral boundaries.
// Shore-lining assist: the pipeline warns when a boundary drifts into
// the frame's side thirds.
type SurfaceEdgeDetector struct {
	cfg SurfaceConfig
}

// NewSurfaceEdgeDetector creates a surface edge detector.
func NewSurfaceEdgeDetector(cfg SurfaceConfig) *SurfaceEdgeDetector {
	return &SurfaceEdgeDetector{cfg: cfg}
}

// Name identifies the detector in logs.
func (d *SurfaceEdgeDetector) Name() string { return "surface" }

// Close releases resources. The surface detector holds none.
func (d *SurfaceEdgeDetector) Close() error { return nil }

// DetectBounds finds the left and right walkable-surface boundaries in
// the lower half of the frame.
func (d *SurfaceEdgeDetector) DetectBounds(ctx context.Context, f *Frame) (SurfaceBounds, error) {
	var bounds SurfaceBounds
	if f.Mat.Empty() || f.Height < 2 || f.Width < 8 {
		return bounds, nil
	}
	if err := ctx.Err(); err != nil {
		return bounds, err
	}

	roiTop := f.Height / 2
	roi := f.Mat.Region(image.Rect(0, roiTop, f.Width, f.Height))
	defer roi.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(roi, &hsv, gocv.ColorBGRToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(0, 0, d.cfg.MinValue, 0),
		gocv.NewScalar(180, d.cfg.MaxSaturation, 255, 0),
		&mask)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(5, 5))
	defer kernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)
	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, kernel)

	left, hasLeft := scanBoundary(mask, true, d.cfg)
	right, hasRight := scanBoundary(mask, false, d.cfg)

	// Reject boundaries where both sides read as the same material.
	ref := patchColor(roi, image.Rect(f.Width/2-f.Width/8, roi.Rows()/2, f.Width/2+f.Width/8, roi.Rows()))
	if hasLeft && left > f.Width/16 {
		outside := patchColor(roi, image.Rect(0, roi.Rows()/2, left, roi.Rows()))
		if ref.DistanceLab(outside) < d.cfg.MinLabDistance {
			hasLeft = false
		}
	}
	if hasRight && right < f.Width-f.Width/16 {
		outside := patchColor(roi, image.Rect(right, roi.Rows()/2, f.Width, roi.Rows()))
		if ref.DistanceLab(outside) < d.cfg.MinLabDistance {
			hasRight = false
		}
	}

	bounds = SurfaceBounds{Left: left, Right: right, HasLeft: hasLeft, HasRight: hasRight}
	return bounds, nil
}

// scanBoundary walks columns from one side toward center and returns
// the median x of the first run of columns with enough mask coverage.
func scanBoundary(mask gocv.Mat, fromLeft bool, cfg SurfaceConfig) (int, bool) {
	rows, cols := mask.Rows(), mask.Cols()
	if rows == 0 || cols == 0 {
		return 0, false
	}

	var votes []int
	for i := 0; i < cols/2; i++ {
		x := i
		if !fromLeft {
			x = cols - 1 - i
		}
		covered := 0
		sampled := 0
		for y := 0; y < rows; y += 2 {
			sampled++
			if mask.GetUCharAt(y, x) > 0 {
				covered++
			}
		}
		if sampled > 0 && float64(covered)/float64(sampled) >= cfg.ColumnCoverage {
			votes = append(votes, x)
			if len(votes) >= cfg.VoteColumns {
				return votes[len(votes)/2], true
			}
		}
	}
	return 0, false
}

// patchColor returns the mean color of a region for perceptual
// comparison.
func patchColor(bgr gocv.Mat, rect image.Rectangle) colorful.Color {
	bounds := image.Rect(0, 0, bgr.Cols(), bgr.Rows())
	rect = rect.Intersect(bounds)
	if rect.Empty() {
		return colorful.Color{}
	}
	region := bgr.Region(rect)
	defer region.Close()
	mean := region.Mean()
	// Mat channels are BGR.
	return colorful.Color{R: mean.Val3 / 255, G: mean.Val2 / 255, B: mean.Val1 / 255}
}

// CheckDrift signals when a surface boundary has crossed into the
// margin around the frame's side thirds, meaning the user is drifting
// toward that edge. Pure function of the bounds and frame width.
func CheckDrift(bounds SurfaceBounds, frameW int, cfg SurfaceConfig) (hazard.EdgeWarning, bool) {
	margin := int(float64(frameW) * cfg.WarningMarginRatio)
	third := frameW / 3

	if bounds.HasLeft && bounds.Left >= third-margin {
		return hazard.EdgeWarning{Side: hazard.SideLeft, BoundaryX: bounds.Left}, true
	}
	if bounds.HasRight && bounds.Right <= 2*third+margin {
		return hazard.EdgeWarning{Side: hazard.SideRight, BoundaryX: bounds.Right}, true
	}
	return hazard.EdgeWarning{}, false
}

// Verify SurfaceEdgeDetector implements SurfaceDetector at compile time.
var _ SurfaceDetector = (*SurfaceEdgeDetector)(nil)
