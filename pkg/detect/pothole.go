package detect

import (
	"context"
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"github.com/guidewalk/go-guidewalk/pkg/hazard"
)

// PotholeConfig holds pothole detector tuning.
type PotholeConfig struct {
	// DarkQuantile sets the luminance percentile of the local ground
	// below which pixels count as "dark". Potholes and open manholes
	// read darker than surrounding pavement.
	DarkQuantile float64

	// MinAreaPx rejects blobs below this pixel area (sensor noise).
	MinAreaPx float64

	// MaxAreaRatio rejects blobs above this fraction of the frame
	// (large shadows are not potholes).
	MaxAreaRatio float64

	// MinCircularity keeps only roughly circular/compact blobs.
	MinCircularity float64

	// MinRegionTopRatio rejects blobs starting above this fraction of
	// frame height; road surface occupies the lower frame.
	MinRegionTopRatio float64
}

// DefaultPotholeConfig returns production defaults.
func DefaultPotholeConfig() PotholeConfig {
	return PotholeConfig{
		DarkQuantile:      0.15,
		MinAreaPx:         500,
		MaxAreaRatio:      0.1,
		MinCircularity:    0.5,
		MinRegionTopRatio: 0.33,
	}
}

// Blob is one dark connected region with the luminance statistics the
// filter needs. Extracted by the CV pass, scored by the pure filter.
type Blob struct {
	// Box is the bounding box in full-frame pixels.
	Box image.Rectangle

	// Area is the contour area in pixels.
	Area float64

	// Perimeter is the contour arc length.
	Perimeter float64

	// MeanInside is the mean luminance inside the bounding box.
	MeanInside float64

	// MeanSurround is the mean luminance of the surrounding ring.
	MeanSurround float64
}

// Circularity returns 4*pi*A/P^2; 1.0 is a perfect circle.
func (b Blob) Circularity() float64 {
	if b.Perimeter <= 0 {
		return 0
	}
	return 4 * math.Pi * b.Area / (b.Perimeter * b.Perimeter)
}

// Contrast returns how much darker the blob is than its surround,
// normalized to [0,1].
func (b Blob) Contrast() float64 {
	c := (b.MeanSurround - b.MeanInside) / 255.0
	if c < 0 {
		return 0
	}
	return c
}

// PotholeDetector finds pothole-like depressions: dark, compact blobs
// against the local pavement luminance in the lower frame region.
type PotholeDetector struct {
	cfg PotholeConfig
}

// NewPotholeDetector creates a pothole detector.
func NewPotholeDetector(cfg PotholeConfig) *PotholeDetector {
	return &PotholeDetector{cfg: cfg}
}

// Name identifies the detector in logs.
func (d *PotholeDetector) Name() string { return "pothole" }

// Close releases resources. The pothole detector holds none.
func (d *PotholeDetector) Close() error { return nil }

// Detect thresholds the lower frame region against a luminance
// percentile and filters the resulting dark blobs.
func (d *PotholeDetector) Detect(ctx context.Context, f *Frame) ([]hazard.Detection, error) {
	if f.Mat.Empty() || f.Height < 3 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	roiTop := f.Height / 3
	roi := f.Mat.Region(image.Rect(0, roiTop, f.Width, f.Height))
	defer roi.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(roi, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	threshold := luminanceQuantile(blurred, d.cfg.DarkQuantile)

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(blurred, &dark, threshold, 255, gocv.ThresholdBinaryInv)

	contours := gocv.FindContours(dark, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	blobs := make([]Blob, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		if area <= 0 {
			continue
		}
		rect := gocv.BoundingRect(c)
		blobs = append(blobs, Blob{
			Box: image.Rect(
				rect.Min.X, rect.Min.Y+roiTop,
				rect.Max.X, rect.Max.Y+roiTop,
			),
			Area:         area,
			Perimeter:    gocv.ArcLength(c, true),
			MeanInside:   regionMean(blurred, rect),
			MeanSurround: ringMean(blurred, rect),
		})
	}

	return FilterPotholeBlobs(blobs, f.Width, f.Height, d.cfg), nil
}

// FilterPotholeBlobs applies the area, position, and shape filters and
// converts surviving blobs to detections. Pure function, testable
// without OpenCV.
func FilterPotholeBlobs(blobs []Blob, frameW, frameH int, cfg PotholeConfig) []hazard.Detection {
	frameArea := float64(frameW) * float64(frameH)
	var dets []hazard.Detection
	for _, b := range blobs {
		if b.Area < cfg.MinAreaPx {
			continue
		}
		if frameArea > 0 && b.Area/frameArea > cfg.MaxAreaRatio {
			continue
		}
		if float64(b.Box.Min.Y) < float64(frameH)*cfg.MinRegionTopRatio {
			continue
		}
		if b.Circularity() < cfg.MinCircularity {
			continue
		}
		dets = append(dets, hazard.Detection{
			ClassID:    2,
			Class:      hazard.ClassPothole,
			Confidence: potholeConfidence(b),
			Box:        b.Box,
			Source:     hazard.SourcePothole,
		})
	}
	return dets
}

// potholeConfidence scales confidence by blob/surround contrast: a
// sharply darker blob is more likely a real depression than texture.
func potholeConfidence(b Blob) float64 {
	conf := 0.35 + b.Contrast()
	if conf > 0.85 {
		conf = 0.85
	}
	if conf < 0.3 {
		conf = 0.3
	}
	return conf
}

// luminanceQuantile computes the given quantile of a grayscale Mat by
// sampling every fourth pixel. Sampling keeps the cost flat across the
// supported resolutions.
func luminanceQuantile(gray gocv.Mat, q float64) float32 {
	rows, cols := gray.Rows(), gray.Cols()
	samples := make([]float64, 0, (rows/4+1)*(cols/4+1))
	for y := 0; y < rows; y += 4 {
		for x := 0; x < cols; x += 4 {
			samples = append(samples, float64(gray.GetUCharAt(y, x)))
		}
	}
	if len(samples) == 0 {
		return 50
	}
	sort.Float64s(samples)
	return float32(stat.Quantile(q, stat.Empirical, samples, nil))
}

// regionMean returns the mean luminance inside a rect.
func regionMean(gray gocv.Mat, rect image.Rectangle) float64 {
	bounds := image.Rect(0, 0, gray.Cols(), gray.Rows())
	rect = rect.Intersect(bounds)
	if rect.Empty() {
		return 0
	}
	region := gray.Region(rect)
	defer region.Close()
	return region.Mean().Val1
}

// ringMean returns the mean luminance of the ring around a rect,
// approximated from the expanded box.
func ringMean(gray gocv.Mat, rect image.Rectangle) float64 {
	pad := max(rect.Dx(), rect.Dy()) / 2
	if pad < 4 {
		pad = 4
	}
	outer := rect.Inset(-pad)
	outerMean := regionMean(gray, outer)
	innerMean := regionMean(gray, rect)

	bounds := image.Rect(0, 0, gray.Cols(), gray.Rows())
	outerArea := float64(outer.Intersect(bounds).Dx() * outer.Intersect(bounds).Dy())
	innerArea := float64(rect.Intersect(bounds).Dx() * rect.Intersect(bounds).Dy())
	ringArea := outerArea - innerArea
	if ringArea <= 0 {
		return outerMean
	}
	// Remove the inner contribution from the outer mean.
	return (outerMean*outerArea - innerMean*innerArea) / ringArea
}

// Verify PotholeDetector implements Detector at compile time.
var _ Detector = (*PotholeDetector)(nil)
