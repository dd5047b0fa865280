package detect

import (
	"context"
	"image"
	"sort"

	"github.com/guidewalk/go-guidewalk/pkg/hazard"
)

// RawBox is one entry of the external object detector's output:
// class, confidence, and box in pixel space.
type RawBox struct {
	ClassID    int
	ClassName  string
	Confidence float64
	X, Y, W, H int
}

// RawDetector is the external object-detection collaborator. It returns
// the model's raw boxes for a frame; the ModelAdapter normalizes them.
type RawDetector interface {
	Name() string
	DetectRaw(ctx context.Context, f *Frame) ([]RawBox, error)
	Close() error
}

// AdapterConfig holds the normalization parameters.
type AdapterConfig struct {
	// ConfidenceThreshold drops raw boxes below this confidence.
	ConfidenceThreshold float64

	// MaxBoxAreaRatio rejects boxes covering more than this fraction of
	// the frame. Spurious full-frame boxes otherwise dominate scoring.
	MaxBoxAreaRatio float64

	// MaxDetections caps output by confidence-descending truncation.
	MaxDetections int
}

// DefaultAdapterConfig returns production defaults.
func DefaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ConfidenceThreshold: 0.45,
		MaxBoxAreaRatio:     0.9,
		MaxDetections:       5,
	}
}

// ModelAdapter normalizes the external detector's output into Detection
// records with Source=model. It is a pure transform with no side
// effects; malformed raw output or a raw detector error yields an empty
// list rather than propagating.
type ModelAdapter struct {
	raw RawDetector
	cfg AdapterConfig
}

// NewModelAdapter wraps a raw detector with normalization.
func NewModelAdapter(raw RawDetector, cfg AdapterConfig) *ModelAdapter {
	return &ModelAdapter{raw: raw, cfg: cfg}
}

// Name identifies the adapter in logs.
func (a *ModelAdapter) Name() string { return "model" }

// Close closes the underlying raw detector.
func (a *ModelAdapter) Close() error { return a.raw.Close() }

// Detect normalizes the raw model output for one frame.
func (a *ModelAdapter) Detect(ctx context.Context, f *Frame) ([]hazard.Detection, error) {
	boxes, err := a.raw.DetectRaw(ctx, f)
	if err != nil {
		// Fail soft: detector errors never propagate downstream.
		return nil, nil
	}
	return Normalize(boxes, f.Width, f.Height, a.cfg), nil
}

// Normalize filters, maps, and truncates raw model boxes. Exposed as a
// pure function so adapter behavior is testable without a model.
func Normalize(boxes []RawBox, frameW, frameH int, cfg AdapterConfig) []hazard.Detection {
	if frameW <= 0 || frameH <= 0 {
		return nil
	}
	frameArea := float64(frameW) * float64(frameH)

	dets := make([]hazard.Detection, 0, len(boxes))
	for _, b := range boxes {
		if b.Confidence < cfg.ConfidenceThreshold {
			continue
		}
		if b.W <= 0 || b.H <= 0 {
			continue
		}
		if float64(b.W)*float64(b.H)/frameArea > cfg.MaxBoxAreaRatio {
			continue
		}
		box := image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H).
			Intersect(image.Rect(0, 0, frameW, frameH))
		if box.Empty() {
			continue
		}
		dets = append(dets, hazard.Detection{
			ClassID:    b.ClassID,
			Class:      hazard.NormalizeModelClass(b.ClassName),
			Confidence: b.Confidence,
			Box:        box,
			Source:     hazard.SourceModel,
		})
	}

	sort.SliceStable(dets, func(i, j int) bool {
		return dets[i].Confidence > dets[j].Confidence
	})
	if cfg.MaxDetections > 0 && len(dets) > cfg.MaxDetections {
		dets = dets[:cfg.MaxDetections]
	}
	return dets
}

// Verify ModelAdapter implements Detector at compile time.
var _ Detector = (*ModelAdapter)(nil)
