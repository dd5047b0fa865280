// Package detect provides hazard detectors for camera frames.
//
// All detectors implement the Detector interface so the pipeline can run
// the neural model adapter and the custom CV detectors side by side and
// treat their outputs uniformly. An empty result is the expected common
// case, not an error; a detector that panics or times out is treated as
// having seen nothing this frame, so a CV failure can never halt the
// pipeline.
package detect

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/guidewalk/go-guidewalk/internal/log"
	"github.com/guidewalk/go-guidewalk/pkg/hazard"
)

// Frame is one captured camera frame plus acquisition metadata.
// The pixel buffer is read-only for detectors; it is owned by the
// pipeline and released at end of frame.
type Frame struct {
	// Mat is the BGR pixel buffer.
	Mat gocv.Mat

	// Width and Height are the frame dimensions in pixels.
	Width  int
	Height int

	// Index is the monotonically increasing frame counter.
	Index uint64

	// Timestamp is the acquisition time.
	Timestamp time.Time
}

// NewFrame wraps a Mat with its dimensions and metadata.
func NewFrame(mat gocv.Mat, index uint64, ts time.Time) *Frame {
	return &Frame{
		Mat:       mat,
		Width:     mat.Cols(),
		Height:    mat.Rows(),
		Index:     index,
		Timestamp: ts,
	}
}

// Close releases the underlying pixel buffer.
func (f *Frame) Close() error {
	return f.Mat.Close()
}

// Detector finds hazards in a frame. Implementations: ModelAdapter,
// StairDetector, PotholeDetector.
type Detector interface {
	// Name identifies the detector in logs and timing records.
	Name() string

	// Detect returns zero or more detections for the frame.
	// Zero detections is the normal case, not an error.
	Detect(ctx context.Context, f *Frame) ([]hazard.Detection, error)

	// Close releases detector resources.
	Close() error
}

// SurfaceDetector locates the lateral boundaries of the walkable
// surface. Its observations are not threat-scored; the pipeline feeds
// them to the drift check instead.
type SurfaceDetector interface {
	Name() string
	DetectBounds(ctx context.Context, f *Frame) (SurfaceBounds, error)
	Close() error
}

// SurfaceBounds holds the detected boundary x coordinates. A side with
// no visible boundary has its Has flag unset.
type SurfaceBounds struct {
	Left     int
	Right    int
	HasLeft  bool
	HasRight bool
}

// Guard wraps a Detector with the pipeline's failure policy: panics are
// recovered, errors are logged at warning level, and a per-call timeout
// converts a slow detector into "no detection this frame". CV calls are
// not safely interruptible, so a timed-out call is abandoned rather than
// killed; the goroutine finishes on its own and its result is discarded.
type Guard struct {
	inner   Detector
	timeout time.Duration
}

// NewGuard wraps a detector with the given per-call timeout.
// A zero timeout disables the deadline.
func NewGuard(d Detector, timeout time.Duration) *Guard {
	return &Guard{inner: d, timeout: timeout}
}

// Name returns the wrapped detector's name.
func (g *Guard) Name() string { return g.inner.Name() }

// Close closes the wrapped detector.
func (g *Guard) Close() error { return g.inner.Close() }

// Detect runs the wrapped detector under the failure policy.
// It never returns an error.
func (g *Guard) Detect(ctx context.Context, f *Frame) ([]hazard.Detection, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	type result struct {
		dets []hazard.Detection
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("detector %s panicked: %v", g.inner.Name(), r)}
			}
		}()
		dets, err := g.inner.Detect(ctx, f)
		ch <- result{dets: dets, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			log.Warn("detector failed, treating as no detection",
				"detector", g.inner.Name(),
				"frame", f.Index,
				"error", res.err,
			)
			return nil, nil
		}
		return res.dets, nil
	case <-ctx.Done():
		log.Warn("detector timed out, treating as no detection",
			"detector", g.inner.Name(),
			"frame", f.Index,
			"timeout", g.timeout,
		)
		return nil, nil
	}
}

// Verify Guard implements Detector at compile time.
var _ Detector = (*Guard)(nil)
