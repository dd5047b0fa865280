// Package camera captures frames from a video device or file and
// exposes them as a pipeline frame source.
package camera

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/guidewalk/go-guidewalk/pkg/detect"
)

// Config holds capture settings.
type Config struct {
	// Source is a device index ("0") or a video file path. Device
	// capture loops until closed; file capture ends with io.EOF at
	// the last frame.
	Source string `json:"source"`

	// Width and Height request a capture resolution. Zero leaves the
	// device default. Ignored for files.
	Width  int `json:"width"`
	Height int `json:"height"`

	// TargetFPS paces file playback so a recorded walk replays at
	// roughly capture speed. Zero disables pacing. Ignored for
	// devices, which pace themselves.
	TargetFPS int `json:"target_fps"`
}

// DefaultConfig captures from the first video device at a resolution
// the detectors are tuned for.
func DefaultConfig() Config {
	return Config{
		Source: "0",
		Width:  640,
		Height: 480,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("camera: source is empty")
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("camera: resolution must be non-negative, got %dx%d", c.Width, c.Height)
	}
	if c.TargetFPS < 0 {
		return fmt.Errorf("camera: target fps must be non-negative, got %d", c.TargetFPS)
	}
	return nil
}

// Capture reads frames from a gocv VideoCapture.
type Capture struct {
	cfg    Config
	isFile bool

	mu     sync.Mutex
	cap    *gocv.VideoCapture
	index  uint64
	closed bool
}

// NewCapture opens the configured source.
func NewCapture(cfg Config) (*Capture, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		cap    *gocv.VideoCapture
		err    error
		isFile bool
	)
	if idx, convErr := strconv.Atoi(cfg.Source); convErr == nil {
		cap, err = gocv.OpenVideoCapture(idx)
	} else {
		cap, err = gocv.VideoCaptureFile(cfg.Source)
		isFile = true
	}
	if err != nil {
		return nil, fmt.Errorf("camera: open %s: %w", cfg.Source, err)
	}

	if !isFile {
		if cfg.Width > 0 {
			cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
		}
		if cfg.Height > 0 {
			cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
		}
	}

	return &Capture{cfg: cfg, isFile: isFile, cap: cap}, nil
}

// Next reads the next frame. For files it returns io.EOF at the end of
// the recording; for devices a read failure is reported as an error
// because a wearable camera that stops producing frames is terminal.
func (c *Capture) Next(ctx context.Context) (*detect.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, io.EOF
	}

	mat := gocv.NewMat()
	if ok := c.cap.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		if c.isFile {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("camera: device %s stopped producing frames", c.cfg.Source)
	}

	c.index++
	f := detect.NewFrame(mat, c.index, time.Now())

	if c.isFile && c.cfg.TargetFPS > 0 {
		interval := time.Second / time.Duration(c.cfg.TargetFPS)
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			f.Close()
			return nil, ctx.Err()
		}
	}

	return f, nil
}

// Close releases the capture device.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.cap.Close(); err != nil {
		return fmt.Errorf("camera: close: %w", err)
	}
	return nil
}
