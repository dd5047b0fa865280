// Package pipeline wires the perception stages into the per-frame
// loop: capture, detect, fuse, estimate, score, decide, dispatch.
// The loop always works on the newest available frame; frames that
// arrive while a frame is being processed are dropped, not queued.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"github.com/guidewalk/go-guidewalk/internal/log"
	"github.com/guidewalk/go-guidewalk/pkg/alert"
	"github.com/guidewalk/go-guidewalk/pkg/detect"
	"github.com/guidewalk/go-guidewalk/pkg/fusion"
	"github.com/guidewalk/go-guidewalk/pkg/hazard"
	"github.com/guidewalk/go-guidewalk/pkg/render"
	"github.com/guidewalk/go-guidewalk/pkg/store"
	"github.com/guidewalk/go-guidewalk/pkg/threat"
)

// FrameSource produces frames for the pipeline. A returned error is
// terminal: the pipeline stops rather than retry, leaving restart
// policy to the caller.
type FrameSource interface {
	// Next blocks until a frame is available or the context ends.
	Next(ctx context.Context) (*detect.Frame, error)

	// Close releases the source.
	Close() error
}

// Snapshot is the pipeline's externally visible state, served by the
// monitor endpoint.
type Snapshot struct {
	FrameIndex     uint64    `json:"frame_index"`
	FramesDropped  uint64    `json:"frames_dropped"`
	AlertsDropped  int64     `json:"alerts_dropped"`
	SchedulerState string    `json:"scheduler_state"`
	LastClass      string    `json:"last_class"`
	LastAlertAt    time.Time `json:"last_alert_at"`
	StartedAt      time.Time `json:"started_at"`
}

// Pipeline runs the perception-to-alert loop.
type Pipeline struct {
	cfg        Config
	source     FrameSource
	detectors  []detect.Detector
	surface    detect.SurfaceDetector
	scheduler  *alert.Scheduler
	monitor    *alert.PathClearMonitor
	dispatcher *alert.Dispatcher
	records    store.Store
	logger     *slog.Logger

	// onDecision, when set, receives every dispatched decision. Used
	// by the monitor server to stream alerts.
	onDecision func(alert.Decision)

	// onPreview, when set, receives an annotated JPEG of each
	// processed frame for the monitor preview stream.
	onPreview func([]byte)

	// Status fields are cached here under mu because the scheduler
	// itself is single-writer and must not be read from the monitor
	// goroutine.
	mu            sync.Mutex
	frameIndex    uint64
	framesDropped uint64
	startedAt     time.Time
	schedState    alert.State
	lastClass     string
	lastAlertAt   time.Time
}

// Options carries the pipeline's collaborators.
type Options struct {
	Source     FrameSource
	Detectors  []detect.Detector
	Surface    detect.SurfaceDetector
	Dispatcher *alert.Dispatcher
	Records    store.Store
	OnDecision func(alert.Decision)
	OnPreview  func([]byte)
}

// New validates the configuration and assembles the pipeline. Every
// detector is wrapped with the failure guard so one misbehaving
// detector cannot stall or crash the loop.
func New(cfg Config, opts Options) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("pipeline: frame source is required")
	}
	if len(opts.Detectors) == 0 {
		return nil, fmt.Errorf("pipeline: at least one detector is required")
	}
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("pipeline: dispatcher is required")
	}

	guarded := make([]detect.Detector, len(opts.Detectors))
	for i, d := range opts.Detectors {
		guarded[i] = detect.NewGuard(d, cfg.DetectorTimeout)
	}

	records := opts.Records
	if records == nil {
		records = store.NewMock()
	}

	return &Pipeline{
		cfg:        cfg,
		source:     opts.Source,
		detectors:  guarded,
		surface:    opts.Surface,
		scheduler:  alert.NewScheduler(cfg.Alert),
		monitor:    alert.NewPathClearMonitor(cfg.PathClear),
		dispatcher: opts.Dispatcher,
		records:    records,
		logger:     log.Component("pipeline"),
		onDecision: opts.OnDecision,
		onPreview:  opts.OnPreview,
	}, nil
}

// Run executes the loop until the context ends or the source fails.
// The capture goroutine and the processing loop are decoupled by a
// single-slot buffer so that detection latency never backs up
// capture.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mu.Lock()
	p.startedAt = time.Now()
	p.mu.Unlock()

	p.dispatcher.Start(ctx)
	defer p.dispatcher.Stop()
	defer p.closeDetectors()

	frames := make(chan *detect.Frame, 1)
	captureErr := make(chan error, 1)

	go p.capture(ctx, frames, captureErr)

	for {
		select {
		case <-ctx.Done():
			p.drain(frames)
			return ctx.Err()
		case err := <-captureErr:
			// A frame captured just before the source ended still
			// gets processed.
			select {
			case f := <-frames:
				p.process(ctx, f)
				f.Close()
			default:
			}
			if errors.Is(err, context.Canceled) {
				return err
			}
			return fmt.Errorf("pipeline: frame source: %w", err)
		case f := <-frames:
			p.process(ctx, f)
			f.Close()
		}
	}
}

// capture pulls frames from the source into the single-slot buffer.
// When the slot is occupied the stale frame is replaced: freshness
// over completeness.
func (p *Pipeline) capture(ctx context.Context, frames chan *detect.Frame, out chan<- error) {
	for {
		f, err := p.source.Next(ctx)
		if err != nil {
			out <- err
			return
		}
		select {
		case frames <- f:
		default:
			select {
			case stale := <-frames:
				stale.Close()
				p.mu.Lock()
				p.framesDropped++
				p.mu.Unlock()
			default:
			}
			select {
			case frames <- f:
			default:
				f.Close()
			}
		}
	}
}

// process runs one frame through every stage.
func (p *Pipeline) process(ctx context.Context, f *detect.Frame) {
	p.mu.Lock()
	p.frameIndex = f.Index
	p.mu.Unlock()

	results := make([][]hazard.Detection, len(p.detectors))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range p.detectors {
		g.Go(func() error {
			dets, _ := d.Detect(gctx, f)
			results[i] = dets
			return nil
		})
	}

	var bounds detect.SurfaceBounds
	var haveBounds bool
	if p.surface != nil {
		g.Go(func() error {
			b, err := p.surface.DetectBounds(gctx, f)
			if err != nil {
				p.logger.Warn("surface detection failed", "error", err)
				return nil
			}
			bounds, haveBounds = b, true
			return nil
		})
	}
	g.Wait()

	merged := fusion.Merge(p.cfg.Fusion, results...)
	assessments := p.cfg.Threat.Assess(merged, p.cfg.Proximity, f.Width, f.Height)
	selected := p.cfg.Threat.Select(assessments)

	if selected != nil {
		p.logSelection(f, selected)
		p.record(f, selected)
	}

	if decision := p.scheduler.Evaluate(selected); decision != nil {
		p.send(*decision)
	}

	if haveBounds {
		if warn, drifting := detect.CheckDrift(bounds, f.Width, p.cfg.Surface); drifting {
			if decision := p.scheduler.EvaluateEdge(warn); decision != nil {
				p.send(*decision)
			}
		}
	}

	if p.onPreview != nil {
		p.preview(f, assessments, selected, bounds, haveBounds)
	}

	state := p.scheduler.State()
	if decision := p.monitor.Observe(selected != nil, state == alert.StateIdle); decision != nil {
		p.send(*decision)
	}

	lastAt, lastClass := p.scheduler.LastAnnouncement()
	p.mu.Lock()
	p.schedState = state
	p.lastClass = lastClass
	p.lastAlertAt = lastAt
	p.mu.Unlock()
}

// preview renders the annotated frame and hands a JPEG copy to the
// monitor hook.
func (p *Pipeline) preview(f *detect.Frame, assessments []threat.Assessment, selected *threat.Assessment, bounds detect.SurfaceBounds, haveBounds bool) {
	annotated := f.Mat.Clone()
	defer annotated.Close()

	render.Assessments(&annotated, assessments, selected)
	if haveBounds {
		render.SurfaceBounds(&annotated, bounds.Left, bounds.Right, bounds.HasLeft, bounds.HasRight)
	}
	render.Status(&annotated, fmt.Sprintf("frame %d", f.Index))

	buf, err := gocv.IMEncode(".jpg", annotated)
	if err != nil {
		p.logger.Warn("preview encode failed", "error", err)
		return
	}
	defer buf.Close()

	// The buffer is backed by native memory; copy before release.
	jpeg := make([]byte, len(buf.GetBytes()))
	copy(jpeg, buf.GetBytes())
	p.onPreview(jpeg)
}

func (p *Pipeline) send(decision alert.Decision) {
	p.dispatcher.TrySend(decision)
	if p.onDecision != nil {
		p.onDecision(decision)
	}
}

func (p *Pipeline) logSelection(f *detect.Frame, sel *threat.Assessment) {
	p.logger.Info("hazard selected",
		"frame_index", f.Index,
		"class", sel.Detection.Class,
		"confidence", sel.Detection.Confidence,
		"distance_category", string(sel.Estimate.Category),
		"direction", string(sel.Estimate.Direction),
		"threat_score", sel.Score,
	)
}

func (p *Pipeline) record(f *detect.Frame, sel *threat.Assessment) {
	rec := store.FromAssessment(sel, f.Index, f.Timestamp)
	if err := p.records.Append(rec); err != nil {
		p.logger.Warn("detection log write failed", "error", err)
	}
}

// SnapshotState reports the loop's current state for the monitor
// endpoint.
func (p *Pipeline) SnapshotState() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	state := p.schedState
	if state == "" {
		state = alert.StateIdle
	}
	return Snapshot{
		FrameIndex:     p.frameIndex,
		FramesDropped:  p.framesDropped,
		AlertsDropped:  p.dispatcher.Dropped(),
		SchedulerState: string(state),
		LastClass:      p.lastClass,
		LastAlertAt:    p.lastAlertAt,
		StartedAt:      p.startedAt,
	}
}

func (p *Pipeline) drain(frames chan *detect.Frame) {
	for {
		select {
		case f := <-frames:
			f.Close()
		default:
			return
		}
	}
}

func (p *Pipeline) closeDetectors() {
	for _, d := range p.detectors {
		if err := d.Close(); err != nil {
			p.logger.Warn("detector close failed", "detector", d.Name(), "error", err)
		}
	}
	if p.surface != nil {
		if err := p.surface.Close(); err != nil {
			p.logger.Warn("surface detector close failed", "error", err)
		}
	}
	if err := p.source.Close(); err != nil {
		p.logger.Warn("frame source close failed", "error", err)
	}
}
