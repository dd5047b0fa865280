package alert

import (
	"context"
	"sync"
	"time"

	"github.com/guidewalk/go-guidewalk/internal/log"
	"github.com/guidewalk/go-guidewalk/pkg/haptic"
	"github.com/guidewalk/go-guidewalk/pkg/tts"
)

// Dispatcher delivers decisions to the speech and haptic collaborators
// without ever blocking the frame loop. The queue is a single-slot
// bounded channel: when the output is busy a new alert is dropped with
// a log entry rather than queued, because a stale safety alert is worse
// than a missing one.
type Dispatcher struct {
	speech  tts.Provider
	haptics haptic.Driver

	ch   chan Decision
	wg   sync.WaitGroup
	stop context.CancelFunc

	// Output failure is logged once per session, not per frame.
	speechFailOnce sync.Once
	hapticFailOnce sync.Once

	mu      sync.Mutex
	dropped int64
}

// NewDispatcher creates a dispatcher. haptics may be nil when the
// device has no vibration hardware.
func NewDispatcher(speech tts.Provider, haptics haptic.Driver) *Dispatcher {
	return &Dispatcher{
		speech:  speech,
		haptics: haptics,
		ch:      make(chan Decision, 1),
	}
}

// Start launches the delivery worker. The worker runs until Stop or
// context cancellation.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.stop = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case decision := <-d.ch:
				d.deliver(ctx, decision)
			}
		}
	}()
}

// Stop shuts down the worker. In-flight delivery is allowed to finish.
func (d *Dispatcher) Stop() {
	if d.stop != nil {
		d.stop()
	}
	d.wg.Wait()
}

// TrySend enqueues a decision without blocking. Returns false when the
// output channel was busy and the decision was dropped.
func (d *Dispatcher) TrySend(decision Decision) bool {
	select {
	case d.ch <- decision:
		return true
	default:
		d.mu.Lock()
		d.dropped++
		n := d.dropped
		d.mu.Unlock()
		log.Warn("alert output busy, dropping",
			"kind", decision.Kind,
			"message", decision.Message,
			"dropped_total", n,
		)
		return false
	}
}

// Dropped returns how many decisions were dropped this session.
func (d *Dispatcher) Dropped() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// deliver speaks and pulses one decision. Either output failing leaves
// the other (and the rest of the pipeline) operating.
func (d *Dispatcher) deliver(ctx context.Context, decision Decision) {
	if d.haptics != nil && decision.Haptic != haptic.PatternNone {
		if err := d.haptics.Pulse(ctx, decision.Haptic); err != nil {
			d.hapticFailOnce.Do(func() {
				log.Warn("haptic output unavailable, continuing without vibration", "error", err)
			})
		}
	}

	sayCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := d.speech.Say(sayCtx, decision.Message, decision.Tone); err != nil {
		d.speechFailOnce.Do(func() {
			log.Warn("speech output unavailable, continuing visual-only", "error", err)
		})
	}
}
