package tts

import (
	"context"
	"os/exec"
	"strconv"
	"sync"
)

// EspeakConfig holds subprocess TTS settings.
type EspeakConfig struct {
	// Binary is the espeak-ng executable name or path.
	Binary string

	// Rate is speech rate in words per minute.
	Rate int

	// UrgentRate is the faster rate used for urgent announcements.
	UrgentRate int

	// Voice is the espeak voice identifier, empty for default.
	Voice string
}

// DefaultEspeakConfig returns production defaults.
func DefaultEspeakConfig() EspeakConfig {
	return EspeakConfig{
		Binary:     "espeak-ng",
		Rate:       175,
		UrgentRate: 210,
	}
}

// Espeak speaks through the local espeak-ng engine. One utterance at a
// time: if called while already speaking it returns ErrBusy instead of
// queueing, since a stale safety alert is worse than a dropped one.
type Espeak struct {
	cfg EspeakConfig

	mu       sync.Mutex
	speaking bool
}

// NewEspeak creates an espeak-backed provider. It fails fast when the
// binary is not on PATH so callers can fall back to another provider.
func NewEspeak(cfg EspeakConfig) (*Espeak, error) {
	if _, err := exec.LookPath(cfg.Binary); err != nil {
		return nil, WrapError("espeak", ErrUnavailable)
	}
	return &Espeak{cfg: cfg}, nil
}

// Say runs the engine subprocess for one utterance.
func (e *Espeak) Say(ctx context.Context, text string, tone Tone) error {
	e.mu.Lock()
	if e.speaking {
		e.mu.Unlock()
		return WrapError("espeak", ErrBusy)
	}
	e.speaking = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.speaking = false
		e.mu.Unlock()
	}()

	rate := e.cfg.Rate
	if tone == ToneUrgent {
		rate = e.cfg.UrgentRate
	}

	args := []string{"-s", strconv.Itoa(rate)}
	if e.cfg.Voice != "" {
		args = append(args, "-v", e.cfg.Voice)
	}
	args = append(args, text)

	cmd := exec.CommandContext(ctx, e.cfg.Binary, args...)
	if err := cmd.Run(); err != nil {
		return WrapError("espeak", err)
	}
	return nil
}

// Health verifies the engine binary is still reachable.
func (e *Espeak) Health(ctx context.Context) error {
	if _, err := exec.LookPath(e.cfg.Binary); err != nil {
		return WrapError("espeak", ErrUnavailable)
	}
	return nil
}

// Close releases resources. The subprocess provider holds none between
// utterances.
func (e *Espeak) Close() error { return nil }

// Verify Espeak implements Provider at compile time.
var _ Provider = (*Espeak)(nil)
