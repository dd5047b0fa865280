package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guidewalk/go-guidewalk/pkg/haptic"
	"github.com/guidewalk/go-guidewalk/pkg/tts"
)

func decision(msg string, tone tts.Tone, pat haptic.Pattern) Decision {
	return Decision{
		Kind:      KindHazard,
		Message:   msg,
		Tone:      tone,
		Haptic:    pat,
		Timestamp: time.Now(),
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestDispatcherDeliversSpeechAndHaptic(t *testing.T) {
	speech := &tts.Mock{}
	haptics := &haptic.Mock{}
	d := NewDispatcher(speech, haptics)
	d.Start(context.Background())
	defer d.Stop()

	if !d.TrySend(decision("DANGER: pothole directly ahead, 1 meter!", tts.ToneUrgent, haptic.PatternDanger)) {
		t.Fatal("TrySend() = false on empty queue")
	}

	waitFor(t, func() bool { return speech.CallCount() == 1 })

	call := speech.LastCall()
	if call.Text != "DANGER: pothole directly ahead, 1 meter!" {
		t.Errorf("spoken text = %q", call.Text)
	}
	if call.Tone != tts.ToneUrgent {
		t.Errorf("tone = %v, want urgent", call.Tone)
	}
	waitFor(t, func() bool { return haptics.CallCount() == 1 })
	if got := haptics.Calls()[0].Pattern; got != haptic.PatternDanger {
		t.Errorf("haptic pattern = %v, want danger", got)
	}
}

func TestDispatcherDropsWhenBusy(t *testing.T) {
	speaking := make(chan struct{})
	release := make(chan struct{})
	speech := &tts.Mock{
		SayFunc: func(ctx context.Context, text string, tone tts.Tone) error {
			close(speaking)
			<-release
			return nil
		},
	}
	d := NewDispatcher(speech, nil)
	d.Start(context.Background())

	// First decision occupies the worker.
	if !d.TrySend(decision("first", tts.ToneUrgent, haptic.PatternNone)) {
		t.Fatal("TrySend(first) = false")
	}
	<-speaking

	// Second fills the single queue slot.
	if !d.TrySend(decision("second", tts.ToneInformational, haptic.PatternNone)) {
		t.Fatal("TrySend(second) = false, want queued")
	}

	// Third must be dropped, not queued.
	if d.TrySend(decision("third", tts.ToneInformational, haptic.PatternNone)) {
		t.Error("TrySend(third) = true, want drop when queue full")
	}
	if got := d.Dropped(); got != 1 {
		t.Errorf("Dropped() = %d, want 1", got)
	}

	close(release)
	d.Stop()
}

func TestDispatcherSurvivesOutputFailure(t *testing.T) {
	speech := tts.WithError(errors.New("audio device gone"))
	haptics := &haptic.Mock{
		PulseFunc: func(ctx context.Context, p haptic.Pattern) error {
			return haptic.ErrUnavailable
		},
	}
	d := NewDispatcher(speech, haptics)
	d.Start(context.Background())
	defer d.Stop()

	// Both outputs fail; dispatch keeps accepting decisions.
	if !d.TrySend(decision("one", tts.ToneUrgent, haptic.PatternDanger)) {
		t.Fatal("TrySend(one) = false")
	}
	waitFor(t, func() bool { return speech.CallCount() == 1 })

	if !d.TrySend(decision("two", tts.ToneUrgent, haptic.PatternDanger)) {
		t.Fatal("TrySend(two) = false after output failure")
	}
	waitFor(t, func() bool { return speech.CallCount() == 2 })
}

func TestDispatcherSkipsHapticForPatternNone(t *testing.T) {
	speech := &tts.Mock{}
	haptics := &haptic.Mock{}
	d := NewDispatcher(speech, haptics)
	d.Start(context.Background())
	defer d.Stop()

	d.TrySend(decision("Path clear.", tts.ToneInformational, haptic.PatternNone))
	waitFor(t, func() bool { return speech.CallCount() == 1 })

	if got := haptics.CallCount(); got != 0 {
		t.Errorf("haptic CallCount() = %d, want 0 for PatternNone", got)
	}
}
