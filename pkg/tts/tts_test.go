package tts

import (
	"context"
	"errors"
	"testing"
)

func TestMockRecordsCalls(t *testing.T) {
	m := &Mock{}

	if err := m.Say(context.Background(), "Caution: curb on the left, 3 meters.", ToneInformational); err != nil {
		t.Fatalf("Say() = %v", err)
	}
	m.Say(context.Background(), "DANGER: pothole directly ahead, 1 meter!", ToneUrgent)

	if got := m.CallCount(); got != 2 {
		t.Errorf("CallCount() = %d, want 2", got)
	}
	last := m.LastCall()
	if last == nil {
		t.Fatal("LastCall() = nil")
	}
	if last.Tone != ToneUrgent {
		t.Errorf("last tone = %v, want urgent", last.Tone)
	}

	m.Reset()
	if got := m.CallCount(); got != 0 {
		t.Errorf("CallCount() after Reset = %d, want 0", got)
	}
}

func TestWithError(t *testing.T) {
	wantErr := errors.New("synth offline")
	m := WithError(wantErr)

	if err := m.Say(context.Background(), "anything", ToneInformational); !errors.Is(err, wantErr) {
		t.Errorf("Say() = %v, want %v", err, wantErr)
	}
	if err := m.Health(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("Health() = %v, want %v", err, wantErr)
	}
	// Failed calls are still recorded.
	if got := m.CallCount(); got != 1 {
		t.Errorf("CallCount() = %d, want 1", got)
	}
}

func TestConsoleNeverFails(t *testing.T) {
	c := NewConsole()

	if err := c.Say(context.Background(), "Path clear.", ToneInformational); err != nil {
		t.Errorf("Say() = %v, want nil", err)
	}
	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health() = %v, want nil", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}

func TestProviderError(t *testing.T) {
	wrapped := WrapError("espeak", ErrBusy)
	if !errors.Is(wrapped, ErrBusy) {
		t.Errorf("errors.Is(wrapped, ErrBusy) = false")
	}
	var pe *ProviderError
	if !errors.As(wrapped, &pe) {
		t.Fatal("errors.As(*ProviderError) = false")
	}
	if pe.Provider != "espeak" {
		t.Errorf("Provider = %q, want espeak", pe.Provider)
	}
}
