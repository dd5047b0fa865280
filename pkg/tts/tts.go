// Package tts provides the spoken-output interface for hazard
// announcements.
//
// The synthesis engine itself is an external collaborator; this package
// defines the Provider contract the alert dispatcher speaks through,
// plus a subprocess-backed implementation and a console fallback. All
// providers implement the same interface, so deployments can switch
// engines without changing caller code.
package tts

import (
	"context"
	"errors"
	"fmt"
)

// Tone selects the voice register for an announcement.
type Tone int

const (
	// ToneInformational is used for reassurance and low-urgency notices.
	ToneInformational Tone = iota

	// ToneUrgent is used for DANGER announcements.
	ToneUrgent
)

// Provider speaks a message to the user.
type Provider interface {
	// Say synthesizes and plays a UTF-8 message. The tone picks the
	// voice register. Say may block for the duration of playback;
	// callers that must not block dispatch through a worker.
	Say(ctx context.Context, text string, tone Tone) error

	// Health checks that the provider can produce output.
	Health(ctx context.Context) error

	// Close releases provider resources.
	Close() error
}

// Sentinel errors for common conditions.
var (
	// ErrUnavailable is returned when the synthesis engine cannot be
	// reached or launched.
	ErrUnavailable = errors.New("tts: engine unavailable")

	// ErrBusy is returned when the provider is already speaking and
	// cannot accept the message.
	ErrBusy = errors.New("tts: engine busy")
)

// ProviderError wraps an error with provider context.
type ProviderError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("tts [%s]: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with provider context.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Provider: provider, Err: err}
}
