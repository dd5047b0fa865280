package tts

import (
	"context"

	"github.com/guidewalk/go-guidewalk/internal/log"
)

// Console is the visual-only fallback provider: it writes announcements
// to the structured log instead of speaking. Used when no synthesis
// engine is available so the pipeline keeps operating.
type Console struct{}

// NewConsole creates a console provider.
func NewConsole() *Console { return &Console{} }

// Say logs the message.
func (c *Console) Say(ctx context.Context, text string, tone Tone) error {
	if tone == ToneUrgent {
		log.Warn("announcement", "tts", "console", "text", text)
	} else {
		log.Info("announcement", "tts", "console", "text", text)
	}
	return nil
}

// Health always succeeds.
func (c *Console) Health(ctx context.Context) error { return nil }

// Close releases nothing.
func (c *Console) Close() error { return nil }

// Verify Console implements Provider at compile time.
var _ Provider = (*Console)(nil)
