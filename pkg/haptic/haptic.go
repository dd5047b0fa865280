// Package haptic provides the vibration-output interface for hazard
// alerts. Pattern codes are discrete: the driver electronics own the
// actual pulse timing, the pipeline only selects which pattern to play.
package haptic

import (
	"context"
	"errors"
)

// Pattern is a discrete vibration pattern code understood by the
// driver electronics.
type Pattern int

const (
	// PatternNone plays nothing.
	PatternNone Pattern = 0

	// PatternLongPulse is one long pulse (hazard on the right).
	PatternLongPulse Pattern = 1

	// PatternTwoQuick is two quick pulses (hazard on the left).
	PatternTwoQuick Pattern = 2

	// PatternThreeQuick is three quick pulses (hazard straight ahead).
	PatternThreeQuick Pattern = 3

	// PatternDanger is three strong pulses: immediate danger ahead.
	PatternDanger Pattern = 100
)

// Driver plays vibration patterns on the haptic hardware.
type Driver interface {
	// Pulse plays one pattern. It must not block on the previous
	// pattern finishing; overlapping requests may be coalesced by the
	// hardware.
	Pulse(ctx context.Context, p Pattern) error

	// Close releases the hardware.
	Close() error
}

// ErrUnavailable is returned when the haptic hardware cannot be
// reached.
var ErrUnavailable = errors.New("haptic: driver unavailable")

// noop discards every pattern. Used when no haptic hardware is
// configured.
type noop struct{}

var _ Driver = noop{}

func (noop) Pulse(ctx context.Context, p Pattern) error { return nil }
func (noop) Close() error                               { return nil }

// Disabled returns a driver that silently discards patterns.
func Disabled() Driver { return noop{} }
