package alert

import (
	"fmt"

	"github.com/guidewalk/go-guidewalk/pkg/hazard"
	"github.com/guidewalk/go-guidewalk/pkg/haptic"
	"github.com/guidewalk/go-guidewalk/pkg/proximity"
	"github.com/guidewalk/go-guidewalk/pkg/threat"
	"github.com/guidewalk/go-guidewalk/pkg/tts"
)

// BuildMessage composes the spoken warning: urgency word, spoken class
// label, direction phrase, and coarse distance.
func BuildMessage(a *threat.Assessment) string {
	label := hazard.SpokenLabel(a.Detection.Class)
	direction := a.Estimate.Direction.Phrase()

	switch a.Estimate.Category {
	case proximity.Immediate:
		return fmt.Sprintf("DANGER: %s %s, %s!", label, direction, distancePhrase(a.Estimate.DistanceM))
	case proximity.Near:
		return fmt.Sprintf("Caution: %s %s, %s.", label, direction, distancePhrase(a.Estimate.DistanceM))
	default:
		return fmt.Sprintf("Notice: %s %s.", label, direction)
	}
}

// messageTone maps announcement urgency to the voice register.
func messageTone(a *threat.Assessment) tts.Tone {
	if a.Estimate.Category == proximity.Immediate {
		return tts.ToneUrgent
	}
	return tts.ToneInformational
}

// distancePhrase renders a coarse metric label. The value is an
// approximation for speech only; it is never used in scoring.
func distancePhrase(m float64) string {
	meters := int(m)
	if meters <= 1 {
		return "1 meter"
	}
	return fmt.Sprintf("%d meters", meters)
}

// HapticFor maps proximity and direction to a pattern code. Immediate
// danger always plays the strong pattern; otherwise the pattern encodes
// direction.
func HapticFor(a *threat.Assessment) haptic.Pattern {
	if a.Estimate.Category == proximity.Immediate {
		return haptic.PatternDanger
	}
	switch a.Estimate.Direction {
	case proximity.Left:
		return haptic.PatternTwoQuick
	case proximity.Right:
		return haptic.PatternLongPulse
	default:
		return haptic.PatternThreeQuick
	}
}

// EdgeMessage composes the shore-lining drift warning.
func EdgeMessage(w hazard.EdgeWarning) string {
	return fmt.Sprintf("Caution: approaching sidewalk edge on the %s.", w.Side)
}

// edgeHaptic picks the directional pattern for a drift warning.
func edgeHaptic(w hazard.EdgeWarning) haptic.Pattern {
	if w.Side == hazard.SideLeft {
		return haptic.PatternTwoQuick
	}
	return haptic.PatternLongPulse
}

// PathClearMessage is the reassurance announcement.
const PathClearMessage = "Path clear."
