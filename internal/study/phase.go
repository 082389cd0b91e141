package study

import (
	"fmt"
	"strings"
)

// Phase is the animation state of a study session.
type Phase int

const (
	// PhaseIdle is the only phase that accepts commands.
	PhaseIdle Phase = iota
	// PhaseTransitioningOut is the exit half of a card change.
	PhaseTransitioningOut
	// PhaseTransitioningIn is the enter half of a card change.
	PhaseTransitioningIn
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTransitioningOut:
		return "transitioning-out"
	case PhaseTransitioningIn:
		return "transitioning-in"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Mode is how the current card is presented.
type Mode int

const (
	// ModeFlip shows one side at a time.
	ModeFlip Mode = iota
	// ModeChoice shows the front with candidate backs to pick from.
	ModeChoice
)

// String returns the mode name used in configuration.
func (m Mode) String() string {
	switch m {
	case ModeFlip:
		return "flip"
	case ModeChoice:
		return "choice"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts "flip" or "choice" into a Mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "flip", "":
		return ModeFlip, nil
	case "choice":
		return ModeChoice, nil
	default:
		return ModeFlip, fmt.Errorf("unknown study mode %q", name)
	}
}
