package tracker

// Phase is the combined activity and placement of the application.
type Phase int

const (
	PhaseInactiveForeground Phase = iota
	PhaseActiveForeground
	PhaseInactiveBackground
	PhaseActiveBackground
)

func phaseOf(active, foreground bool) Phase {
	switch {
	case active && foreground:
		return PhaseActiveForeground
	case active:
		return PhaseActiveBackground
	case foreground:
		return PhaseInactiveForeground
	default:
		return PhaseInactiveBackground
	}
}

// Active reports whether the phase is an active one.
func (p Phase) Active() bool {
	return p == PhaseActiveForeground || p == PhaseActiveBackground
}

// Foreground reports whether the phase is a foreground one.
func (p Phase) Foreground() bool {
	return p == PhaseActiveForeground || p == PhaseInactiveForeground
}

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseInactiveForeground:
		return "InactiveForeground"
	case PhaseActiveForeground:
		return "ActiveForeground"
	case PhaseInactiveBackground:
		return "InactiveBackground"
	case PhaseActiveBackground:
		return "ActiveBackground"
	default:
		return "Unknown"
	}
}

// EventEmitter is called after a notification changes the phase.
// It runs outside the tracker's lock, on the notifying goroutine.
type EventEmitter interface {
	OnTransition(from, to Phase, reason string)
}
