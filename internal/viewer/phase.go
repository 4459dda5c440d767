package viewer

// Phase is the load state of one list. It replaces guessing from an empty
// slice whether a fetch is still running.
type Phase int

const (
	PhaseIdle Phase = iota // nothing selected, nothing to load
	PhaseLoading
	PhaseEmpty
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseEmpty:
		return "empty"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func phaseFor(n int) Phase {
	if n == 0 {
		return PhaseEmpty
	}
	return PhaseLoaded
}
